package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/schema-recon/pkg/reconcile"
)

func TestBuildTablePairs(t *testing.T) {
	t.Run("union is sorted by name", func(t *testing.T) {
		pairs := reconcile.BuildTablePairs(
			[]string{"ORDERS", "ACCOUNTS"},
			[]string{"PAYMENTS", "ORDERS"},
		)

		require.Len(t, pairs, 3)
		assert.Equal(t, "ACCOUNTS", pairs[0].Name)
		assert.Equal(t, "ORDERS", pairs[1].Name)
		assert.Equal(t, "PAYMENTS", pairs[2].Name)
	})

	t.Run("shared table carries both sides", func(t *testing.T) {
		pairs := reconcile.BuildTablePairs([]string{"ORDERS"}, []string{"ORDERS"})

		require.Len(t, pairs, 1)
		assert.True(t, pairs[0].Source.Valid)
		assert.True(t, pairs[0].Target.Valid)
		assert.Equal(t, "ORDERS", pairs[0].Source.String)
		assert.Equal(t, "ORDERS", pairs[0].Target.String)
	})

	t.Run("source-only table has an absent target", func(t *testing.T) {
		pairs := reconcile.BuildTablePairs([]string{"ACCOUNTS"}, nil)

		require.Len(t, pairs, 1)
		assert.True(t, pairs[0].Source.Valid)
		assert.False(t, pairs[0].Target.Valid)
	})

	t.Run("target-only table has an absent source", func(t *testing.T) {
		pairs := reconcile.BuildTablePairs(nil, []string{"PAYMENTS"})

		require.Len(t, pairs, 1)
		assert.False(t, pairs[0].Source.Valid)
		assert.True(t, pairs[0].Target.Valid)
	})

	t.Run("duplicate listings collapse into one pair", func(t *testing.T) {
		pairs := reconcile.BuildTablePairs(
			[]string{"ORDERS", "ORDERS"},
			[]string{"ORDERS"},
		)

		require.Len(t, pairs, 1)
		assert.Equal(t, "ORDERS", pairs[0].Name)
	})

	t.Run("empty listings produce no pairs", func(t *testing.T) {
		assert.Empty(t, reconcile.BuildTablePairs(nil, nil))
	})

	t.Run("case-variant names stay distinct pairs", func(t *testing.T) {
		pairs := reconcile.BuildTablePairs([]string{"Orders"}, []string{"ORDERS"})

		require.Len(t, pairs, 2)
		assert.Equal(t, "ORDERS", pairs[0].Name)
		assert.Equal(t, "Orders", pairs[1].Name)
		assert.False(t, pairs[0].Source.Valid)
		assert.False(t, pairs[1].Target.Valid)
	})
}
