package reconcile_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/catalog"
	"github.com/David-Botos/schema-recon/pkg/reconcile"
)

func TestCategorizeError(t *testing.T) {
	handler := reconcile.NewErrorHandler(zap.NewNop(), false)

	t.Run("nil is none", func(t *testing.T) {
		assert.Equal(t, reconcile.ErrorCategoryNone, handler.CategorizeError(nil))
	})

	t.Run("duplicate column sentinel", func(t *testing.T) {
		err := fmt.Errorf("table ORDERS: %w: ID", reconcile.ErrDuplicateColumn)
		assert.Equal(t, reconcile.ErrorCategoryDuplicateColumn, handler.CategorizeError(err))
	})

	t.Run("malformed attribute sentinel", func(t *testing.T) {
		err := fmt.Errorf("describing columns: %w: bad length", catalog.ErrMalformedAttribute)
		assert.Equal(t, reconcile.ErrorCategoryMalformedAttribute, handler.CategorizeError(err))
	})

	t.Run("metadata sentinel wins over message sniffing", func(t *testing.T) {
		// A listing failure caused by a connection reset still categorizes
		// by its sentinel, not by the word "connection" in the message.
		err := fmt.Errorf("listing tables: %w: connection reset by peer", catalog.ErrMetadataUnavailable)
		assert.Equal(t, reconcile.ErrorCategoryMetadataUnavailable, handler.CategorizeError(err))
	})

	t.Run("connection keywords", func(t *testing.T) {
		assert.Equal(t, reconcile.ErrorCategoryConnection, handler.CategorizeError(errors.New("dial tcp 10.0.0.1:5432: connection refused")))
		assert.Equal(t, reconcile.ErrorCategoryConnection, handler.CategorizeError(errors.New("read tcp: i/o timeout")))
		assert.Equal(t, reconcile.ErrorCategoryConnection, handler.CategorizeError(errors.New("unexpected EOF")))
	})

	t.Run("critical keywords", func(t *testing.T) {
		assert.Equal(t, reconcile.ErrorCategoryCritical, handler.CategorizeError(errors.New("fatal: out of memory")))
	})

	t.Run("anything else is pair level", func(t *testing.T) {
		assert.Equal(t, reconcile.ErrorCategoryPairLevel, handler.CategorizeError(errors.New("permission denied on metadata views")))
	})
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"timeout", errors.New("read tcp: i/o timeout"), true},
		{"deadline exceeded", errors.New("context deadline exceeded"), true},
		{"temporary failure", errors.New("temporary failure in name resolution"), true},
		{"permission denied", errors.New("permission denied"), false},
		{"duplicate column", fmt.Errorf("table ORDERS: %w: ID", reconcile.ErrDuplicateColumn), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, reconcile.IsRetryableError(tt.err))
		})
	}
}

func TestErrorCategoryString(t *testing.T) {
	assert.Equal(t, "DuplicateColumn", reconcile.ErrorCategoryDuplicateColumn.String())
	assert.Equal(t, "MetadataUnavailable", reconcile.ErrorCategoryMetadataUnavailable.String())
	assert.Equal(t, "Connection", reconcile.ErrorCategoryConnection.String())
	assert.Contains(t, reconcile.ErrorCategory(99).String(), "Unknown")
}

func TestErrorHandlerActions(t *testing.T) {
	t.Run("warning continues", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), false)
		record := reconcile.NewErrorRecord(errors.New("odd but harmless"), reconcile.ErrorCategoryWarning)

		assert.Equal(t, reconcile.ActionContinue, handler.HandleError(record))
	})

	t.Run("pair level errors skip the pair", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), false)
		record := reconcile.NewErrorRecord(errors.New("no such view"), reconcile.ErrorCategoryPairLevel)

		assert.Equal(t, reconcile.ActionSkipPair, handler.HandleError(record))
	})

	t.Run("metadata and connection errors skip the pair", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), false)

		unavailable := reconcile.NewErrorRecord(errors.New("listing failed"), reconcile.ErrorCategoryMetadataUnavailable)
		assert.Equal(t, reconcile.ActionSkipPair, handler.HandleError(unavailable))

		connection := reconcile.NewErrorRecord(errors.New("connection refused"), reconcile.ErrorCategoryConnection)
		assert.Equal(t, reconcile.ActionSkipPair, handler.HandleError(connection))
	})

	t.Run("critical aborts", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), false)
		record := reconcile.NewErrorRecord(errors.New("fatal"), reconcile.ErrorCategoryCritical)

		assert.Equal(t, reconcile.ActionAbort, handler.HandleError(record))
	})

	t.Run("fail fast aborts on the first pair error", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), true)
		record := reconcile.NewErrorRecord(errors.New("no such view"), reconcile.ErrorCategoryPairLevel)

		assert.Equal(t, reconcile.ActionAbort, handler.HandleError(record))
	})

	t.Run("fail fast still tolerates warnings", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), true)
		record := reconcile.NewErrorRecord(errors.New("odd but harmless"), reconcile.ErrorCategoryWarning)

		assert.Equal(t, reconcile.ActionContinue, handler.HandleError(record))
	})
}

func TestShouldAbort(t *testing.T) {
	t.Run("a single critical error aborts", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), false)
		handler.RecordError(reconcile.NewErrorRecord(errors.New("fatal"), reconcile.ErrorCategoryCritical))

		assert.True(t, handler.ShouldAbort())
	})

	t.Run("connection errors abort past their threshold", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), false)

		for i := 0; i < 3; i++ {
			handler.RecordError(reconcile.NewErrorRecord(errors.New("connection refused"), reconcile.ErrorCategoryConnection))
		}
		assert.False(t, handler.ShouldAbort())

		handler.RecordError(reconcile.NewErrorRecord(errors.New("connection refused"), reconcile.ErrorCategoryConnection))
		assert.True(t, handler.ShouldAbort())
	})

	t.Run("fail fast aborts on any recorded pair error", func(t *testing.T) {
		handler := reconcile.NewErrorHandler(zap.NewNop(), true)
		handler.RecordError(reconcile.NewErrorRecord(errors.New("no such view"), reconcile.ErrorCategoryPairLevel))

		assert.True(t, handler.ShouldAbort())
	})
}

func TestErrorHandlerBookkeeping(t *testing.T) {
	handler := reconcile.NewErrorHandler(zap.NewNop(), false)

	for i := 0; i < 7; i++ {
		record := reconcile.NewErrorRecord(errors.New("no such view"), reconcile.ErrorCategoryPairLevel).
			WithEndpoint("source").
			WithTable("ORDERS")
		handler.RecordError(record)
	}

	summary := handler.GetErrorSummary()
	assert.Equal(t, 7, summary[reconcile.ErrorCategoryPairLevel])

	// Samples cap out so a noisy category cannot balloon the report.
	samples := handler.GetErrorSamples()
	assert.Len(t, samples[reconcile.ErrorCategoryPairLevel], 5)

	tables := handler.GetTableErrorCounts()
	assert.Equal(t, 7, tables["ORDERS"])
}

func TestErrorRecordString(t *testing.T) {
	record := reconcile.NewErrorRecord(errors.New("cannot parse length"), reconcile.ErrorCategoryMalformedAttribute).
		WithEndpoint("target").
		WithTable("ORDERS").
		WithColumn("STATE", "abc")

	text := record.String()

	assert.Contains(t, text, "[MalformedAttribute]")
	assert.Contains(t, text, "Endpoint: target")
	assert.Contains(t, text, "Table: ORDERS")
	assert.Contains(t, text, "Column: STATE")
	assert.Contains(t, text, "Value: abc")
	assert.Contains(t, text, "Error: cannot parse length")
}
