package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/catalog"
	"github.com/David-Botos/schema-recon/pkg/model"
	"github.com/David-Botos/schema-recon/pkg/reconcile"
)

// driftedCatalogs builds the canonical fixture: ACCOUNTS exists only on
// the source, CUSTOMERS only on the target, and BILLING exists on both
// with one length drift, one tolerated length pairing, and audit
// columns on each side.
func driftedCatalogs() (source, target *catalog.StaticSource) {
	source = catalog.NewStaticSource().
		AddTable("ANALYTICS", "PUBLIC", "ACCOUNTS",
			model.NewColumnDescriptor("EMAIL", "TEXT").WithCharMaxLength(320),
			model.NewColumnDescriptor("ID", "NUMBER").WithPrecision(38).WithScale(0),
		).
		AddTable("ANALYTICS", "PUBLIC", "BILLING",
			model.NewColumnDescriptor("ID", "NUMBER").WithPrecision(38).WithScale(0),
			model.NewColumnDescriptor("STATE", "TEXT").WithCharMaxLength(16),
			model.NewColumnDescriptor("NOTES", "TEXT").WithCharMaxLength(16777216),
			model.NewColumnDescriptor("CREATED_AT", "TIMESTAMP_NTZ"),
		)

	target = catalog.NewStaticSource().
		AddTable("WAREHOUSE", "DBO", "BILLING",
			model.NewColumnDescriptor("ID", "NUMBER").WithPrecision(38).WithScale(0),
			model.NewColumnDescriptor("STATE", "TEXT").WithCharMaxLength(32),
			model.NewColumnDescriptor("NOTES", "TEXT").WithCharMaxLength(8388607),
			model.NewColumnDescriptor("UPDATED_AT", "DATETIME2"),
		).
		AddTable("WAREHOUSE", "DBO", "CUSTOMERS",
			model.NewColumnDescriptor("ID", "NUMBER").WithPrecision(38).WithScale(0),
		)

	return source, target
}

func driftedReconciler(source, target catalog.MetadataSource, options reconcile.Options) *reconcile.Reconciler {
	return reconcile.NewReconciler(
		reconcile.Endpoint{Metadata: source, Catalog: "ANALYTICS", Schema: "PUBLIC"},
		reconcile.Endpoint{Metadata: target, Catalog: "WAREHOUSE", Schema: "DBO"},
		options,
		zap.NewNop(),
	)
}

func TestRunReportsOnlyFailingRows(t *testing.T) {
	source, target := driftedCatalogs()
	reconciler := driftedReconciler(source, target, reconcile.DefaultOptions())

	report, err := reconciler.Run(context.Background())

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.TablePairs)
	assert.Equal(t, 0, report.PairsSkipped)

	// ACCOUNTS contributes 2 rows, BILLING 3 (audit columns excluded),
	// CUSTOMERS 1. Clean rows are filtered from the report afterwards.
	assert.Equal(t, 6, report.RowsExamined)
	require.Len(t, report.Rows, 4)

	email := report.Rows[0]
	assert.Equal(t, "ACCOUNTS", email.SourceTableName)
	assert.Equal(t, model.Sentinel, email.TargetTableName)
	assert.Equal(t, model.VerdictFail, email.TableNameStatus)
	assert.Equal(t, "EMAIL", email.SourceColumnName)
	assert.Equal(t, model.Sentinel, email.TargetColumnName)
	assert.Equal(t, model.VerdictFail, email.ColumnNameStatus)
	assert.Equal(t, model.VerdictFail, email.CharMaxLengthStatus)

	id := report.Rows[1]
	assert.Equal(t, "ACCOUNTS", id.SourceTableName)
	assert.Equal(t, "ID", id.SourceColumnName)
	// Neither side reports a length for a numeric column.
	assert.Equal(t, model.VerdictPass, id.CharMaxLengthStatus)
	assert.Equal(t, model.VerdictFail, id.ScaleStatus)
	assert.Equal(t, model.VerdictFail, id.PrecisionStatus)

	state := report.Rows[2]
	assert.Equal(t, "BILLING", state.SourceTableName)
	assert.Equal(t, "BILLING", state.TargetTableName)
	assert.Equal(t, model.VerdictPass, state.TableNameStatus)
	assert.Equal(t, "STATE", state.SourceColumnName)
	assert.Equal(t, model.VerdictPass, state.ColumnNameStatus)
	assert.Equal(t, model.VerdictPass, state.DataTypeStatus)
	assert.Equal(t, "16", state.SourceCharMaxLength)
	assert.Equal(t, "32", state.TargetCharMaxLength)
	assert.Equal(t, model.VerdictFail, state.CharMaxLengthStatus)

	orphan := report.Rows[3]
	assert.Equal(t, model.Sentinel, orphan.SourceTableName)
	assert.Equal(t, "CUSTOMERS", orphan.TargetTableName)
	assert.Equal(t, model.Sentinel, orphan.SourceColumnName)
	assert.Equal(t, "ID", orphan.TargetColumnName)

	for _, row := range report.Rows {
		// The tolerated NOTES pairing and the matching ID column pass
		// every check, and audit columns never reach comparison.
		assert.NotEqual(t, "NOTES", row.SourceColumnName)
		assert.NotEqual(t, "CREATED_AT", row.SourceColumnName)
		assert.NotEqual(t, "UPDATED_AT", row.TargetColumnName)
	}

	metrics := reconciler.GetMetrics()
	assert.Equal(t, 1, metrics.TablesShared)
	assert.Equal(t, 1, metrics.TablesSourceOnly)
	assert.Equal(t, 1, metrics.TablesTargetOnly)
	assert.Equal(t, 3, metrics.PairsReconciled)
	assert.Equal(t, 4, metrics.RowsReported)
	assert.GreaterOrEqual(t, metrics.FailuresByAttribute["CHARACTER_MAXIMUM_LENGTH"], 1)
}

func TestRunIdenticalCatalogsIsClean(t *testing.T) {
	columns := []model.ColumnDescriptor{
		model.NewColumnDescriptor("ID", "NUMBER").WithPrecision(38).WithScale(0),
		model.NewColumnDescriptor("NAME", "TEXT").WithCharMaxLength(100),
	}

	source := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS", columns...)
	target := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS", columns...)

	reconciler := reconcile.NewReconciler(
		reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
		reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
		reconcile.DefaultOptions(),
		zap.NewNop(),
	)

	report, err := reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Equal(t, 2, report.RowsExamined)
	assert.Equal(t, 1, report.TablePairs)
}

// fuzzedCatalogs generates a reproducible pair of drifting catalogs.
// Every third column widens on the target and every fourth table is
// missing there entirely.
func fuzzedCatalogs(tableCount, columnCount int) (*catalog.StaticSource, *catalog.StaticSource) {
	faker := gofakeit.New(42)
	source := catalog.NewStaticSource()
	target := catalog.NewStaticSource()

	for i := 0; i < tableCount; i++ {
		table := fmt.Sprintf("%s_%02d", strings.ToUpper(faker.LetterN(6)), i)

		sourceColumns := make([]model.ColumnDescriptor, 0, columnCount)
		targetColumns := make([]model.ColumnDescriptor, 0, columnCount)
		for j := 0; j < columnCount; j++ {
			name := fmt.Sprintf("%s_%02d", strings.ToUpper(faker.LetterN(8)), j)
			length := int64(faker.Number(1, 4000))

			sourceColumns = append(sourceColumns, model.NewColumnDescriptor(name, "TEXT").WithCharMaxLength(length))

			targetLength := length
			if j%3 == 0 {
				targetLength++
			}
			targetColumns = append(targetColumns, model.NewColumnDescriptor(name, "TEXT").WithCharMaxLength(targetLength))
		}

		source.AddTable("DB", "S", table, sourceColumns...)
		if i%4 != 0 {
			target.AddTable("DB", "S", table, targetColumns...)
		}
	}

	return source, target
}

func TestRunIsDeterministic(t *testing.T) {
	runOnce := func(workers int) *reconcile.Report {
		source, target := fuzzedCatalogs(12, 8)
		reconciler := reconcile.NewReconciler(
			reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
			reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
			reconcile.Options{Workers: workers, StrictDuplicates: true},
			zap.NewNop(),
		)

		report, err := reconciler.Run(context.Background())
		require.NoError(t, err)
		return report
	}

	sequential := runOnce(1)
	parallel := runOnce(4)
	repeated := runOnce(4)

	assert.NotEmpty(t, sequential.Rows)
	assert.Equal(t, sequential.RowsExamined, parallel.RowsExamined)
	assert.Equal(t, sequential.Rows, parallel.Rows)
	assert.Equal(t, parallel.Rows, repeated.Rows)
}

func TestRunCustomExcludedColumns(t *testing.T) {
	source := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS",
		model.NewColumnDescriptor("ID", "NUMBER"),
		model.NewColumnDescriptor("ETL_BATCH_ID", "NUMBER"),
	)
	target := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS",
		model.NewColumnDescriptor("ID", "NUMBER"),
		model.NewColumnDescriptor("ETL_BATCH_ID", "TEXT"),
	)

	options := reconcile.DefaultOptions()
	options.ExcludedColumns = []string{"etl_batch_id"}

	reconciler := reconcile.NewReconciler(
		reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
		reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
		options,
		zap.NewNop(),
	)

	report, err := reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Equal(t, 1, report.RowsExamined)
}

func TestRunStrictDuplicates(t *testing.T) {
	newCatalogs := func() (*catalog.StaticSource, *catalog.StaticSource) {
		source := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS",
			model.NewColumnDescriptor("ID", "NUMBER"),
			model.NewColumnDescriptor("ID", "TEXT"),
		)
		target := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS",
			model.NewColumnDescriptor("ID", "NUMBER"),
		)
		return source, target
	}

	t.Run("strict handling skips the pair", func(t *testing.T) {
		source, target := newCatalogs()
		reconciler := reconcile.NewReconciler(
			reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
			reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
			reconcile.DefaultOptions(),
			zap.NewNop(),
		)

		report, err := reconciler.Run(context.Background())

		require.NoError(t, err)
		assert.Empty(t, report.Rows)
		assert.Equal(t, 0, report.RowsExamined)
		assert.Equal(t, 1, report.PairsSkipped)
		assert.Equal(t, 1, reconciler.GetErrorSummary()[reconcile.ErrorCategoryDuplicateColumn])
	})

	t.Run("lenient handling keeps the last occurrence", func(t *testing.T) {
		source, target := newCatalogs()
		options := reconcile.DefaultOptions()
		options.StrictDuplicates = false

		reconciler := reconcile.NewReconciler(
			reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
			reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
			options,
			zap.NewNop(),
		)

		report, err := reconciler.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, report.PairsSkipped)
		require.Len(t, report.Rows, 1)
		assert.Equal(t, "TEXT", report.Rows[0].SourceDataType)
		assert.Equal(t, "NUMBER", report.Rows[0].TargetDataType)
		assert.Equal(t, model.VerdictFail, report.Rows[0].DataTypeStatus)
	})
}

func TestRunUnknownScopeAborts(t *testing.T) {
	source := catalog.NewStaticSource()
	target := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS",
		model.NewColumnDescriptor("ID", "NUMBER"),
	)

	reconciler := reconcile.NewReconciler(
		reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
		reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
		reconcile.DefaultOptions(),
		zap.NewNop(),
	)

	report, err := reconciler.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrMetadataUnavailable)
	assert.Contains(t, err.Error(), "listing source tables")
	assert.Nil(t, report)
}

func TestRunCancelledContext(t *testing.T) {
	source, target := driftedCatalogs()
	reconciler := driftedReconciler(source, target, reconcile.DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := reconciler.Run(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

// scriptedSource wraps a fixed listing with per-table failure budgets so
// tests can script transient and permanent metadata errors.
type scriptedSource struct {
	mu       sync.Mutex
	tables   []string
	columns  map[string][]model.ColumnDescriptor
	failures map[string]int
	failWith error
}

var _ catalog.MetadataSource = (*scriptedSource)(nil)

func (s *scriptedSource) ListTables(ctx context.Context, database, schema string) ([]string, error) {
	return append([]string(nil), s.tables...), nil
}

func (s *scriptedSource) ListColumns(ctx context.Context, database, schema, table string) ([]model.ColumnDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures[table] > 0 {
		s.failures[table]--
		return nil, s.failWith
	}
	return s.columns[table], nil
}

func TestRunRetriesTransientFailures(t *testing.T) {
	source := &scriptedSource{
		tables:   []string{"ORDERS"},
		columns:  map[string][]model.ColumnDescriptor{"ORDERS": {model.NewColumnDescriptor("ID", "NUMBER")}},
		failures: map[string]int{"ORDERS": 1},
		failWith: errors.New("dial tcp 10.0.0.1:443: connection refused"),
	}
	target := catalog.NewStaticSource().AddTable("DB", "S", "ORDERS",
		model.NewColumnDescriptor("ID", "NUMBER"),
	)

	options := reconcile.DefaultOptions()
	options.Workers = 1

	reconciler := reconcile.NewReconciler(
		reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
		reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
		options,
		zap.NewNop(),
	)

	report, err := reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Equal(t, 1, report.RowsExamined)
	assert.Equal(t, 0, report.PairsSkipped)

	// The first attempt's connection error is still on the books.
	assert.Equal(t, 1, reconciler.GetErrorSummary()[reconcile.ErrorCategoryConnection])
}

func TestRunFailFastAborts(t *testing.T) {
	source := &scriptedSource{
		tables:   []string{"ORDERS", "PAYMENTS"},
		columns:  map[string][]model.ColumnDescriptor{},
		failures: map[string]int{"ORDERS": 10, "PAYMENTS": 10},
		failWith: errors.New("permission denied on metadata views"),
	}
	target := catalog.NewStaticSource().
		AddTable("DB", "S", "ORDERS", model.NewColumnDescriptor("ID", "NUMBER")).
		AddTable("DB", "S", "PAYMENTS", model.NewColumnDescriptor("ID", "NUMBER"))

	options := reconcile.DefaultOptions()
	options.Workers = 1
	options.FailFast = true

	reconciler := reconcile.NewReconciler(
		reconcile.Endpoint{Metadata: source, Catalog: "DB", Schema: "S"},
		reconcile.Endpoint{Metadata: target, Catalog: "DB", Schema: "S"},
		options,
		zap.NewNop(),
	)

	report, err := reconciler.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run aborted")
	assert.Nil(t, report)
}

func TestRunProgressCallback(t *testing.T) {
	source, target := driftedCatalogs()

	var mu sync.Mutex
	var completions []int
	total := 0

	reconciler := driftedReconciler(source, target, reconcile.DefaultOptions()).
		WithProgress(func(completed, pairs int) {
			mu.Lock()
			defer mu.Unlock()
			completions = append(completions, completed)
			total = pairs
		})

	_, err := reconciler.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, completions)
	assert.Equal(t, 3, total)
}

func TestReconcileTable(t *testing.T) {
	source, target := driftedCatalogs()
	reconciler := driftedReconciler(source, target, reconcile.DefaultOptions())

	result, err := reconciler.ReconcileTable(context.Background(), "BILLING")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ColumnsCompared)

	failures := reconcile.FilterFailures(result.Rows)
	require.Len(t, failures, 1)
	assert.Equal(t, "STATE", failures[0].SourceColumnName)

	t.Run("empty table name is rejected", func(t *testing.T) {
		_, err := reconciler.ReconcileTable(context.Background(), "")
		assert.Error(t, err)
	})
}
