package reconcile_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/model"
	"github.com/David-Botos/schema-recon/pkg/reconcile"
)

func completedResult(pair reconcile.TablePair, workerID int, success bool) reconcile.PairResult {
	result := reconcile.NewPairResult(reconcile.NewPairJob(pair), workerID)
	result.Complete(success)
	return *result
}

func TestRunMetricsRecording(t *testing.T) {
	metrics := reconcile.NewRunMetrics(zap.NewNop())
	pairs := reconcile.BuildTablePairs([]string{"A", "B"}, []string{"B", "C"})

	metrics.RecordTablePairs(pairs)
	assert.Equal(t, 1, metrics.TablesShared)
	assert.Equal(t, 1, metrics.TablesSourceOnly)
	assert.Equal(t, 1, metrics.TablesTargetOnly)

	good := completedResult(pairs[1], 0, true)
	good.ColumnsCompared = 5
	metrics.RecordPairResult(good)

	skipped := reconcile.NewPairResult(reconcile.NewPairJob(pairs[0]), 1)
	skipped.AddError(reconcile.NewErrorRecord(errors.New("boom"), reconcile.ErrorCategoryPairLevel))
	skipped.MarkSkipped()
	skipped.Complete(false)
	metrics.RecordPairResult(*skipped)

	failed := completedResult(pairs[2], 1, false)
	metrics.RecordPairResult(failed)

	assert.Equal(t, 1, metrics.PairsReconciled)
	assert.Equal(t, 1, metrics.PairsSkipped)
	assert.Equal(t, 1, metrics.PairsFailed)
	assert.Equal(t, 3, metrics.TotalPairs())
	assert.Equal(t, 5, metrics.ColumnsCompared)
	assert.Equal(t, 1, metrics.ErrorCounts[reconcile.ErrorCategoryPairLevel])

	metrics.RecordFailures([]model.ComparisonRow{
		{TableNameStatus: model.VerdictPass, ColumnNameStatus: model.VerdictPass, CharMaxLengthStatus: model.VerdictFail},
		{TableNameStatus: model.VerdictFail, ColumnNameStatus: model.VerdictFail, CharMaxLengthStatus: model.VerdictFail},
	})
	assert.Equal(t, 2, metrics.RowsReported)
	assert.Equal(t, 1, metrics.FailuresByAttribute["TABLE_NAME"])
	assert.Equal(t, 2, metrics.FailuresByAttribute["CHARACTER_MAXIMUM_LENGTH"])

	metrics.Complete()
	assert.False(t, metrics.EndTime.IsZero())
	assert.GreaterOrEqual(t, metrics.Duration(), time.Duration(0))
}

func TestGenerateMetricsReport(t *testing.T) {
	metrics := reconcile.NewRunMetrics(zap.NewNop())
	pairs := reconcile.BuildTablePairs([]string{"A", "B"}, []string{"B"})
	metrics.RecordTablePairs(pairs)

	good := completedResult(pairs[1], 0, true)
	good.ColumnsCompared = 4
	metrics.RecordPairResult(good)

	metrics.RecordFailures([]model.ComparisonRow{
		{ScaleStatus: model.VerdictFail},
	})
	metrics.Complete()

	text := metrics.GenerateMetricsReport()

	assert.Contains(t, text, "Reconciliation Metrics Report")
	assert.Contains(t, text, "Table Summary")
	assert.Contains(t, text, "Shared Tables:           1")
	assert.Contains(t, text, "Source-Only Tables:      1")
	assert.Contains(t, text, "Comparison Summary")
	assert.Contains(t, text, "Failures by Attribute")
	assert.Contains(t, text, "- SCALE: 1")
	assert.Contains(t, text, "Worker Efficiency")
}

func TestMetricsToJSON(t *testing.T) {
	metrics := reconcile.NewRunMetrics(zap.NewNop())
	pairs := reconcile.BuildTablePairs([]string{"A"}, []string{"A"})
	metrics.RecordTablePairs(pairs)
	metrics.RecordPairResult(completedResult(pairs[0], 0, true))
	metrics.Complete()

	raw, err := metrics.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, float64(1), decoded["tablesShared"])
	assert.Equal(t, float64(1), decoded["pairsReconciled"])
	assert.Contains(t, decoded, "duration")
	assert.Contains(t, decoded, "failuresByAttribute")
}

func TestGetErrorDistribution(t *testing.T) {
	metrics := reconcile.NewRunMetrics(zap.NewNop())

	t.Run("no errors yields an empty distribution", func(t *testing.T) {
		assert.Empty(t, metrics.GetErrorDistribution())
	})

	t.Run("percentages sum over recorded categories", func(t *testing.T) {
		pair := reconcile.TablePair{Name: "ORDERS"}

		bad := reconcile.NewPairResult(reconcile.NewPairJob(pair), 0)
		bad.AddError(reconcile.NewErrorRecord(errors.New("boom"), reconcile.ErrorCategoryPairLevel))
		bad.AddError(reconcile.NewErrorRecord(errors.New("connection refused"), reconcile.ErrorCategoryConnection))
		bad.AddError(reconcile.NewErrorRecord(errors.New("connection refused"), reconcile.ErrorCategoryConnection))
		bad.Complete(false)
		metrics.RecordPairResult(*bad)

		distribution := metrics.GetErrorDistribution()
		assert.InDelta(t, 33.3, distribution[reconcile.ErrorCategoryPairLevel], 0.1)
		assert.InDelta(t, 66.7, distribution[reconcile.ErrorCategoryConnection], 0.1)
	})
}
