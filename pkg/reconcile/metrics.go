package reconcile

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/model"
)

// Attribute keys for failure tallies, in ComparisonRow verdict order.
var attributeKeys = [6]string{
	"TABLE_NAME",
	"COLUMN_NAME",
	"DATA_TYPE",
	"CHARACTER_MAXIMUM_LENGTH",
	"SCALE",
	"PRECISION",
}

// RunMetrics tracks metrics for one reconciliation run
type RunMetrics struct {
	mu                  sync.Mutex
	logger              *zap.Logger
	StartTime           time.Time
	EndTime             time.Time
	TablesShared        int
	TablesSourceOnly    int
	TablesTargetOnly    int
	PairsReconciled     int
	PairsFailed         int
	PairsSkipped        int
	ColumnsCompared     int
	RowsAssembled       int
	RowsReported        int
	FailuresByAttribute map[string]int
	ErrorCounts         map[ErrorCategory]int
	WorkerUtilization   map[int]time.Duration
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		StartTime:           time.Now(),
		FailuresByAttribute: make(map[string]int),
		ErrorCounts:         make(map[ErrorCategory]int),
		WorkerUtilization:   make(map[int]time.Duration),
		logger:              logger,
	}
}

// RecordTablePairs tallies how the aligned tables are distributed
func (rm *RunMetrics) RecordTablePairs(pairs []TablePair) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, pair := range pairs {
		switch {
		case pair.Source.Valid && pair.Target.Valid:
			rm.TablesShared++
		case pair.Source.Valid:
			rm.TablesSourceOnly++
		default:
			rm.TablesTargetOnly++
		}
	}

	if rm.logger != nil {
		rm.logger.Info("Aligned table listings",
			zap.Int("pairs", len(pairs)),
			zap.Int("shared", rm.TablesShared),
			zap.Int("sourceOnly", rm.TablesSourceOnly),
			zap.Int("targetOnly", rm.TablesTargetOnly))
	}
}

// RecordPairResult records metrics for a completed table pair
func (rm *RunMetrics) RecordPairResult(result PairResult) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.ColumnsCompared += result.ColumnsCompared
	rm.RowsAssembled += len(result.Rows)

	switch {
	case result.Success:
		rm.PairsReconciled++
	case result.Skipped:
		rm.PairsSkipped++
	default:
		rm.PairsFailed++
	}

	if !result.Success {
		for _, err := range result.Errors {
			rm.ErrorCounts[err.Category]++
		}
	}

	// Record worker utilization
	rm.WorkerUtilization[result.WorkerID] += result.Duration

	if rm.logger != nil {
		rm.logger.Debug("Table pair recorded",
			zap.String("table", result.Pair.Name),
			zap.Bool("success", result.Success),
			zap.Bool("skipped", result.Skipped),
			zap.Int("columnsCompared", result.ColumnsCompared),
			zap.Duration("duration", result.Duration),
			zap.Int("worker", result.WorkerID))
	}
}

// RecordFailures tallies the reported rows by failing attribute
func (rm *RunMetrics) RecordFailures(rows []model.ComparisonRow) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.RowsReported = len(rows)
	for _, row := range rows {
		for i, verdict := range row.Verdicts() {
			if verdict == model.VerdictFail {
				rm.FailuresByAttribute[attributeKeys[i]]++
			}
		}
	}
}

// Complete marks the run as complete
func (rm *RunMetrics) Complete() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.EndTime = time.Now()

	if rm.logger != nil {
		rm.logger.Info("Reconciliation run completed",
			zap.Duration("totalDuration", rm.EndTime.Sub(rm.StartTime)),
			zap.Int("pairsReconciled", rm.PairsReconciled),
			zap.Int("pairsFailed", rm.PairsFailed),
			zap.Int("pairsSkipped", rm.PairsSkipped),
			zap.Int("rowsAssembled", rm.RowsAssembled),
			zap.Int("rowsReported", rm.RowsReported))
	}
}

// Duration returns the total duration of the run
func (rm *RunMetrics) Duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// TotalPairs returns the number of table pairs processed
func (rm *RunMetrics) TotalPairs() int {
	return rm.PairsReconciled + rm.PairsFailed + rm.PairsSkipped
}

// GetWorkerEfficiency calculates per-worker active time as a share of the
// run duration.
func (rm *RunMetrics) GetWorkerEfficiency() map[int]float64 {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	efficiency := make(map[int]float64)
	totalDuration := rm.Duration()

	if totalDuration <= 0 {
		return efficiency
	}

	for workerID, duration := range rm.WorkerUtilization {
		efficiency[workerID] = float64(duration) / float64(totalDuration)
	}

	return efficiency
}

// GetErrorDistribution returns error distribution by category
func (rm *RunMetrics) GetErrorDistribution() map[ErrorCategory]float64 {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	distribution := make(map[ErrorCategory]float64)
	totalErrors := 0

	for _, count := range rm.ErrorCounts {
		totalErrors += count
	}

	if totalErrors == 0 {
		return distribution
	}

	for category, count := range rm.ErrorCounts {
		distribution[category] = float64(count) / float64(totalErrors) * 100
	}

	return distribution
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateMetricsReport creates a detailed metrics report
func (rm *RunMetrics) GenerateMetricsReport() string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	totalPairs := rm.PairsReconciled + rm.PairsFailed + rm.PairsSkipped

	report := fmt.Sprintf(`
Reconciliation Metrics Report
=============================
Duration:                %s
Start Time:              %s
End Time:                %s

Table Summary
-------------
Table Pairs:             %d
Shared Tables:           %d
Source-Only Tables:      %d
Target-Only Tables:      %d
Pairs Reconciled:        %d (%.1f%%)
Pairs Failed:            %d (%.1f%%)
Pairs Skipped:           %d (%.1f%%)

Comparison Summary
------------------
Columns Compared:        %d
Rows Assembled:          %d
Rows Reported:           %d
Discrepancy Rate:        %.1f%%
`,
		formatDuration(rm.Duration()),
		rm.StartTime.Format(time.RFC3339),
		rm.EndTime.Format(time.RFC3339),

		totalPairs,
		rm.TablesShared,
		rm.TablesSourceOnly,
		rm.TablesTargetOnly,
		rm.PairsReconciled, rm.getPercentage(float64(rm.PairsReconciled), float64(totalPairs)),
		rm.PairsFailed, rm.getPercentage(float64(rm.PairsFailed), float64(totalPairs)),
		rm.PairsSkipped, rm.getPercentage(float64(rm.PairsSkipped), float64(totalPairs)),

		rm.ColumnsCompared,
		rm.RowsAssembled,
		rm.RowsReported,
		rm.getPercentage(float64(rm.RowsReported), float64(rm.RowsAssembled)),
	)

	// Add per-attribute failure counts
	if len(rm.FailuresByAttribute) > 0 {
		report += "\nFailures by Attribute\n---------------------\n"
		for _, key := range attributeKeys {
			if count, ok := rm.FailuresByAttribute[key]; ok {
				report += fmt.Sprintf("- %s: %d\n", key, count)
			}
		}
	}

	// Add error distribution
	if len(rm.ErrorCounts) > 0 {
		report += "\nError Distribution\n-----------------\n"
		totalErrors := 0
		for _, count := range rm.ErrorCounts {
			totalErrors += count
		}

		for category, count := range rm.ErrorCounts {
			percentage := rm.getPercentage(float64(count), float64(totalErrors))
			report += fmt.Sprintf("- %s: %d (%.1f%%)\n", category.String(), count, percentage)
		}
	}

	// Add worker efficiency
	report += "\nWorker Efficiency\n----------------\n"
	totalDuration := rm.Duration()
	for workerID, duration := range rm.WorkerUtilization {
		if totalDuration > 0 {
			report += fmt.Sprintf("- Worker %d: %.1f%% active time\n",
				workerID, float64(duration)/float64(totalDuration)*100)
		}
	}

	return report
}

// getPercentage safely calculates a percentage, avoiding division by zero
func (rm *RunMetrics) getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

// ToJSON serializes metrics to JSON
func (rm *RunMetrics) ToJSON() ([]byte, error) {
	duration := formatDuration(rm.Duration())
	errorDistribution := rm.GetErrorDistribution()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	return json.Marshal(struct {
		Duration            string                    `json:"duration"`
		TablesShared        int                       `json:"tablesShared"`
		TablesSourceOnly    int                       `json:"tablesSourceOnly"`
		TablesTargetOnly    int                       `json:"tablesTargetOnly"`
		PairsReconciled     int                       `json:"pairsReconciled"`
		PairsFailed         int                       `json:"pairsFailed"`
		PairsSkipped        int                       `json:"pairsSkipped"`
		ColumnsCompared     int                       `json:"columnsCompared"`
		RowsAssembled       int                       `json:"rowsAssembled"`
		RowsReported        int                       `json:"rowsReported"`
		FailuresByAttribute map[string]int            `json:"failuresByAttribute"`
		ErrorDistribution   map[ErrorCategory]float64 `json:"errorDistribution"`
	}{
		Duration:            duration,
		TablesShared:        rm.TablesShared,
		TablesSourceOnly:    rm.TablesSourceOnly,
		TablesTargetOnly:    rm.TablesTargetOnly,
		PairsReconciled:     rm.PairsReconciled,
		PairsFailed:         rm.PairsFailed,
		PairsSkipped:        rm.PairsSkipped,
		ColumnsCompared:     rm.ColumnsCompared,
		RowsAssembled:       rm.RowsAssembled,
		RowsReported:        rm.RowsReported,
		FailuresByAttribute: rm.FailuresByAttribute,
		ErrorDistribution:   errorDistribution,
	})
}
