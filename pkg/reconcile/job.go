package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/schema-recon/pkg/model"
)

// PairJob represents one table pair to reconcile
type PairJob struct {
	ID         string    // Unique job identifier
	Pair       TablePair // Aligned table names
	CreatedAt  time.Time // Job creation timestamp
	RetryCount int       // Number of retries attempted
	MaxRetries int       // Maximum allowed retries
}

// NewPairJob creates a new pair job with defaults
func NewPairJob(pair TablePair) PairJob {
	return PairJob{
		ID:         uuid.New().String(),
		Pair:       pair,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 1, // Connection blips retry once by default
	}
}

// WithMaxRetries sets the maximum retry count and returns the modified job
func (j PairJob) WithMaxRetries(maxRetries int) PairJob {
	j.MaxRetries = maxRetries
	return j
}

// IsRetryable checks if the job can be retried
func (j PairJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}

// Retry increments the retry count and returns the modified job
func (j PairJob) Retry() PairJob {
	j.RetryCount++
	return j
}

// PairResult represents the outcome of reconciling one table pair
type PairResult struct {
	JobID           string
	Pair            TablePair
	Success         bool
	Skipped         bool
	Rows            []model.ComparisonRow
	ColumnsCompared int
	Errors          []ErrorRecord
	Warnings        []string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	RetryCount      int
	WorkerID        int
}

// NewPairResult initializes a result for a job
func NewPairResult(job PairJob, workerID int) *PairResult {
	now := time.Now()
	return &PairResult{
		JobID:      job.ID,
		Pair:       job.Pair,
		StartTime:  now,
		RetryCount: job.RetryCount,
		WorkerID:   workerID,
		Errors:     make([]ErrorRecord, 0),
		Warnings:   make([]string, 0),
	}
}

// Complete marks the reconciliation as complete and calculates duration
func (r *PairResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// MarkSkipped flags the pair as skipped; its rows are withheld from the report
func (r *PairResult) MarkSkipped() {
	r.Skipped = true
	r.Rows = nil
}

// AddError adds an error to the result
func (r *PairResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// AddWarning adds a warning to the result
func (r *PairResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// ErrorCount returns the number of errors
func (r *PairResult) ErrorCount() int {
	return len(r.Errors)
}

// HasErrors checks if any errors occurred
func (r *PairResult) HasErrors() bool {
	return len(r.Errors) > 0
}
