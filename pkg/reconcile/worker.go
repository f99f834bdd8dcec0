package reconcile

import (
	"context"
	"database/sql"
	"sync"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/catalog"
	"github.com/David-Botos/schema-recon/pkg/model"
)

// WorkerState represents the current state of a worker
type WorkerState string

const (
	WorkerStateIdle      WorkerState = "idle"
	WorkerStateWorking   WorkerState = "working"
	WorkerStateCompleted WorkerState = "completed"
)

// Endpoint is one side of a reconciliation run: a metadata source plus
// the catalog and schema it enumerates.
type Endpoint struct {
	Metadata catalog.MetadataSource
	Catalog  string
	Schema   string
}

// Worker reconciles table pairs pulled from the job channel
type Worker struct {
	ID           int
	source       Endpoint
	target       Endpoint
	assembler    *RowAssembler
	errorHandler *ErrorHandler
	logger       *zap.Logger
	excluded     map[string]bool
	strict       bool
	state        WorkerState
	currentJob   *PairJob
	stateLock    sync.RWMutex
}

// NewWorker creates a new worker
func NewWorker(
	id int,
	source Endpoint,
	target Endpoint,
	assembler *RowAssembler,
	errorHandler *ErrorHandler,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		ID:           id,
		source:       source,
		target:       target,
		assembler:    assembler,
		errorHandler: errorHandler,
		logger:       logger.With(zap.Int("workerID", id)),
		state:        WorkerStateIdle,
		strict:       true,
	}
}

// WithExcludedColumns sets the normalized excluded column set
func (w *Worker) WithExcludedColumns(excluded map[string]bool) *Worker {
	w.excluded = excluded
	return w
}

// WithStrictDuplicates controls duplicate column handling. Strict treats
// a repeated column name as an error; otherwise the last occurrence wins.
func (w *Worker) WithStrictDuplicates(strict bool) *Worker {
	w.strict = strict
	return w
}

// GetState returns the current state of the worker
func (w *Worker) GetState() WorkerState {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()
	return w.state
}

// setState updates the worker state
func (w *Worker) setState(state WorkerState) {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()

	prevState := w.state
	w.state = state

	if prevState != state {
		w.logger.Debug("Worker state changed",
			zap.String("from", string(prevState)),
			zap.String("to", string(state)))
	}
}

// GetCurrentJob returns the job currently being processed
func (w *Worker) GetCurrentJob() *PairJob {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()
	return w.currentJob
}

func (w *Worker) setCurrentJob(job *PairJob) {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()
	w.currentJob = job
}

func (w *Worker) clearCurrentJob() {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()
	w.currentJob = nil
}

// Start begins the worker processing loop
func (w *Worker) Start(ctx context.Context, jobs <-chan PairJob, results chan<- PairResult) {
	w.setState(WorkerStateWorking)
	w.logger.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopping due to context cancellation")
			w.setState(WorkerStateCompleted)
			return

		case job, ok := <-jobs:
			if !ok {
				// Channel closed, no more jobs
				w.logger.Debug("Worker stopping due to closed job channel")
				w.setState(WorkerStateCompleted)
				return
			}

			w.logger.Debug("Received job",
				zap.String("table", job.Pair.Name),
				zap.Int("retryCount", job.RetryCount))

			// Process the job
			result := w.ProcessJob(ctx, job)

			// Send the result
			select {
			case results <- result:
				// Result sent successfully
			case <-ctx.Done():
				w.logger.Warn("Context cancelled while sending result",
					zap.String("table", job.Pair.Name))
				w.setState(WorkerStateCompleted)
				return
			}
		}
	}
}

// ProcessJob reconciles a single table pair, retrying transient failures
// up to the job's retry budget.
func (w *Worker) ProcessJob(ctx context.Context, job PairJob) PairResult {
	w.setCurrentJob(&job)
	w.setState(WorkerStateWorking)

	result := NewPairResult(job, w.ID)
	success := w.reconcilePair(ctx, job, result)

	for !success && job.IsRetryable() && lastErrorRetryable(result) {
		job = job.Retry()
		w.logger.Warn("Retrying table pair",
			zap.String("table", job.Pair.Name),
			zap.Int("retryCount", job.RetryCount))

		result = NewPairResult(job, w.ID)
		success = w.reconcilePair(ctx, job, result)
	}

	result.Complete(success)

	if success {
		w.logger.Debug("Table pair reconciled",
			zap.String("table", job.Pair.Name),
			zap.Int("columnsCompared", result.ColumnsCompared),
			zap.Duration("duration", result.Duration))
	} else {
		w.logger.Warn("Table pair failed",
			zap.String("table", job.Pair.Name),
			zap.Int("errors", len(result.Errors)),
			zap.Duration("duration", result.Duration))
	}

	w.clearCurrentJob()
	w.setState(WorkerStateIdle)

	return *result
}

// reconcilePair fetches both sides' columns, aligns them, and assembles
// the comparison rows.
func (w *Worker) reconcilePair(ctx context.Context, job PairJob, result *PairResult) bool {
	pair := job.Pair

	sourceColumns, err := listSideColumns(ctx, w.source, pair.Source)
	if err != nil {
		record := NewErrorRecord(err, w.errorHandler.CategorizeError(err)).
			WithEndpoint("source").
			WithTable(pair.Name)
		result.AddError(record)
		if w.errorHandler.HandleError(record) != ActionContinue {
			result.MarkSkipped()
			return false
		}
	}

	targetColumns, err := listSideColumns(ctx, w.target, pair.Target)
	if err != nil {
		record := NewErrorRecord(err, w.errorHandler.CategorizeError(err)).
			WithEndpoint("target").
			WithTable(pair.Name)
		result.AddError(record)
		if w.errorHandler.HandleError(record) != ActionContinue {
			result.MarkSkipped()
			return false
		}
	}

	sourceIndex, err := indexColumns(sourceColumns, w.excluded, w.strict, w.logger, pair.Name)
	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryDuplicateColumn).
			WithEndpoint("source").
			WithTable(pair.Name)
		result.AddError(record)
		w.errorHandler.HandleError(record)
		result.MarkSkipped()
		return false
	}

	targetIndex, err := indexColumns(targetColumns, w.excluded, w.strict, w.logger, pair.Name)
	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryDuplicateColumn).
			WithEndpoint("target").
			WithTable(pair.Name)
		result.AddError(record)
		w.errorHandler.HandleError(record)
		result.MarkSkipped()
		return false
	}

	result.Rows = w.assembler.AssembleRows(pair, sourceIndex, targetIndex)
	result.ColumnsCompared = len(result.Rows)

	return true
}

// listSideColumns fetches one side's descriptors. A side that lacks the
// table contributes no columns.
func listSideColumns(ctx context.Context, endpoint Endpoint, table sql.NullString) ([]model.ColumnDescriptor, error) {
	if !table.Valid {
		return nil, nil
	}
	return endpoint.Metadata.ListColumns(ctx, endpoint.Catalog, endpoint.Schema, table.String)
}

func lastErrorRetryable(result *PairResult) bool {
	if !result.HasErrors() {
		return false
	}
	return IsRetryableError(result.Errors[len(result.Errors)-1].Error)
}
