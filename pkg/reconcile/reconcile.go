package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/model"
)

// Options control a reconciliation run. Zero values fall back to the
// documented defaults, except StrictDuplicates: start from
// DefaultOptions and override to keep strict handling on.
type Options struct {
	ExcludedColumns  []string // names dropped from every comparison, matched case-insensitively
	Tolerance        LengthTolerance
	Workers          int  // 0 derives a count from the CPUs; 1 is fully sequential
	StrictDuplicates bool // a repeated column name fails the pair instead of last-wins
	FailFast         bool // abort the run on the first pair-level error
}

// DefaultOptions returns the standard run options
func DefaultOptions() Options {
	return Options{
		ExcludedColumns:  DefaultExcludedColumns(),
		Tolerance:        DefaultLengthTolerance(),
		StrictDuplicates: true,
	}
}

// Report is the product of a run: the failing rows in their final
// order, plus enough bookkeeping to describe what was examined.
type Report struct {
	RunID        string
	GeneratedAt  time.Time
	Rows         []model.ComparisonRow
	TablePairs   int
	PairsSkipped int
	RowsExamined int
}

// Reconciler drives one reconciliation run: list tables on both
// endpoints, align them into pairs, fan the pairs out to a worker
// pool, and assemble the filtered report. A Reconciler is single-use.
type Reconciler struct {
	source       Endpoint
	target       Endpoint
	options      Options
	logger       *zap.Logger
	errorHandler *ErrorHandler
	metrics      *RunMetrics
	workers      []*Worker
	workerCount  int
	progress     func(completed, total int)
}

// NewReconciler creates a reconciler for the two endpoints
func NewReconciler(source, target Endpoint, options Options, logger *zap.Logger) *Reconciler {
	if options.ExcludedColumns == nil {
		options.ExcludedColumns = DefaultExcludedColumns()
	}
	if options.Tolerance == (LengthTolerance{}) {
		options.Tolerance = DefaultLengthTolerance()
	}

	workerCount := options.Workers
	if workerCount <= 0 {
		workerCount = calculateOptimalWorkerCount()
	}

	r := &Reconciler{
		source:       source,
		target:       target,
		options:      options,
		logger:       logger,
		errorHandler: NewErrorHandler(logger, options.FailFast),
		metrics:      NewRunMetrics(logger),
		workerCount:  workerCount,
	}

	r.createWorkers()

	return r
}

// createWorkers initializes the worker pool
func (r *Reconciler) createWorkers() {
	excluded := buildExcludedSet(r.options.ExcludedColumns)
	assembler := NewRowAssembler(NewComparator(r.options.Tolerance))

	r.workers = make([]*Worker, r.workerCount)
	for i := 0; i < r.workerCount; i++ {
		r.workers[i] = NewWorker(i, r.source, r.target, assembler, r.errorHandler, r.logger).
			WithExcludedColumns(excluded).
			WithStrictDuplicates(r.options.StrictDuplicates)
	}
}

// WithProgress registers a callback invoked after each pair completes
func (r *Reconciler) WithProgress(fn func(completed, total int)) *Reconciler {
	r.progress = fn
	return r
}

// Run executes the full reconciliation and returns the report of
// failing rows. A table-listing failure on either endpoint aborts the
// run; per-pair failures skip that pair unless FailFast is set or an
// error threshold trips.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	runID := uuid.New().String()
	logger := r.logger.With(zap.String("runID", runID))

	logger.Info("Starting reconciliation run",
		zap.String("sourceCatalog", r.source.Catalog),
		zap.String("sourceSchema", r.source.Schema),
		zap.String("targetCatalog", r.target.Catalog),
		zap.String("targetSchema", r.target.Schema),
		zap.Int("workers", r.workerCount))

	sourceTables, err := r.source.Metadata.ListTables(ctx, r.source.Catalog, r.source.Schema)
	if err != nil {
		record := NewErrorRecord(err, r.errorHandler.CategorizeError(err)).WithEndpoint("source")
		r.errorHandler.RecordError(record)
		return nil, fmt.Errorf("listing source tables: %w", err)
	}

	targetTables, err := r.target.Metadata.ListTables(ctx, r.target.Catalog, r.target.Schema)
	if err != nil {
		record := NewErrorRecord(err, r.errorHandler.CategorizeError(err)).WithEndpoint("target")
		r.errorHandler.RecordError(record)
		return nil, fmt.Errorf("listing target tables: %w", err)
	}

	pairs := BuildTablePairs(sourceTables, targetTables)
	r.metrics.RecordTablePairs(pairs)

	if len(pairs) == 0 {
		logger.Info("No tables found on either endpoint")
		r.metrics.Complete()
		return &Report{RunID: runID, GeneratedAt: time.Now()}, nil
	}

	jobQueue := make(chan PairJob, r.workerCount*10)
	resultQueue := make(chan PairResult, r.workerCount*10)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	// Collect rows keyed by pair so worker completion order cannot leak
	// into the report.
	rowsByPair := make(map[string][]model.ComparisonRow, len(pairs))
	var aborted bool

	done := make(chan struct{})
	go func() {
		defer close(done)

		completed := 0
		for result := range resultQueue {
			completed++
			r.metrics.RecordPairResult(result)

			if result.Success {
				rowsByPair[result.Pair.Name] = result.Rows
			}

			if r.progress != nil {
				r.progress(completed, len(pairs))
			}

			if !result.Success && !aborted && r.errorHandler.ShouldAbort() {
				logger.Error("Aborting run: error threshold exceeded",
					zap.String("table", result.Pair.Name))
				aborted = true
				// Keep draining so in-flight workers never block on send.
				cancelWorkers()
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < r.workerCount; i++ {
		wg.Add(1)
		go func(worker *Worker) {
			defer wg.Done()
			worker.Start(workerCtx, jobQueue, resultQueue)
		}(r.workers[i])
	}

	r.submitJobs(workerCtx, logger, pairs, jobQueue)

	wg.Wait()
	close(resultQueue)
	<-done

	assembled := make([]model.ComparisonRow, 0)
	for _, pair := range pairs {
		assembled = append(assembled, rowsByPair[pair.Name]...)
	}

	// Restore the (source table, target table) ordering on the rendered
	// names; the stable sort keeps each pair's column order intact.
	sort.SliceStable(assembled, func(i, j int) bool {
		if assembled[i].SourceTableName != assembled[j].SourceTableName {
			return assembled[i].SourceTableName < assembled[j].SourceTableName
		}
		return assembled[i].TargetTableName < assembled[j].TargetTableName
	})

	failures := FilterFailures(assembled)
	r.metrics.RecordFailures(failures)
	r.metrics.Complete()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if aborted {
		return nil, fmt.Errorf("run aborted: error threshold exceeded after %d table pairs", r.metrics.TotalPairs())
	}

	return &Report{
		RunID:        runID,
		GeneratedAt:  time.Now(),
		Rows:         failures,
		TablePairs:   len(pairs),
		PairsSkipped: r.metrics.PairsSkipped,
		RowsExamined: len(assembled),
	}, nil
}

// submitJobs queues one job per pair and closes the queue
func (r *Reconciler) submitJobs(ctx context.Context, logger *zap.Logger, pairs []TablePair, jobQueue chan<- PairJob) {
	defer close(jobQueue)

	for _, pair := range pairs {
		job := NewPairJob(pair)
		select {
		case jobQueue <- job:
			logger.Debug("Submitted pair",
				zap.String("table", pair.Name),
				zap.String("jobID", job.ID))
		case <-ctx.Done():
			logger.Warn("Context cancelled while submitting pairs")
			return
		}
	}
}

// ReconcileTable reconciles a single table assumed present on both
// endpoints, bypassing the listing step and the pool.
func (r *Reconciler) ReconcileTable(ctx context.Context, table string) (*PairResult, error) {
	if table == "" {
		return nil, fmt.Errorf("no table name provided")
	}

	r.logger.Info("Starting single table reconciliation",
		zap.String("table", table))

	pair := TablePair{
		Name:   table,
		Source: sql.NullString{String: table, Valid: true},
		Target: sql.NullString{String: table, Valid: true},
	}

	worker := NewWorker(
		-1, // Special ID for the single-table worker
		r.source,
		r.target,
		NewRowAssembler(NewComparator(r.options.Tolerance)),
		r.errorHandler,
		r.logger,
	).
		WithExcludedColumns(buildExcludedSet(r.options.ExcludedColumns)).
		WithStrictDuplicates(r.options.StrictDuplicates)

	result := worker.ProcessJob(ctx, NewPairJob(pair))
	r.metrics.RecordPairResult(result)

	return &result, nil
}

// GetMetrics returns the run metrics
func (r *Reconciler) GetMetrics() *RunMetrics {
	return r.metrics
}

// GetErrorSummary returns error counts by category
func (r *Reconciler) GetErrorSummary() map[ErrorCategory]int {
	return r.errorHandler.GetErrorSummary()
}

// GenerateReport generates the run metrics report
func (r *Reconciler) GenerateReport() string {
	return r.metrics.GenerateMetricsReport()
}

// calculateOptimalWorkerCount picks a worker count from the CPU count
// and the per-endpoint connection budget
func calculateOptimalWorkerCount() int {
	numCPU := runtime.NumCPU()

	// Catalog queries are I/O bound; 75% of the CPUs is plenty
	cpuBasedWorkers := int(math.Ceil(float64(numCPU) * 0.75))

	// Each in-flight pair holds one statement on each endpoint's pool,
	// so stay inside a default pool of 10 connections per side
	maxConnectionPool := 10
	maxWorkersForPool := maxConnectionPool * 75 / 100

	workerCount := min(cpuBasedWorkers, maxWorkersForPool)

	// Ensure at least 1 worker and not more than 8
	if workerCount < 1 {
		workerCount = 1
	} else if workerCount > 8 {
		workerCount = 8
	}

	return workerCount
}
