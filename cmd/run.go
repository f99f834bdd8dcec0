package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/catalog"
	"github.com/David-Botos/schema-recon/pkg/config"
	"github.com/David-Botos/schema-recon/pkg/connector"
	"github.com/David-Botos/schema-recon/pkg/reconcile"
	"github.com/David-Botos/schema-recon/pkg/report"
)

var (
	outputPath   string
	storeRows    bool
	storeTable   string
	showProgress bool
	workers      int
	failFast     bool
	showMetrics  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile the source and target schemas and report mismatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flag overrides
		if workers > 0 {
			cfg.WorkerPoolSize = workers
		}
		if cmd.Flags().Changed("fail-fast") {
			cfg.FailFast = failFast
		}

		factory := connector.NewConnectorFactory(cfg, logger)
		sourceConn, targetConn, err := factory.CreateEndpointConnectors(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect endpoints: %w", err)
		}
		defer sourceConn.Close()
		defer targetConn.Close()

		sourceMeta, err := catalog.NewSource(cfg.Source, sourceConn)
		if err != nil {
			return fmt.Errorf("failed to build source metadata reader: %w", err)
		}

		targetMeta, err := catalog.NewSource(cfg.Target, targetConn)
		if err != nil {
			return fmt.Errorf("failed to build target metadata reader: %w", err)
		}

		reconciler := reconcile.NewReconciler(
			reconcile.Endpoint{Metadata: sourceMeta, Catalog: cfg.Source.Catalog, Schema: cfg.Source.Schema},
			reconcile.Endpoint{Metadata: targetMeta, Catalog: cfg.Target.Catalog, Schema: cfg.Target.Schema},
			reconcile.Options{
				ExcludedColumns: cfg.ExcludedColumns,
				Tolerance: reconcile.LengthTolerance{
					SourceLength: cfg.LengthToleranceSource,
					TargetLength: cfg.LengthToleranceTarget,
				},
				Workers:          cfg.WorkerPoolSize,
				StrictDuplicates: cfg.StrictDuplicates,
				FailFast:         cfg.FailFast,
			},
			logger,
		)

		if showProgress {
			uiprogress.Start()
			bar := uiprogress.AddBar(1).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Reconciling: "
			})
			reconciler = reconciler.WithProgress(func(completed, total int) {
				bar.Total = total
				bar.Set(completed)
			})
		}

		result, err := reconciler.Run(ctx)

		if showProgress {
			uiprogress.Stop()
		}

		if err != nil {
			return fmt.Errorf("reconciliation failed: %w", err)
		}

		if err := writeReport(ctx, result); err != nil {
			return err
		}

		if storeRows {
			if err := persistReport(ctx, cfg, targetConn, result); err != nil {
				return err
			}
		}

		if showMetrics {
			fmt.Println(reconciler.GenerateReport())
		}

		return nil
	},
}

// writeReport sends the report to the CSV file or the console
func writeReport(ctx context.Context, result *reconcile.Report) error {
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outputPath, err)
		}
		defer f.Close()

		if err := report.NewCSVSink(f, logger).Write(ctx, result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		fmt.Printf("Report written to %s (%d rows, run %s)\n",
			outputPath, len(result.Rows), result.RunID)
		return nil
	}

	return report.NewConsoleSink(os.Stdout, logger).Write(ctx, result)
}

// persistReport stores the report rows on the target endpoint, which must
// be PostgreSQL.
func persistReport(ctx context.Context, cfg *config.Config, targetConn connector.DatabaseConnector, result *reconcile.Report) error {
	if cfg.Target.Driver != config.DriverPostgres {
		return fmt.Errorf("--store requires a postgres target endpoint, got %s", cfg.Target.Driver)
	}

	sink, err := report.NewPostgresSink(targetConn, storeTable, logger)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}

	if err := sink.Write(ctx, result); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	logger.Info("Stored report rows on target",
		zap.String("runID", result.RunID),
		zap.Int("rows", len(result.Rows)))

	return nil
}

func init() {
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report as CSV to this file instead of the console")
	runCmd.Flags().BoolVar(&storeRows, "store", false, "persist report rows to the target PostgreSQL endpoint")
	runCmd.Flags().StringVar(&storeTable, "store-table", report.DefaultReportTable, "tracking table for --store")
	runCmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress bar while reconciling")
	runCmd.Flags().IntVar(&workers, "workers", 0, "worker count override (0 uses WORKER_POOL_SIZE or the CPU count)")
	runCmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort the run on the first table pair error")
	runCmd.Flags().BoolVar(&showMetrics, "metrics", false, "print the run metrics report after the results")

	RootCmd.AddCommand(runCmd)
}
