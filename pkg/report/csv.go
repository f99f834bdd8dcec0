package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/model"
	"github.com/David-Botos/schema-recon/pkg/reconcile"
)

// CSVSink writes the report as CSV with the fixed 18-column header.
// The caller owns the writer; file sinks are opened and closed by the
// CLI layer.
type CSVSink struct {
	out    io.Writer
	logger *zap.Logger
}

var _ Sink = (*CSVSink)(nil)

// NewCSVSink creates a CSV sink writing to out
func NewCSVSink(out io.Writer, logger *zap.Logger) *CSVSink {
	return &CSVSink{
		out:    out,
		logger: logger,
	}
}

// Write emits the header row followed by every report row
func (s *CSVSink) Write(_ context.Context, report *reconcile.Report) error {
	w := csv.NewWriter(s.out)

	if err := w.Write(model.ReportHeader()); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, row := range report.Rows {
		if err := w.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	s.logger.Info("Report written as CSV",
		zap.String("runID", report.RunID),
		zap.Int("rows", len(report.Rows)))

	return nil
}
