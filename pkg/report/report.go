package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/model"
	"github.com/David-Botos/schema-recon/pkg/reconcile"
)

// Sink persists or displays a finished reconciliation report
type Sink interface {
	Write(ctx context.Context, report *reconcile.Report) error
}

// ConsoleSink renders the report as an aligned text table
type ConsoleSink struct {
	out    io.Writer
	logger *zap.Logger
}

var _ Sink = (*ConsoleSink)(nil)

// NewConsoleSink creates a console sink writing to out
func NewConsoleSink(out io.Writer, logger *zap.Logger) *ConsoleSink {
	return &ConsoleSink{
		out:    out,
		logger: logger,
	}
}

// Write renders the report rows with the full 18-column header
func (s *ConsoleSink) Write(_ context.Context, report *reconcile.Report) error {
	if len(report.Rows) == 0 {
		_, err := fmt.Fprintf(s.out, "No discrepancies across %d table pairs (%d rows examined).\n",
			report.TablePairs, report.RowsExamined)
		return err
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(model.ReportHeader(), "\t"))
	for _, row := range report.Rows {
		fmt.Fprintln(w, strings.Join(row.Values(), "\t"))
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	_, err := fmt.Fprintf(s.out, "\n%d mismatched rows (%d examined) across %d table pairs, run %s\n",
		len(report.Rows), report.RowsExamined, report.TablePairs, report.RunID)
	return err
}
