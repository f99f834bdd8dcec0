// pkg/report/postgres.go
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/connector"
	"github.com/David-Botos/schema-recon/pkg/model"
	"github.com/David-Botos/schema-recon/pkg/reconcile"
)

// DefaultReportTable is the tracking table used when none is configured.
const DefaultReportTable = "schema_recon_rows"

// PostgresSink persists report rows to a tracking table so runs can be
// compared over time.
type PostgresSink struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

var _ Sink = (*PostgresSink)(nil)

// reportRow binds one report row plus run identity for named inserts
type reportRow struct {
	RunID       string    `db:"run_id"`
	GeneratedAt time.Time `db:"generated_at"`
	model.ComparisonRow
}

// NewPostgresSink wraps an open connector and ensures the tracking table exists
func NewPostgresSink(conn connector.DatabaseConnector, table string, logger *zap.Logger) (*PostgresSink, error) {
	if conn == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if table == "" {
		table = DefaultReportTable
	}

	sink := &PostgresSink{
		db:     sqlx.NewDb(conn.DB(), "pgx"),
		table:  table,
		logger: logger,
	}

	if err := sink.setupReportTable(); err != nil {
		return nil, fmt.Errorf("failed to setup report table: %w", err)
	}

	return sink, nil
}

// setupReportTable ensures the tracking table exists
func (s *PostgresSink) setupReportTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			generated_at TIMESTAMP WITH TIME ZONE NOT NULL,
			source_table_name TEXT NOT NULL,
			target_table_name TEXT NOT NULL,
			status_table_name TEXT NOT NULL,
			source_column_name TEXT NOT NULL,
			target_column_name TEXT NOT NULL,
			status_column_name TEXT NOT NULL,
			source_data_type TEXT NOT NULL,
			target_data_type TEXT NOT NULL,
			status_data_type TEXT NOT NULL,
			source_character_maximum_length TEXT NOT NULL,
			target_character_maximum_length TEXT NOT NULL,
			status_character_maximum_length TEXT NOT NULL,
			source_scale TEXT NOT NULL,
			target_scale TEXT NOT NULL,
			status_scale TEXT NOT NULL,
			source_precision TEXT NOT NULL,
			target_precision TEXT NOT NULL,
			status_precision TEXT NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`, pq.QuoteIdentifier(s.table))

	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	s.logger.Info("Ensured report tracking table exists",
		zap.String("table", s.table))
	return nil
}

// Write batch inserts the report rows inside one transaction
func (s *PostgresSink) Write(ctx context.Context, report *reconcile.Report) error {
	if len(report.Rows) == 0 {
		s.logger.Info("No report rows to persist",
			zap.String("runID", report.RunID))
		return nil
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO %s
		(run_id, generated_at,
		 source_table_name, target_table_name, status_table_name,
		 source_column_name, target_column_name, status_column_name,
		 source_data_type, target_data_type, status_data_type,
		 source_character_maximum_length, target_character_maximum_length, status_character_maximum_length,
		 source_scale, target_scale, status_scale,
		 source_precision, target_precision, status_precision)
		VALUES
		(:run_id, :generated_at,
		 :source_table_name, :target_table_name, :status_table_name,
		 :source_column_name, :target_column_name, :status_column_name,
		 :source_data_type, :target_data_type, :status_data_type,
		 :source_character_maximum_length, :target_character_maximum_length, :status_character_maximum_length,
		 :source_scale, :target_scale, :status_scale,
		 :source_precision, :target_precision, :status_precision)
	`, pq.QuoteIdentifier(s.table))

	rows := make([]reportRow, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, reportRow{
			RunID:         report.RunID,
			GeneratedAt:   report.GeneratedAt,
			ComparisonRow: row,
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	if _, err = tx.NamedExecContext(ctx, insertSQL, rows); err != nil {
		return fmt.Errorf("failed to insert report rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report rows: %w", err)
	}

	s.logger.Info("Report persisted",
		zap.String("runID", report.RunID),
		zap.String("table", s.table),
		zap.Int("rows", len(rows)))

	return nil
}
