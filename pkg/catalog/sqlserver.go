package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/connector"
	"github.com/David-Botos/schema-recon/pkg/model"
)

// SQLServerSource reads table and column metadata from SQL Server's
// INFORMATION_SCHEMA views, qualified by catalog so one connection can
// describe any database visible to the login. Identifiers are reported
// in their stored case; collations decide case sensitivity, not us.
type SQLServerSource struct {
	conn    connector.DatabaseConnector
	timeout time.Duration
	logger  *zap.Logger
}

var _ MetadataSource = (*SQLServerSource)(nil)

// NewSQLServerSource creates a metadata source backed by a SQL Server connection
func NewSQLServerSource(conn connector.DatabaseConnector, timeout time.Duration) *SQLServerSource {
	return &SQLServerSource{
		conn:    conn,
		timeout: timeout,
		logger:  zap.L().Named("sqlserver-catalog"),
	}
}

// ListTables returns the base tables in the given catalog and schema
func (s *SQLServerSource) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	op := fmt.Sprintf("listing tables in %s.%s", catalog, schema)

	query := fmt.Sprintf(`
		SELECT TABLE_NAME
		FROM [%s].INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`, catalog)

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout, schema)
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	tables, err := scanTableNames(rows, op)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Listed tables",
		zap.String("catalog", catalog),
		zap.String("schema", schema),
		zap.Int("count", len(tables)))

	return tables, nil
}

// ListColumns returns the column descriptors for one table in definition order
func (s *SQLServerSource) ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error) {
	op := fmt.Sprintf("describing columns of %s.%s.%s", catalog, schema, table)

	query := fmt.Sprintf(`
		SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
		FROM [%s].INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION
	`, catalog)

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout, schema, table)
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	return scanColumnDescriptors(rows, op)
}
