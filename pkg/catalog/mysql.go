package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/connector"
	"github.com/David-Botos/schema-recon/pkg/model"
)

// MySQLSource reads table and column metadata from MySQL's
// information_schema. MySQL treats schemas as databases, so the schema
// argument selects the database and the catalog argument is ignored.
// Identifiers are reported exactly as the engine stores them.
type MySQLSource struct {
	conn    connector.DatabaseConnector
	timeout time.Duration
	logger  *zap.Logger
}

var _ MetadataSource = (*MySQLSource)(nil)

// NewMySQLSource creates a metadata source backed by a MySQL connection
func NewMySQLSource(conn connector.DatabaseConnector, timeout time.Duration) *MySQLSource {
	return &MySQLSource{
		conn:    conn,
		timeout: timeout,
		logger:  zap.L().Named("mysql-catalog"),
	}
}

// ListTables returns the base tables in the given schema
func (s *MySQLSource) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	op := fmt.Sprintf("listing tables in %s", schema)

	query := `
		SELECT TABLE_NAME
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout, schema)
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	tables, err := scanTableNames(rows, op)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Listed tables",
		zap.String("schema", schema),
		zap.Int("count", len(tables)))

	return tables, nil
}

// ListColumns returns the column descriptors for one table in definition order
func (s *MySQLSource) ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error) {
	op := fmt.Sprintf("describing columns of %s.%s", schema, table)

	query := `
		SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout, schema, table)
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	return scanColumnDescriptors(rows, op)
}
