package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/connector"
	"github.com/David-Botos/schema-recon/pkg/model"
)

// SnowflakeSource reads table and column metadata from Snowflake's
// INFORMATION_SCHEMA views.
type SnowflakeSource struct {
	conn    connector.DatabaseConnector
	timeout time.Duration
	logger  *zap.Logger
}

var _ MetadataSource = (*SnowflakeSource)(nil)

// NewSnowflakeSource creates a metadata source backed by a Snowflake connection
func NewSnowflakeSource(conn connector.DatabaseConnector, timeout time.Duration) *SnowflakeSource {
	return &SnowflakeSource{
		conn:    conn,
		timeout: timeout,
		logger:  zap.L().Named("snowflake-catalog"),
	}
}

// ListTables returns the base tables in the given catalog and schema
func (s *SnowflakeSource) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	op := fmt.Sprintf("listing tables in %s.%s", catalog, schema)

	query := fmt.Sprintf(`
		SELECT TABLE_NAME
		FROM %s.INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
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
func (s *SnowflakeSource) ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error) {
	op := fmt.Sprintf("describing columns of %s.%s.%s", catalog, schema, table)

	query := fmt.Sprintf(`
		SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
		FROM %s.INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, catalog)

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout, schema, table)
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	return scanColumnDescriptors(rows, op)
}
