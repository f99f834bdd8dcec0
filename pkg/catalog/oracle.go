package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/connector"
	"github.com/David-Botos/schema-recon/pkg/model"
)

// OracleSource reads table and column metadata from Oracle's all_tables
// and all_tab_columns views. Oracle has no catalog level, so the catalog
// argument is ignored and the schema argument selects the owner. A zero
// char_length is reported for non-character types and maps to an absent
// character maximum length.
type OracleSource struct {
	conn    connector.DatabaseConnector
	timeout time.Duration
	logger  *zap.Logger
}

var _ MetadataSource = (*OracleSource)(nil)

// NewOracleSource creates a metadata source backed by an Oracle connection
func NewOracleSource(conn connector.DatabaseConnector, timeout time.Duration) *OracleSource {
	return &OracleSource{
		conn:    conn,
		timeout: timeout,
		logger:  zap.L().Named("oracle-catalog"),
	}
}

// ListTables returns the tables owned by the given schema
func (s *OracleSource) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	op := fmt.Sprintf("listing tables in %s", schema)

	query := `
		SELECT table_name
		FROM all_tables
		WHERE owner = :1
		ORDER BY table_name
	`

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout, strings.ToUpper(schema))
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
func (s *OracleSource) ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error) {
	op := fmt.Sprintf("describing columns of %s.%s", schema, table)

	query := `
		SELECT column_name, data_type, NULLIF(char_length, 0), data_precision, data_scale
		FROM all_tab_columns
		WHERE owner = :1 AND table_name = :2
		ORDER BY column_id
	`

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout,
		strings.ToUpper(schema), strings.ToUpper(table))
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	return scanColumnDescriptors(rows, op)
}
