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

// PostgresSource reads table and column metadata from PostgreSQL's
// information_schema. Unquoted PostgreSQL identifiers are stored lower
// case; the source reports them upper case so names line up with the
// engines that store upper case, and lowers incoming filters to match.
// Data type names are reported as PostgreSQL spells them.
type PostgresSource struct {
	conn    connector.DatabaseConnector
	timeout time.Duration
	logger  *zap.Logger
}

var _ MetadataSource = (*PostgresSource)(nil)

// NewPostgresSource creates a metadata source backed by a PostgreSQL connection
func NewPostgresSource(conn connector.DatabaseConnector, timeout time.Duration) *PostgresSource {
	return &PostgresSource{
		conn:    conn,
		timeout: timeout,
		logger:  zap.L().Named("postgres-catalog"),
	}
}

// ListTables returns the base tables in the given catalog and schema
func (s *PostgresSource) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	op := fmt.Sprintf("listing tables in %s.%s", catalog, schema)

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_catalog = $1 AND table_schema = $2 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout,
		strings.ToLower(catalog), strings.ToLower(schema))
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	tables, err := scanTableNames(rows, op)
	if err != nil {
		return nil, err
	}

	for i, table := range tables {
		tables[i] = strings.ToUpper(table)
	}

	s.logger.Debug("Listed tables",
		zap.String("catalog", catalog),
		zap.String("schema", schema),
		zap.Int("count", len(tables)))

	return tables, nil
}

// ListColumns returns the column descriptors for one table in definition order
func (s *PostgresSource) ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error) {
	op := fmt.Sprintf("describing columns of %s.%s.%s", catalog, schema, table)

	query := `
		SELECT column_name, data_type, character_maximum_length, numeric_precision, numeric_scale
		FROM information_schema.columns
		WHERE table_catalog = $1 AND table_schema = $2 AND table_name = $3
		ORDER BY ordinal_position
	`

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout,
		strings.ToLower(catalog), strings.ToLower(schema), strings.ToLower(table))
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}

	descriptors, err := scanColumnDescriptors(rows, op)
	if err != nil {
		return nil, err
	}

	for i := range descriptors {
		descriptors[i].Name = strings.ToUpper(descriptors[i].Name)
	}

	return descriptors, nil
}
