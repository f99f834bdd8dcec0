package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/connector"
	"github.com/David-Botos/schema-recon/pkg/model"
)

// DB2Source reads table and column metadata from Db2's syscat views.
// Db2 has no catalog level, so the catalog argument is ignored and the
// schema argument selects TABSCHEMA. syscat.columns overloads LENGTH:
// for character types it is the maximum length, for decimal types it is
// the precision. The source maps it to the matching attribute per type
// and leaves the others absent.
type DB2Source struct {
	conn    connector.DatabaseConnector
	timeout time.Duration
	logger  *zap.Logger
}

var _ MetadataSource = (*DB2Source)(nil)

// Character and decimal type families used to interpret syscat LENGTH.
var (
	db2CharTypes = map[string]bool{
		"CHARACTER":       true,
		"VARCHAR":         true,
		"CHAR":            true,
		"GRAPHIC":         true,
		"VARGRAPHIC":      true,
		"CLOB":            true,
		"DBCLOB":          true,
		"LONG VARCHAR":    true,
		"LONG VARGRAPHIC": true,
	}
	db2DecimalTypes = map[string]bool{
		"DECIMAL":  true,
		"NUMERIC":  true,
		"DECFLOAT": true,
	}
)

// NewDB2Source creates a metadata source backed by a Db2 connection
func NewDB2Source(conn connector.DatabaseConnector, timeout time.Duration) *DB2Source {
	return &DB2Source{
		conn:    conn,
		timeout: timeout,
		logger:  zap.L().Named("db2-catalog"),
	}
}

// ListTables returns the base tables in the given schema
func (s *DB2Source) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	op := fmt.Sprintf("listing tables in %s", schema)

	query := `
		SELECT tabname
		FROM syscat.tables
		WHERE tabschema = ? AND type = 'T'
		ORDER BY tabname
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
func (s *DB2Source) ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error) {
	op := fmt.Sprintf("describing columns of %s.%s", schema, table)

	query := `
		SELECT colname, typename, length, scale
		FROM syscat.columns
		WHERE tabschema = ? AND tabname = ?
		ORDER BY colno
	`

	rows, err := s.conn.QueryWithTimeout(ctx, query, s.timeout,
		strings.ToUpper(schema), strings.ToUpper(table))
	if err != nil {
		return nil, wrapUnavailable(op, err)
	}
	defer rows.Close()

	descriptors := make([]model.ColumnDescriptor, 0)
	for rows.Next() {
		var (
			name     string
			typeName string
			length   sql.NullInt64
			scale    sql.NullInt64
		)

		if err := rows.Scan(&name, &typeName, &length, &scale); err != nil {
			return nil, wrapMalformed(op, err)
		}

		descriptor := model.NewColumnDescriptor(name, strings.ToUpper(typeName))
		switch {
		case db2CharTypes[descriptor.DataType.String]:
			if length.Valid {
				descriptor = descriptor.WithCharMaxLength(length.Int64)
			}
		case db2DecimalTypes[descriptor.DataType.String]:
			if length.Valid {
				descriptor = descriptor.WithPrecision(length.Int64)
			}
			if scale.Valid {
				descriptor = descriptor.WithScale(scale.Int64)
			}
		}

		descriptors = append(descriptors, descriptor)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapUnavailable(op, err)
	}

	return descriptors, nil
}
