package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/David-Botos/schema-recon/pkg/model"
)

// Sentinel errors for metadata retrieval. Callers classify failures with
// errors.Is.
var (
	// ErrMetadataUnavailable indicates the endpoint could not produce a
	// table or column listing.
	ErrMetadataUnavailable = errors.New("catalog metadata unavailable")

	// ErrMalformedAttribute indicates an attribute value that could not be
	// read as its expected type.
	ErrMalformedAttribute = errors.New("malformed attribute value")
)

// MetadataSource enumerates tables and describes columns for one endpoint.
type MetadataSource interface {
	// ListTables returns the names of the base tables in the given catalog
	// and schema. A schema with no tables yields an empty slice, not an
	// error.
	ListTables(ctx context.Context, catalog, schema string) ([]string, error)

	// ListColumns returns the column descriptors for one table in the order
	// the engine defines them.
	ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error)
}

func wrapUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrMetadataUnavailable, err)
}

func wrapMalformed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrMalformedAttribute, err)
}

// scanTableNames drains a single-column result set of table names.
func scanTableNames(rows *sql.Rows, op string) ([]string, error) {
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapMalformed(op, err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapUnavailable(op, err)
	}

	return tables, nil
}

// scanColumnDescriptors drains a five-column result set in the standard
// information_schema shape: name, data type, character maximum length,
// numeric precision, numeric scale.
func scanColumnDescriptors(rows *sql.Rows, op string) ([]model.ColumnDescriptor, error) {
	defer rows.Close()

	descriptors := make([]model.ColumnDescriptor, 0)
	for rows.Next() {
		var (
			name      string
			dataType  sql.NullString
			charMax   sql.NullInt64
			precision sql.NullInt64
			scale     sql.NullInt64
		)

		if err := rows.Scan(&name, &dataType, &charMax, &precision, &scale); err != nil {
			return nil, wrapMalformed(op, err)
		}

		descriptors = append(descriptors, model.ColumnDescriptor{
			Name:             name,
			DataType:         dataType,
			CharMaxLength:    charMax,
			NumericPrecision: precision,
			NumericScale:     scale,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, wrapUnavailable(op, err)
	}

	return descriptors, nil
}
