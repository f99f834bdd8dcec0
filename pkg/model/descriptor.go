// pkg/model/descriptor.go
package model

import "database/sql"

// ColumnDescriptor carries the structural attributes of one column as
// reported by a catalog's metadata views. Attributes a catalog does not
// define for a column (length on numerics, scale on text) stay invalid.
type ColumnDescriptor struct {
	Name             string        // Column name, case-normalized by the source
	DataType         sql.NullString // Engine-reported type name
	CharMaxLength    sql.NullInt64  // CHARACTER_MAXIMUM_LENGTH or equivalent
	NumericPrecision sql.NullInt64  // NUMERIC_PRECISION or equivalent
	NumericScale     sql.NullInt64  // NUMERIC_SCALE or equivalent
}

// NewColumnDescriptor builds a descriptor with a known data type and no
// numeric attributes. Useful for fixtures; the catalog sources scan
// descriptors directly.
func NewColumnDescriptor(name, dataType string) ColumnDescriptor {
	return ColumnDescriptor{
		Name:     name,
		DataType: sql.NullString{String: dataType, Valid: true},
	}
}

// WithCharMaxLength sets the character maximum length and returns the
// modified descriptor.
func (c ColumnDescriptor) WithCharMaxLength(length int64) ColumnDescriptor {
	c.CharMaxLength = sql.NullInt64{Int64: length, Valid: true}
	return c
}

// WithPrecision sets the numeric precision and returns the modified
// descriptor.
func (c ColumnDescriptor) WithPrecision(precision int64) ColumnDescriptor {
	c.NumericPrecision = sql.NullInt64{Int64: precision, Valid: true}
	return c
}

// WithScale sets the numeric scale and returns the modified descriptor.
func (c ColumnDescriptor) WithScale(scale int64) ColumnDescriptor {
	c.NumericScale = sql.NullInt64{Int64: scale, Valid: true}
	return c
}
