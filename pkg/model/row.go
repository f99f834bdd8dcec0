// pkg/model/row.go
package model

import (
	"database/sql"
	"strconv"
)

// Verdict is the outcome of one attribute comparison.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

// Sentinel is the rendered marker for "attribute absent on this side".
// It appears only in assembled output rows; comparison always happens
// on the sql.Null* values, never on this string.
const Sentinel = "NULL"

// RenderString stringifies an optional string attribute for output.
func RenderString(v sql.NullString) string {
	if !v.Valid {
		return Sentinel
	}
	return v.String
}

// RenderInt64 stringifies an optional integer attribute for output.
func RenderInt64(v sql.NullInt64) string {
	if !v.Valid {
		return Sentinel
	}
	return strconv.FormatInt(v.Int64, 10)
}

// ComparisonRow is the unit of report output: one reconciled column
// name for one table pair, both sides' values and all six verdicts.
// Field order matches the report's fixed 18-field shape.
type ComparisonRow struct {
	SourceTableName     string  `db:"source_table_name" json:"SOURCE_TABLE_NAME"`
	TargetTableName     string  `db:"target_table_name" json:"TARGET_TABLE_NAME"`
	TableNameStatus     Verdict `db:"status_table_name" json:"STATUS_TABLE_NAME"`
	SourceColumnName    string  `db:"source_column_name" json:"SOURCE_COLUMN_NAME"`
	TargetColumnName    string  `db:"target_column_name" json:"TARGET_COLUMN_NAME"`
	ColumnNameStatus    Verdict `db:"status_column_name" json:"STATUS_COLUMN_NAME"`
	SourceDataType      string  `db:"source_data_type" json:"SOURCE_DATA_TYPE"`
	TargetDataType      string  `db:"target_data_type" json:"TARGET_DATA_TYPE"`
	DataTypeStatus      Verdict `db:"status_data_type" json:"STATUS_DATA_TYPE"`
	SourceCharMaxLength string  `db:"source_character_maximum_length" json:"SOURCE_CHARACTER_MAXIMUM_LENGTH"`
	TargetCharMaxLength string  `db:"target_character_maximum_length" json:"TARGET_CHARACTER_MAXIMUM_LENGTH"`
	CharMaxLengthStatus Verdict `db:"status_character_maximum_length" json:"STATUS_CHARACTER_MAXIMUM_LENGTH"`
	SourceScale         string  `db:"source_scale" json:"SOURCE_SCALE"`
	TargetScale         string  `db:"target_scale" json:"TARGET_SCALE"`
	ScaleStatus         Verdict `db:"status_scale" json:"STATUS_SCALE"`
	SourcePrecision     string  `db:"source_precision" json:"SOURCE_PRECISION"`
	TargetPrecision     string  `db:"target_precision" json:"TARGET_PRECISION"`
	PrecisionStatus     Verdict `db:"status_precision" json:"STATUS_PRECISION"`
}

// ReportHeader returns the 18 output column names in report order.
func ReportHeader() []string {
	return []string{
		"SOURCE_TABLE_NAME",
		"TARGET_TABLE_NAME",
		"STATUS_TABLE_NAME",
		"SOURCE_COLUMN_NAME",
		"TARGET_COLUMN_NAME",
		"STATUS_COLUMN_NAME",
		"SOURCE_DATA_TYPE",
		"TARGET_DATA_TYPE",
		"STATUS_DATA_TYPE",
		"SOURCE_CHARACTER_MAXIMUM_LENGTH",
		"TARGET_CHARACTER_MAXIMUM_LENGTH",
		"STATUS_CHARACTER_MAXIMUM_LENGTH",
		"SOURCE_SCALE",
		"TARGET_SCALE",
		"STATUS_SCALE",
		"SOURCE_PRECISION",
		"TARGET_PRECISION",
		"STATUS_PRECISION",
	}
}

// Values returns the row's 18 fields as strings in report order.
func (r ComparisonRow) Values() []string {
	return []string{
		r.SourceTableName,
		r.TargetTableName,
		string(r.TableNameStatus),
		r.SourceColumnName,
		r.TargetColumnName,
		string(r.ColumnNameStatus),
		r.SourceDataType,
		r.TargetDataType,
		string(r.DataTypeStatus),
		r.SourceCharMaxLength,
		r.TargetCharMaxLength,
		string(r.CharMaxLengthStatus),
		r.SourceScale,
		r.TargetScale,
		string(r.ScaleStatus),
		r.SourcePrecision,
		r.TargetPrecision,
		string(r.PrecisionStatus),
	}
}

// Verdicts returns the row's six verdicts in attribute order: table
// name, column name, data type, char max length, scale, precision.
func (r ComparisonRow) Verdicts() [6]Verdict {
	return [6]Verdict{
		r.TableNameStatus,
		r.ColumnNameStatus,
		r.DataTypeStatus,
		r.CharMaxLengthStatus,
		r.ScaleStatus,
		r.PrecisionStatus,
	}
}

// HasFailure reports whether at least one of the six verdicts is FAIL.
func (r ComparisonRow) HasFailure() bool {
	for _, v := range r.Verdicts() {
		if v == VerdictFail {
			return true
		}
	}
	return false
}
