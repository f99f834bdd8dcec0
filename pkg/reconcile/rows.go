package reconcile

import (
	"database/sql"

	"github.com/David-Botos/schema-recon/pkg/model"
)

// RowAssembler builds comparison rows from aligned column attributes
type RowAssembler struct {
	comparator *Comparator
}

// NewRowAssembler creates a row assembler using the given comparator
func NewRowAssembler(comparator *Comparator) *RowAssembler {
	return &RowAssembler{comparator: comparator}
}

// AssembleRows produces one comparison row per name in the sorted column
// union of a table pair. A side that lacks the table contributes no
// columns, so every attribute on that side reads as absent.
func (a *RowAssembler) AssembleRows(pair TablePair, sourceColumns, targetColumns columnIndex) []model.ComparisonRow {
	union := unionColumnNames(sourceColumns, targetColumns)

	rows := make([]model.ComparisonRow, 0, len(union))
	for _, name := range union {
		rows = append(rows, a.assembleRow(pair, name, sourceColumns, targetColumns))
	}

	return rows
}

func (a *RowAssembler) assembleRow(pair TablePair, columnName string, sourceColumns, targetColumns columnIndex) model.ComparisonRow {
	var (
		sourceName, targetName     sql.NullString
		sourceType, targetType     sql.NullString
		sourceLength, targetLength sql.NullInt64
		sourceScale, targetScale   sql.NullInt64
		sourcePrec, targetPrec     sql.NullInt64
	)

	if descriptor, ok := sourceColumns[columnName]; ok {
		sourceName = sql.NullString{String: descriptor.Name, Valid: true}
		sourceType = descriptor.DataType
		sourceLength = descriptor.CharMaxLength
		sourceScale = descriptor.NumericScale
		sourcePrec = descriptor.NumericPrecision
	}

	if descriptor, ok := targetColumns[columnName]; ok {
		targetName = sql.NullString{String: descriptor.Name, Valid: true}
		targetType = descriptor.DataType
		targetLength = descriptor.CharMaxLength
		targetScale = descriptor.NumericScale
		targetPrec = descriptor.NumericPrecision
	}

	return model.ComparisonRow{
		SourceTableName: model.RenderString(pair.Source),
		TargetTableName: model.RenderString(pair.Target),
		TableNameStatus: a.comparator.CompareNames(pair.Source, pair.Target),

		SourceColumnName: model.RenderString(sourceName),
		TargetColumnName: model.RenderString(targetName),
		ColumnNameStatus: a.comparator.CompareNames(sourceName, targetName),

		SourceDataType: model.RenderString(sourceType),
		TargetDataType: model.RenderString(targetType),
		DataTypeStatus: a.comparator.CompareDataTypes(sourceType, targetType),

		SourceCharMaxLength: model.RenderInt64(sourceLength),
		TargetCharMaxLength: model.RenderInt64(targetLength),
		CharMaxLengthStatus: a.comparator.CompareCharLengths(sourceLength, targetLength),

		SourceScale: model.RenderInt64(sourceScale),
		TargetScale: model.RenderInt64(targetScale),
		ScaleStatus: a.comparator.CompareScales(sourceScale, targetScale),

		SourcePrecision: model.RenderInt64(sourcePrec),
		TargetPrecision: model.RenderInt64(targetPrec),
		PrecisionStatus: a.comparator.ComparePrecisions(sourcePrec, targetPrec),
	}
}
