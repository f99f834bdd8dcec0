package model_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/schema-recon/pkg/model"
)

func TestRenderString(t *testing.T) {
	assert.Equal(t, "TEXT", model.RenderString(sql.NullString{String: "TEXT", Valid: true}))
	assert.Equal(t, model.Sentinel, model.RenderString(sql.NullString{}))

	// An empty but present value renders empty, not as the sentinel.
	assert.Equal(t, "", model.RenderString(sql.NullString{Valid: true}))
}

func TestRenderInt64(t *testing.T) {
	assert.Equal(t, "16777216", model.RenderInt64(sql.NullInt64{Int64: 16777216, Valid: true}))
	assert.Equal(t, "0", model.RenderInt64(sql.NullInt64{Valid: true}))
	assert.Equal(t, model.Sentinel, model.RenderInt64(sql.NullInt64{}))
}

func TestReportHeader(t *testing.T) {
	header := model.ReportHeader()

	require.Len(t, header, 18)
	assert.Equal(t, "SOURCE_TABLE_NAME", header[0])
	assert.Equal(t, "STATUS_TABLE_NAME", header[2])
	assert.Equal(t, "SOURCE_CHARACTER_MAXIMUM_LENGTH", header[9])
	assert.Equal(t, "STATUS_PRECISION", header[17])
}

func TestValuesAlignWithHeader(t *testing.T) {
	row := model.ComparisonRow{
		SourceTableName: "ORDERS",
		TargetTableName: "ORDERS",
		TableNameStatus: model.VerdictPass,

		SourceColumnName: "STATE",
		TargetColumnName: "STATE",
		ColumnNameStatus: model.VerdictPass,

		SourceDataType: "TEXT",
		TargetDataType: "TEXT",
		DataTypeStatus: model.VerdictPass,

		SourceCharMaxLength: "16",
		TargetCharMaxLength: "32",
		CharMaxLengthStatus: model.VerdictFail,

		SourceScale:     model.Sentinel,
		TargetScale:     model.Sentinel,
		ScaleStatus:     model.VerdictPass,
		SourcePrecision: model.Sentinel,
		TargetPrecision: model.Sentinel,
		PrecisionStatus: model.VerdictPass,
	}

	values := row.Values()
	header := model.ReportHeader()

	require.Len(t, values, len(header))
	assert.Equal(t, "ORDERS", values[0])
	assert.Equal(t, "PASS", values[2])
	assert.Equal(t, "16", values[9])
	assert.Equal(t, "32", values[10])
	assert.Equal(t, "FAIL", values[11])
	assert.Equal(t, "PASS", values[17])
}

func TestVerdictsOrder(t *testing.T) {
	row := model.ComparisonRow{
		TableNameStatus:     model.VerdictPass,
		ColumnNameStatus:    model.VerdictFail,
		DataTypeStatus:      model.VerdictPass,
		CharMaxLengthStatus: model.VerdictFail,
		ScaleStatus:         model.VerdictPass,
		PrecisionStatus:     model.VerdictFail,
	}

	verdicts := row.Verdicts()

	assert.Equal(t, [6]model.Verdict{
		model.VerdictPass,
		model.VerdictFail,
		model.VerdictPass,
		model.VerdictFail,
		model.VerdictPass,
		model.VerdictFail,
	}, verdicts)
}

func TestHasFailure(t *testing.T) {
	clean := model.ComparisonRow{
		TableNameStatus:     model.VerdictPass,
		ColumnNameStatus:    model.VerdictPass,
		DataTypeStatus:      model.VerdictPass,
		CharMaxLengthStatus: model.VerdictPass,
		ScaleStatus:         model.VerdictPass,
		PrecisionStatus:     model.VerdictPass,
	}
	assert.False(t, clean.HasFailure())

	drifted := clean
	drifted.PrecisionStatus = model.VerdictFail
	assert.True(t, drifted.HasFailure())
}
