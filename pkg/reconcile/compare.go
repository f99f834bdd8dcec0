package reconcile

import (
	"database/sql"

	"github.com/David-Botos/schema-recon/pkg/model"
)

// LengthTolerance allows one asymmetric character length pairing to pass:
// a source column reporting SourceLength compared against a target column
// reporting TargetLength. The pairing is directional; the reverse pairing
// still fails.
type LengthTolerance struct {
	SourceLength int64
	TargetLength int64
}

// DefaultLengthTolerance returns the tolerance applied when none is
// configured: a 16777216 byte source maximum against an 8388607 byte
// target maximum, the unbounded-text lengths the two sides of the
// original deployment report.
func DefaultLengthTolerance() LengthTolerance {
	return LengthTolerance{
		SourceLength: 16777216,
		TargetLength: 8388607,
	}
}

// Comparator applies the attribute comparison rules to aligned column
// attributes. Identity attributes (names, data types) fail when either
// side is absent; size attributes (length, precision, scale) pass when
// both sides are absent and fail when exactly one is.
type Comparator struct {
	tolerance LengthTolerance
}

// NewComparator creates a comparator. A zero tolerance selects the default.
func NewComparator(tolerance LengthTolerance) *Comparator {
	if tolerance.SourceLength == 0 && tolerance.TargetLength == 0 {
		tolerance = DefaultLengthTolerance()
	}
	return &Comparator{tolerance: tolerance}
}

// CompareNames compares table or column names
func (c *Comparator) CompareNames(source, target sql.NullString) model.Verdict {
	if !source.Valid || !target.Valid {
		return model.VerdictFail
	}
	if source.String != target.String {
		return model.VerdictFail
	}
	return model.VerdictPass
}

// CompareDataTypes compares declared data type names
func (c *Comparator) CompareDataTypes(source, target sql.NullString) model.Verdict {
	if !source.Valid || !target.Valid {
		return model.VerdictFail
	}
	if source.String != target.String {
		return model.VerdictFail
	}
	return model.VerdictPass
}

// CompareCharLengths compares character maximum lengths, admitting the
// configured tolerance pairing.
func (c *Comparator) CompareCharLengths(source, target sql.NullInt64) model.Verdict {
	if source.Valid && target.Valid &&
		source.Int64 == c.tolerance.SourceLength &&
		target.Int64 == c.tolerance.TargetLength {
		return model.VerdictPass
	}
	return compareNullableInts(source, target)
}

// CompareScales compares numeric scales
func (c *Comparator) CompareScales(source, target sql.NullInt64) model.Verdict {
	return compareNullableInts(source, target)
}

// ComparePrecisions compares numeric precisions
func (c *Comparator) ComparePrecisions(source, target sql.NullInt64) model.Verdict {
	return compareNullableInts(source, target)
}

func compareNullableInts(source, target sql.NullInt64) model.Verdict {
	if !source.Valid && !target.Valid {
		return model.VerdictPass
	}
	if !source.Valid || !target.Valid {
		return model.VerdictFail
	}
	if source.Int64 != target.Int64 {
		return model.VerdictFail
	}
	return model.VerdictPass
}
