package reconcile

import "github.com/David-Botos/schema-recon/pkg/model"

// FilterFailures keeps only the rows carrying at least one failed
// verdict, preserving their order. Rows where every attribute passed are
// noise in a discrepancy report.
func FilterFailures(rows []model.ComparisonRow) []model.ComparisonRow {
	failures := make([]model.ComparisonRow, 0)
	for _, row := range rows {
		if row.HasFailure() {
			failures = append(failures, row)
		}
	}
	return failures
}
