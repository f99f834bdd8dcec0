package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/schema-recon/pkg/model"
)

// DefaultExcludedColumns returns the audit columns every comparison skips
// unless configured otherwise.
func DefaultExcludedColumns() []string {
	return []string{
		"CREATED_AT",
		"UPDATED_AT",
		"CREATED_BY",
		"UPDATED_BY",
		"LOAD_TIMESTAMP",
	}
}

// buildExcludedSet normalizes the excluded column list for lookup.
// Exclusion matches case-insensitively so lower-case engines skip the
// same audit columns as upper-case ones.
func buildExcludedSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToUpper(name)] = true
	}
	return set
}

// columnIndex maps column names to their descriptors for one side of a pair
type columnIndex map[string]model.ColumnDescriptor

// indexColumns builds a name index over one side's descriptors, dropping
// excluded columns. With strict set a repeated column name is an error;
// otherwise the last occurrence wins and a warning is logged.
func indexColumns(descriptors []model.ColumnDescriptor, excluded map[string]bool, strict bool, logger *zap.Logger, table string) (columnIndex, error) {
	index := make(columnIndex, len(descriptors))
	for _, descriptor := range descriptors {
		if excluded[strings.ToUpper(descriptor.Name)] {
			continue
		}

		if _, seen := index[descriptor.Name]; seen {
			if strict {
				return nil, fmt.Errorf("table %s: %w: %s", table, ErrDuplicateColumn, descriptor.Name)
			}
			if logger != nil {
				logger.Warn("Duplicate column name, keeping last occurrence",
					zap.String("table", table),
					zap.String("column", descriptor.Name))
			}
		}

		index[descriptor.Name] = descriptor
	}

	return index, nil
}

// unionColumnNames returns the sorted union of the two sides' column names
func unionColumnNames(source, target columnIndex) []string {
	union := make([]string, 0, len(source))
	for name := range source {
		union = append(union, name)
	}
	for name := range target {
		if _, ok := source[name]; !ok {
			union = append(union, name)
		}
	}
	sort.Strings(union)
	return union
}
