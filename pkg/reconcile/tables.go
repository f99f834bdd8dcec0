package reconcile

import (
	"database/sql"
	"sort"
)

// TablePair aligns one table name across the two endpoints. Name is the
// union key; Source and Target are absent when the table exists on one
// side only.
type TablePair struct {
	Name   string
	Source sql.NullString
	Target sql.NullString
}

// BuildTablePairs aligns two table listings into pairs ordered by name.
// Every table appearing on either side produces exactly one pair.
func BuildTablePairs(sourceTables, targetTables []string) []TablePair {
	sourceSet := make(map[string]bool, len(sourceTables))
	for _, table := range sourceTables {
		sourceSet[table] = true
	}

	targetSet := make(map[string]bool, len(targetTables))
	for _, table := range targetTables {
		targetSet[table] = true
	}

	union := make([]string, 0, len(sourceSet))
	for table := range sourceSet {
		union = append(union, table)
	}
	for table := range targetSet {
		if !sourceSet[table] {
			union = append(union, table)
		}
	}
	sort.Strings(union)

	pairs := make([]TablePair, 0, len(union))
	for _, name := range union {
		pair := TablePair{Name: name}
		if sourceSet[name] {
			pair.Source = sql.NullString{String: name, Valid: true}
		}
		if targetSet[name] {
			pair.Target = sql.NullString{String: name, Valid: true}
		}
		pairs = append(pairs, pair)
	}

	return pairs
}
