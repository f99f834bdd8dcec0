package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/David-Botos/schema-recon/pkg/model"
)

var errNotRegistered = errors.New("not registered")

// StaticSource serves table and column metadata from an in-memory
// snapshot. It backs tests and dry runs where no live endpoint exists.
// Asking for an unregistered catalog, schema, or table reports
// ErrMetadataUnavailable, mirroring a live endpoint that cannot see the
// object.
type StaticSource struct {
	scopes map[string]map[string][]model.ColumnDescriptor
}

var _ MetadataSource = (*StaticSource)(nil)

// NewStaticSource creates an empty in-memory metadata source
func NewStaticSource() *StaticSource {
	return &StaticSource{
		scopes: make(map[string]map[string][]model.ColumnDescriptor),
	}
}

func scopeKey(catalog, schema string) string {
	return catalog + "." + schema
}

// AddTable registers a table with its column descriptors, replacing any
// previous registration of the same table.
func (s *StaticSource) AddTable(catalog, schema, table string, columns ...model.ColumnDescriptor) *StaticSource {
	key := scopeKey(catalog, schema)
	if s.scopes[key] == nil {
		s.scopes[key] = make(map[string][]model.ColumnDescriptor)
	}
	s.scopes[key][table] = columns
	return s
}

// ListTables returns the registered tables sorted by name
func (s *StaticSource) ListTables(ctx context.Context, catalog, schema string) ([]string, error) {
	scope, ok := s.scopes[scopeKey(catalog, schema)]
	if !ok {
		return nil, wrapUnavailable(fmt.Sprintf("listing tables in %s.%s", catalog, schema), errNotRegistered)
	}

	tables := make([]string, 0, len(scope))
	for table := range scope {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	return tables, nil
}

// ListColumns returns the column descriptors for one registered table
func (s *StaticSource) ListColumns(ctx context.Context, catalog, schema, table string) ([]model.ColumnDescriptor, error) {
	scope, ok := s.scopes[scopeKey(catalog, schema)]
	if !ok {
		return nil, wrapUnavailable(fmt.Sprintf("describing columns of %s.%s.%s", catalog, schema, table), errNotRegistered)
	}

	columns, ok := scope[table]
	if !ok {
		return nil, wrapUnavailable(fmt.Sprintf("describing columns of %s.%s.%s", catalog, schema, table), errNotRegistered)
	}

	return append([]model.ColumnDescriptor(nil), columns...), nil
}
