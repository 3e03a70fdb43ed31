package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/schema"
)

// MemorySource holds tables in memory. It ignores criteria and returns every
// row in insertion order. Safe for concurrent use.
type MemorySource struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

type memoryTable struct {
	columns []string
	rows    []query.Tuple
}

// NewMemorySource creates an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{tables: make(map[string]*memoryTable)}
}

// AddTable creates an empty table. Adding an existing table is an error.
func (m *MemorySource) AddTable(t schema.Table) error {
	if t.IsView() {
		return fmt.Errorf("add table %s: views are not stored", t.Name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[t.Name]; exists {
		return fmt.Errorf("add table %s: already exists", t.Name)
	}
	m.tables[t.Name] = &memoryTable{columns: t.ColumnNames()}
	return nil
}

// Insert appends rows to a table, one value per column in declaration order.
func (m *MemorySource) Insert(table string, rows ...query.Tuple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("insert into %s: %w", table, ErrUnknownTable)
	}
	for i, row := range rows {
		if len(row) != len(t.columns) {
			return fmt.Errorf("insert into %s: row %d has %d values, want %d", table, i, len(row), len(t.columns))
		}
	}
	for _, row := range rows {
		t.rows = append(t.rows, slices.Clone(row))
	}
	return nil
}

// FetchRows implements process.RowSource.
func (m *MemorySource) FetchRows(ctx context.Context, req process.FetchRequest) ([]query.Tuple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[req.Table]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", req.Table, ErrUnknownTable)
	}

	positions := make([]int, len(req.Columns))
	for i, name := range req.Columns {
		pos := slices.Index(t.columns, name)
		if pos < 0 {
			return nil, fmt.Errorf("fetch %s: no column %q", req.Table, name)
		}
		positions[i] = pos
	}

	out := make([]query.Tuple, len(t.rows))
	for i, row := range t.rows {
		projected := make(query.Tuple, len(positions))
		for j, pos := range positions {
			projected[j] = row[pos]
		}
		out[i] = projected
	}
	return out, nil
}
