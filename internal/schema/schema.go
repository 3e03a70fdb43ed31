package schema

import (
	"slices"

	"github.com/roach88/repoquery/internal/queryir"
)

// Type names for column values.
const (
	TypeString  = "STRING"
	TypeLong    = "LONG"
	TypeBoolean = "BOOLEAN"
)

// Schemata resolves selector names. It is the only catalog view the planner
// and optimizer need.
type Schemata interface {
	// Table returns the table or view with the given name.
	Table(name string) (Table, bool)
}

// Column describes one column of a table or view.
type Column struct {
	Name string
	Type string
}

// Table is a base table or a view.
type Table struct {
	Name    string
	Columns []Column

	// View is the defining query, nil for base tables.
	View queryir.Query
}

// IsView reports whether the table is defined by a query.
func (t Table) IsView() bool {
	return t.View != nil
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Catalog is an immutable Schemata.
type Catalog struct {
	tables map[string]Table
}

// Table implements Schemata.
func (c *Catalog) Table(name string) (Table, bool) {
	if c == nil {
		return Table{}, false
	}
	t, ok := c.tables[name]
	if !ok {
		return Table{}, false
	}
	// Callers get their own column slice.
	t.Columns = slices.Clone(t.Columns)
	return t, true
}

// TableNames returns every table and view name, sorted.
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
