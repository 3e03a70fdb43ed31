package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/repoquery/internal/queryir"
)

// Builder assembles a Catalog. Views may reference tables and other views
// added in any order; their columns are derived when Build is called.
//
// Builder is not safe for concurrent use. The Catalog it builds is.
type Builder struct {
	tables map[string]Table
	order  []string
	errs   []error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{tables: make(map[string]Table)}
}

// AddTable adds a base table. Columns without a type default to STRING.
func (b *Builder) AddTable(name string, columns ...Column) *Builder {
	if !b.claim(name) {
		return b
	}
	cols := make([]Column, len(columns))
	for i, c := range columns {
		typ, err := normalizeType(c.Type)
		if err != nil {
			b.errs = append(b.errs, loadErrorf(ErrCodeInvalidType, "table %s column %s: %v", name, c.Name, err))
		}
		cols[i] = Column{Name: c.Name, Type: typ}
	}
	b.tables[name] = Table{Name: name, Columns: cols}
	return b
}

// AddStringTable adds a base table whose columns are all STRING.
func (b *Builder) AddStringTable(name string, columns ...string) *Builder {
	cols := make([]Column, len(columns))
	for i, c := range columns {
		cols[i] = Column{Name: c, Type: TypeString}
	}
	return b.AddTable(name, cols...)
}

// AddView adds a view defined by query.
func (b *Builder) AddView(name string, query queryir.Query) *Builder {
	if !b.claim(name) {
		return b
	}
	if query == nil {
		b.errs = append(b.errs, loadErrorf(ErrCodeInvalidView, "view %s has no defining query", name))
		return b
	}
	b.tables[name] = Table{Name: name, View: query}
	return b
}

func (b *Builder) claim(name string) bool {
	if name == "" {
		b.errs = append(b.errs, loadErrorf(ErrCodeBuildFailed, "table name must not be empty"))
		return false
	}
	if _, exists := b.tables[name]; exists {
		b.errs = append(b.errs, loadErrorf(ErrCodeDuplicateTable, "table %s is defined more than once", name))
		return false
	}
	b.order = append(b.order, name)
	return true
}

// Build resolves view columns and returns the immutable Catalog.
// Every problem found is returned, joined with errors.Join.
func (b *Builder) Build() (*Catalog, error) {
	errs := append([]error(nil), b.errs...)

	r := &viewResolver{
		tables: make(map[string]Table, len(b.tables)),
		state:  make(map[string]int),
	}
	for name, t := range b.tables {
		r.tables[name] = t
	}
	for _, name := range b.order {
		if t := r.tables[name]; t.IsView() {
			if err := r.resolve(name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Catalog{tables: r.tables}, nil
}

const (
	unresolved = iota
	resolving
	resolved
)

// viewResolver derives view columns depth-first so views over views work
// regardless of declaration order.
type viewResolver struct {
	tables map[string]Table
	state  map[string]int
	path   []string
}

func (r *viewResolver) resolve(name string) error {
	switch r.state[name] {
	case resolved:
		return nil
	case resolving:
		return loadErrorf(ErrCodeViewCycle, "view cycle: %s -> %s", strings.Join(r.path, " -> "), name)
	}

	t := r.tables[name]
	if !t.IsView() {
		r.state[name] = resolved
		return nil
	}

	r.state[name] = resolving
	r.path = append(r.path, name)
	defer func() { r.path = r.path[:len(r.path)-1] }()

	cols, err := r.queryColumns(name, t.View)
	if err != nil {
		// Mark it done so the failure is reported once.
		r.state[name] = resolved
		return err
	}

	seen := map[string]struct{}{}
	for _, c := range cols {
		if _, dup := seen[c.Name]; dup {
			r.state[name] = resolved
			return loadErrorf(ErrCodeInvalidView, "view %s has duplicate column %s", name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	t.Columns = cols
	r.tables[name] = t
	r.state[name] = resolved
	return nil
}

// queryColumns derives the output columns of a view's defining query.
func (r *viewResolver) queryColumns(view string, q queryir.Query) ([]Column, error) {
	switch query := q.(type) {
	case queryir.Select:
		return r.selectColumns(view, query)
	case queryir.SetQuery:
		left, err := r.queryColumns(view, query.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.queryColumns(view, query.Right)
		if err != nil {
			return nil, err
		}
		if len(left) != len(right) {
			return nil, loadErrorf(ErrCodeInvalidView, "view %s: %s branches have %d and %d columns",
				view, query.Op, len(left), len(right))
		}
		return left, nil
	default:
		return nil, loadErrorf(ErrCodeInvalidView, "view %s: unsupported query type %T", view, q)
	}
}

func (r *viewResolver) selectColumns(view string, sel queryir.Select) ([]Column, error) {
	selectors := queryir.SourceSelectors(sel.Source)
	if len(selectors) == 0 {
		return nil, loadErrorf(ErrCodeInvalidView, "view %s has no source", view)
	}

	byAlias := make(map[string]Table, len(selectors))
	for _, ns := range selectors {
		if err := r.resolve(ns.Name); err != nil {
			return nil, err
		}
		t, ok := r.tables[ns.Name]
		if !ok {
			return nil, loadErrorf(ErrCodeUnknownTable, "view %s references unknown table %s", view, ns.Name)
		}
		byAlias[ns.AliasOrName()] = t
	}

	all := func(alias string) []Column {
		return append([]Column(nil), byAlias[alias].Columns...)
	}

	var cols []Column
	if len(sel.Columns) == 0 {
		for _, ns := range selectors {
			cols = append(cols, all(ns.AliasOrName())...)
		}
		return cols, nil
	}

	for _, c := range sel.Columns {
		if c.Property == "*" {
			if c.Selector == "" {
				for _, ns := range selectors {
					cols = append(cols, all(ns.AliasOrName())...)
				}
				continue
			}
			if _, ok := byAlias[c.Selector]; !ok {
				return nil, loadErrorf(ErrCodeUnknownTable, "view %s references unknown selector %s", view, c.Selector)
			}
			cols = append(cols, all(c.Selector)...)
			continue
		}

		t, ok := byAlias[c.Selector]
		if !ok {
			return nil, loadErrorf(ErrCodeUnknownTable, "view %s references unknown selector %s", view, c.Selector)
		}
		col, ok := t.Column(c.Property)
		if !ok {
			return nil, loadErrorf(ErrCodeUnknownColumn, "view %s references unknown column %s.%s", view, c.Selector, c.Property)
		}
		cols = append(cols, Column{Name: c.ColumnName(), Type: col.Type})
	}
	return cols, nil
}

func normalizeType(typ string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(typ)) {
	case "", TypeString:
		return TypeString, nil
	case TypeLong, "INT", "INTEGER":
		return TypeLong, nil
	case TypeBoolean, "BOOL":
		return TypeBoolean, nil
	default:
		return "", fmt.Errorf("unsupported column type %q", typ)
	}
}
