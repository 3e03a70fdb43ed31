package process

import (
	"slices"

	"github.com/roach88/repoquery/internal/queryir"
)

type columnKey struct {
	selector string
	name     string
}

// layout resolves column references against the columns of a component.
// A reference matches a column by selector and property first, then by
// selector and alias. An unqualified reference matches any selector.
type layout struct {
	columns []queryir.Column
	index   map[columnKey]int
}

func newLayout(columns []queryir.Column) *layout {
	l := &layout{columns: columns, index: make(map[columnKey]int, 2*len(columns))}
	for i, c := range columns {
		k := columnKey{c.Selector, c.Property}
		if _, ok := l.index[k]; !ok {
			l.index[k] = i
		}
	}
	for i, c := range columns {
		if c.Alias == "" {
			continue
		}
		k := columnKey{c.Selector, c.Alias}
		if _, ok := l.index[k]; !ok {
			l.index[k] = i
		}
	}
	return l
}

func (l *layout) find(selector, name string) (int, bool) {
	if i, ok := l.index[columnKey{selector, name}]; ok {
		return i, true
	}
	if selector == "" {
		for i, c := range l.columns {
			if c.Property == name || c.Alias == name {
				return i, true
			}
		}
	}
	return -1, false
}

func (l *layout) hasSelector(selector string) bool {
	return slices.ContainsFunc(l.columns, func(c queryir.Column) bool {
		return c.Selector == selector
	})
}

// selectorColumns returns the positions of every column of a selector.
func (l *layout) selectorColumns(selector string) []int {
	var positions []int
	for i, c := range l.columns {
		if c.Selector == selector {
			positions = append(positions, i)
		}
	}
	return positions
}
