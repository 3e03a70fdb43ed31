package planner

import (
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

// scope is the set of selectors one Select ranges over.
type scope struct {
	// order lists selector names (alias or table name) in source order.
	order []string
	// tables maps a selector name to its resolved table. Selectors whose
	// table does not exist are in order but not in tables.
	tables map[string]schema.Table
	// known holds every selector name in order.
	known map[string]bool
}

// resolveSelectors looks up every selector of the source in the schemata.
func (b *builder) resolveSelectors(src queryir.Source) *scope {
	sc := &scope{tables: map[string]schema.Table{}, known: map[string]bool{}}
	for _, ns := range queryir.SourceSelectors(src) {
		name := ns.AliasOrName()
		if sc.known[name] {
			b.problems().AddError(query.CodeDuplicateSelector, name)
			continue
		}
		sc.known[name] = true
		sc.order = append(sc.order, name)

		var (
			t  schema.Table
			ok bool
		)
		if schemata := b.qc.Schemata(); schemata != nil {
			t, ok = schemata.Table(ns.Name)
		}
		if !ok {
			b.problems().AddError(query.CodeTableDoesNotExist, ns.Name)
			continue
		}
		if t.IsView() {
			b.qc.Hints().HasView = true
		}
		sc.tables[name] = t
	}
	return sc
}

// checkSelector reports a selector that is not part of the query.
func (b *builder) checkSelector(sc *scope, selector string) bool {
	if !sc.known[selector] {
		b.problems().AddError(query.CodeSelectorDoesNotExist, selector)
		return false
	}
	return true
}

// checkProperty reports an unknown selector or, when column validation is
// enabled, a column the selector's table does not declare. Selectors whose
// table could not be resolved were already reported.
func (b *builder) checkProperty(sc *scope, selector, property string) {
	if !b.checkSelector(sc, selector) {
		return
	}
	if property == "" || !b.qc.Hints().ValidateColumnExistence {
		return
	}
	t, ok := sc.tables[selector]
	if !ok {
		return
	}
	if _, ok := t.Column(property); !ok {
		b.problems().AddError(query.CodeColumnDoesNotExist, property, t.Name)
	}
}

func (b *builder) checkOperand(sc *scope, op queryir.DynamicOperand) {
	for _, pv := range propertyValues(op) {
		b.checkProperty(sc, pv.Selector, pv.Property)
	}
}

func (b *builder) checkConstraint(sc *scope, c queryir.Constraint) {
	queryir.MapConstraint(c, func(pv queryir.PropertyValue) queryir.PropertyValue {
		b.checkProperty(sc, pv.Selector, pv.Property)
		return pv
	}, nil)
}

func (b *builder) checkJoinCondition(sc *scope, jc queryir.JoinCondition) {
	queryir.MapJoinCondition(jc, func(pv queryir.PropertyValue) queryir.PropertyValue {
		b.checkProperty(sc, pv.Selector, pv.Property)
		return pv
	})
}
