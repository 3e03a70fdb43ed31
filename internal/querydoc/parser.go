package querydoc

import (
	"slices"
	"strconv"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/queryir"
)

// scope is what an expression may reference: the selectors of the
// enclosing query and its named subqueries.
type scope struct {
	selectors  []string
	subqueries map[string]queryir.Query
}

// defaultSelector returns the selector an unqualified reference resolves to.
func (s scope) defaultSelector() (string, bool) {
	if len(s.selectors) == 1 {
		return s.selectors[0], true
	}
	return "", false
}

type parser struct {
	field  string
	tokens []token
	pos    int
	scope  scope
}

func newParser(field, input string, sc scope) (*parser, error) {
	tokens, err := lex(field, input)
	if err != nil {
		return nil, err
	}
	return &parser{field: field, tokens: tokens, scope: sc}, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return newParseError(p.field, t.offset, format, args...)
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %q", what, t.text)
	}
	return t, nil
}

func (p *parser) expectKeyword(keyword string) error {
	t := p.next()
	if !t.is(keyword) {
		return p.errorf(t, "expected %s, found %q", keyword, t.text)
	}
	return nil
}

func (p *parser) expectEOF() error {
	if t := p.peek(); t.kind != tokEOF {
		return p.errorf(t, "unexpected %q", t.text)
	}
	return nil
}

// ParseConstraint parses a criteria expression for a query over the given
// selectors. Named subqueries are referenced with @name.
func ParseConstraint(expr string, selectors []string, subqueries map[string]queryir.Query) (queryir.Constraint, error) {
	return parseConstraintField("where", expr, scope{selectors: selectors, subqueries: subqueries})
}

func parseConstraintField(field, expr string, sc scope) (queryir.Constraint, error) {
	p, err := newParser(field, expr, sc)
	if err != nil {
		return nil, err
	}
	c, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *parser) parseOr() (queryir.Constraint, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().is("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = queryir.Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (queryir.Constraint, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().is("AND") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = queryir.And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (queryir.Constraint, error) {
	t := p.peek()
	switch {
	case t.is("NOT"):
		p.next()
		c, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return queryir.Not{Constraint: c}, nil
	case t.kind == tokLParen:
		p.next()
		c, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return c, nil
	case t.is("CONTAINS"):
		return p.parseContains()
	}

	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return p.parseTail(operand)
}

// parseContains parses CONTAINS(selector, 'expr') or CONTAINS(selector.property, 'expr').
func (p *parser) parseContains() (queryir.Constraint, error) {
	p.next()
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	first, err := p.expect(tokIdent, "selector or property")
	if err != nil {
		return nil, err
	}

	var fts queryir.FullTextSearch
	switch {
	case p.peek().kind == tokDot:
		p.next()
		if p.peek().kind == tokStar {
			p.next()
			fts.Selector = first.text
		} else {
			prop, err := p.expect(tokIdent, "property")
			if err != nil {
				return nil, err
			}
			fts.Selector, fts.Property = first.text, prop.text
		}
	case slices.Contains(p.scope.selectors, first.text):
		fts.Selector = first.text
	default:
		sel, ok := p.scope.defaultSelector()
		if !ok {
			return nil, p.errorf(first, "property %q needs a selector", first.text)
		}
		fts.Selector, fts.Property = sel, first.text
	}

	if _, err := p.expect(tokComma, "','"); err != nil {
		return nil, err
	}
	text, err := p.expect(tokString, "search expression string")
	if err != nil {
		return nil, err
	}
	fts.Expression = text.text
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return fts, nil
}

func (p *parser) parseOperand() (queryir.DynamicOperand, error) {
	t := p.peek()
	switch {
	case t.is("LOWER") || t.is("UPPER"):
		p.next()
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		inner, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		if t.is("LOWER") {
			return queryir.LowerCase{Operand: inner}, nil
		}
		return queryir.UpperCase{Operand: inner}, nil
	case t.is("LENGTH"):
		p.next()
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		ref, err := p.parseRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return queryir.Length{PropertyValue: ref}, nil
	default:
		return p.parseRef()
	}
}

// parseRef parses "selector.property" or an unqualified "property".
func (p *parser) parseRef() (queryir.PropertyValue, error) {
	first, err := p.expect(tokIdent, "property reference")
	if err != nil {
		return queryir.PropertyValue{}, err
	}
	if p.peek().kind == tokDot {
		p.next()
		prop, err := p.expect(tokIdent, "property")
		if err != nil {
			return queryir.PropertyValue{}, err
		}
		return queryir.PropertyValue{Selector: first.text, Property: prop.text}, nil
	}
	sel, ok := p.scope.defaultSelector()
	if !ok {
		return queryir.PropertyValue{}, p.errorf(first, "property %q needs a selector", first.text)
	}
	return queryir.PropertyValue{Selector: sel, Property: first.text}, nil
}

func (p *parser) parseTail(operand queryir.DynamicOperand) (queryir.Constraint, error) {
	t := p.next()
	switch {
	case t.kind == tokOp:
		value, err := p.parseStatic()
		if err != nil {
			return nil, err
		}
		return queryir.Comparison{Operand: operand, Operator: operatorFor(t.text), Value: value}, nil

	case t.is("LIKE"):
		value, err := p.parseStatic()
		if err != nil {
			return nil, err
		}
		return queryir.Comparison{Operand: operand, Operator: queryir.Like, Value: value}, nil

	case t.is("IN"):
		return p.parseIn(operand)

	case t.is("NOT"):
		switch n := p.next(); {
		case n.is("LIKE"):
			value, err := p.parseStatic()
			if err != nil {
				return nil, err
			}
			return queryir.Not{Constraint: queryir.Comparison{Operand: operand, Operator: queryir.Like, Value: value}}, nil
		case n.is("IN"):
			in, err := p.parseIn(operand)
			if err != nil {
				return nil, err
			}
			return queryir.Not{Constraint: in}, nil
		default:
			return nil, p.errorf(n, "expected LIKE or IN after NOT, found %q", n.text)
		}

	case t.is("BETWEEN"):
		lower, err := p.parseStatic()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return nil, err
		}
		upper, err := p.parseStatic()
		if err != nil {
			return nil, err
		}
		return queryir.Between{
			Operand: operand, Lower: lower, Upper: upper,
			LowerInclusive: true, UpperInclusive: true,
		}, nil

	case t.is("IS"):
		negated := false
		if p.peek().is("NOT") {
			p.next()
			negated = true
		}
		if err := p.expectKeyword("NULL"); err != nil {
			return nil, err
		}
		pv, ok := operand.(queryir.PropertyValue)
		if !ok {
			return nil, p.errorf(t, "IS NULL applies to a property reference only")
		}
		exists := queryir.PropertyExistence{Selector: pv.Selector, Property: pv.Property}
		if negated {
			return exists, nil
		}
		return queryir.Not{Constraint: exists}, nil

	default:
		return nil, p.errorf(t, "expected comparison operator, found %q", t.text)
	}
}

func (p *parser) parseIn(operand queryir.DynamicOperand) (queryir.Constraint, error) {
	if p.peek().kind == tokSubquery {
		sub, err := p.parseStatic()
		if err != nil {
			return nil, err
		}
		return queryir.SetCriteria{Operand: operand, Values: []queryir.StaticOperand{sub}}, nil
	}

	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	values := []queryir.StaticOperand{}
	if p.peek().kind != tokRParen {
		for {
			v, err := p.parseStatic()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return queryir.SetCriteria{Operand: operand, Values: values}, nil
}

func (p *parser) parseStatic() (queryir.StaticOperand, error) {
	t := p.next()
	switch {
	case t.kind == tokString:
		return queryir.Literal{Value: ir.IRString(t.text)}, nil
	case t.kind == tokInt:
		n, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return nil, p.errorf(t, "integer out of range: %s", t.text)
		}
		return queryir.Literal{Value: ir.IRInt(n)}, nil
	case t.kind == tokMinus:
		num, err := p.expect(tokInt, "integer")
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt("-"+num.text, 10, 64)
		if err != nil {
			return nil, p.errorf(num, "integer out of range: -%s", num.text)
		}
		return queryir.Literal{Value: ir.IRInt(n)}, nil
	case t.is("TRUE"):
		return queryir.Literal{Value: ir.IRBool(true)}, nil
	case t.is("FALSE"):
		return queryir.Literal{Value: ir.IRBool(false)}, nil
	case t.is("NULL"):
		return queryir.Literal{Value: ir.IRNull{}}, nil
	case t.kind == tokVar:
		return queryir.BindVariableReference{Name: t.text}, nil
	case t.kind == tokSubquery:
		sub, ok := p.scope.subqueries[t.text]
		if !ok {
			return nil, p.errorf(t, "unknown subquery @%s", t.text)
		}
		return queryir.Subquery{Query: sub}, nil
	default:
		return nil, p.errorf(t, "expected a value, found %q", t.text)
	}
}

func operatorFor(op string) queryir.Operator {
	switch op {
	case "!=":
		return queryir.NotEqualTo
	case "<":
		return queryir.LessThan
	case "<=":
		return queryir.LessThanOrEqualTo
	case ">":
		return queryir.GreaterThan
	case ">=":
		return queryir.GreaterThanOrEqualTo
	default:
		return queryir.EqualTo
	}
}

// parseJoinCondition parses "a.x = b.y" (equi-join) or "a.x < b.y".
func parseJoinCondition(field, expr string, sc scope) (queryir.JoinCondition, error) {
	p, err := newParser(field, expr, sc)
	if err != nil {
		return nil, err
	}
	left, err := p.parseRef()
	if err != nil {
		return nil, err
	}
	opTok, err := p.expect(tokOp, "comparison operator")
	if err != nil {
		return nil, err
	}
	right, err := p.parseRef()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}

	op := operatorFor(opTok.text)
	if op == queryir.EqualTo {
		return queryir.EquiJoinCondition{
			Selector1: left.Selector, Property1: left.Property,
			Selector2: right.Selector, Property2: right.Property,
		}, nil
	}
	return queryir.ComparisonJoinCondition{Left: left, Operator: op, Right: right}, nil
}

// parseColumn parses "sel.prop", "prop", "sel.prop AS alias", "sel.*" or "*".
// A "*" column is returned with Property "*".
func parseColumn(field, text string, sc scope) (queryir.Column, error) {
	p, err := newParser(field, text, sc)
	if err != nil {
		return queryir.Column{}, err
	}

	var col queryir.Column
	switch {
	case p.peek().kind == tokStar:
		p.next()
		col.Property = "*"
	default:
		first, err := p.expect(tokIdent, "column")
		if err != nil {
			return queryir.Column{}, err
		}
		if p.peek().kind == tokDot {
			p.next()
			col.Selector = first.text
			if p.peek().kind == tokStar {
				p.next()
				col.Property = "*"
			} else {
				prop, err := p.expect(tokIdent, "property")
				if err != nil {
					return queryir.Column{}, err
				}
				col.Property = prop.text
			}
		} else {
			sel, ok := sc.defaultSelector()
			if !ok {
				return queryir.Column{}, p.errorf(first, "column %q needs a selector", first.text)
			}
			col.Selector, col.Property = sel, first.text
		}
	}

	if p.peek().is("AS") {
		p.next()
		alias, err := p.expect(tokIdent, "alias")
		if err != nil {
			return queryir.Column{}, err
		}
		col.Alias = alias.text
	}
	if err := p.expectEOF(); err != nil {
		return queryir.Column{}, err
	}
	return col, nil
}

// parseOrdering parses "operand [ASC|DESC]".
func parseOrdering(field, text string, sc scope) (queryir.Ordering, error) {
	p, err := newParser(field, text, sc)
	if err != nil {
		return queryir.Ordering{}, err
	}
	operand, err := p.parseOperand()
	if err != nil {
		return queryir.Ordering{}, err
	}
	ordering := queryir.Ordering{Operand: operand}
	switch t := p.peek(); {
	case t.is("DESC"):
		p.next()
		ordering.Descending = true
	case t.is("ASC"):
		p.next()
	}
	if err := p.expectEOF(); err != nil {
		return queryir.Ordering{}, err
	}
	return ordering, nil
}

// parseSelector parses "name" or "name AS alias".
func parseSelector(field, text string) (queryir.NamedSelector, error) {
	p, err := newParser(field, text, scope{})
	if err != nil {
		return queryir.NamedSelector{}, err
	}
	name, err := p.expect(tokIdent, "selector name")
	if err != nil {
		return queryir.NamedSelector{}, err
	}
	sel := queryir.NamedSelector{Name: name.text}
	if p.peek().is("AS") {
		p.next()
		alias, err := p.expect(tokIdent, "alias")
		if err != nil {
			return queryir.NamedSelector{}, err
		}
		sel.Alias = alias.text
	}
	if err := p.expectEOF(); err != nil {
		return queryir.NamedSelector{}, err
	}
	return sel, nil
}
