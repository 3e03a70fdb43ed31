package querydoc

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/repoquery/internal/queryir"
)

// Document is the serialisable form of a query.
//
// Either From (a Select) or Set (a set operation) must be given.
// OrderBy, Limit and Offset apply to whichever of the two is present.
type Document struct {
	From       string               `yaml:"from,omitempty" json:"from,omitempty"`
	Joins      []JoinDoc            `yaml:"joins,omitempty" json:"joins,omitempty"`
	Columns    []string             `yaml:"columns,omitempty" json:"columns,omitempty"`
	Where      string               `yaml:"where,omitempty" json:"where,omitempty"`
	GroupBy    []string             `yaml:"groupBy,omitempty" json:"groupBy,omitempty"`
	OrderBy    []string             `yaml:"orderBy,omitempty" json:"orderBy,omitempty"`
	Distinct   bool                 `yaml:"distinct,omitempty" json:"distinct,omitempty"`
	Limit      *int                 `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset     int                  `yaml:"offset,omitempty" json:"offset,omitempty"`
	Set        *SetDoc              `yaml:"set,omitempty" json:"set,omitempty"`
	Subqueries map[string]*Document `yaml:"subqueries,omitempty" json:"subqueries,omitempty"`
}

// JoinDoc joins one more selector onto everything to its left.
type JoinDoc struct {
	Type   string `yaml:"type,omitempty" json:"type,omitempty"` // inner (default), left, right, full, cross
	Source string `yaml:"source" json:"source"`
	On     string `yaml:"on,omitempty" json:"on,omitempty"`
}

// SetDoc combines two documents with UNION, INTERSECT or EXCEPT.
type SetDoc struct {
	Op    string   `yaml:"op" json:"op"`
	All   bool     `yaml:"all,omitempty" json:"all,omitempty"`
	Left  Document `yaml:"left" json:"left"`
	Right Document `yaml:"right" json:"right"`
}

// ParseYAML decodes a YAML document.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML query document: %w", err)
	}
	return &doc, nil
}

// ParseJSON decodes a JSON document.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse JSON query document: %w", err)
	}
	return &doc, nil
}

// Compile converts a document into the abstract query model.
// The returned query shares nothing with the document.
func Compile(doc *Document) (queryir.Query, error) {
	if doc == nil {
		return nil, newParseError("document", -1, "nil document")
	}
	return compile("", doc)
}

func compile(prefix string, doc *Document) (queryir.Query, error) {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	switch {
	case doc.Set != nil && doc.From != "":
		return nil, newParseError(field("from"), -1, "a document has either from or set, not both")
	case doc.Set != nil:
		return compileSet(field, doc)
	case doc.From == "":
		return nil, newParseError(field("from"), -1, "from is required")
	}

	first, err := parseSelector(field("from"), doc.From)
	if err != nil {
		return nil, err
	}

	var source queryir.Source = first
	selectors := []string{first.AliasOrName()}
	for i, j := range doc.Joins {
		jf := field(fmt.Sprintf("joins[%d]", i))
		right, err := parseSelector(jf+".source", j.Source)
		if err != nil {
			return nil, err
		}
		selectors = append(selectors, right.AliasOrName())

		joinType, err := parseJoinType(jf+".type", j.Type)
		if err != nil {
			return nil, err
		}
		join := queryir.Join{Left: source, Right: right, Type: joinType}
		if j.On != "" {
			cond, err := parseJoinCondition(jf+".on", j.On, scope{selectors: selectors})
			if err != nil {
				return nil, err
			}
			join.Condition = cond
		} else if joinType != queryir.CrossJoin {
			return nil, newParseError(jf+".on", -1, "%s join requires a condition", joinType)
		}
		source = join
	}

	sc := scope{selectors: selectors, subqueries: map[string]queryir.Query{}}
	for name, sub := range doc.Subqueries {
		if sub == nil {
			return nil, newParseError(field("subqueries."+name), -1, "empty subquery")
		}
		q, err := compile(field("subqueries."+name), sub)
		if err != nil {
			return nil, err
		}
		sc.subqueries[name] = q
	}

	sel := queryir.Select{Distinct: doc.Distinct, Source: source}

	for i, text := range doc.Columns {
		col, err := parseColumn(field(fmt.Sprintf("columns[%d]", i)), text, sc)
		if err != nil {
			return nil, err
		}
		sel.Columns = append(sel.Columns, col)
	}

	if strings.TrimSpace(doc.Where) != "" {
		where, err := parseConstraintField(field("where"), doc.Where, sc)
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}

	for i, text := range doc.GroupBy {
		col, err := parseColumn(field(fmt.Sprintf("groupBy[%d]", i)), text, sc)
		if err != nil {
			return nil, err
		}
		sel.GroupBy = append(sel.GroupBy, col)
	}

	sel.OrderBy, err = compileOrderBy(field, doc.OrderBy, sc)
	if err != nil {
		return nil, err
	}
	sel.Limit, err = compileLimit(field, doc)
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func compileSet(field func(string) string, doc *Document) (queryir.Query, error) {
	op, err := parseSetOperator(field("set.op"), doc.Set.Op)
	if err != nil {
		return nil, err
	}
	left, err := compile(field("set.left"), &doc.Set.Left)
	if err != nil {
		return nil, err
	}
	right, err := compile(field("set.right"), &doc.Set.Right)
	if err != nil {
		return nil, err
	}

	// Orderings of a set query reference the left branch's selectors.
	var sc scope
	if sel, ok := left.(queryir.Select); ok {
		for _, ns := range queryir.SourceSelectors(sel.Source) {
			sc.selectors = append(sc.selectors, ns.AliasOrName())
		}
	}

	set := queryir.SetQuery{Left: left, Right: right, Op: op, All: doc.Set.All}
	set.OrderBy, err = compileOrderBy(field, doc.OrderBy, sc)
	if err != nil {
		return nil, err
	}
	set.Limit, err = compileLimit(field, doc)
	if err != nil {
		return nil, err
	}
	return set, nil
}

func compileOrderBy(field func(string) string, terms []string, sc scope) ([]queryir.Ordering, error) {
	var orderings []queryir.Ordering
	for i, text := range terms {
		o, err := parseOrdering(field(fmt.Sprintf("orderBy[%d]", i)), text, sc)
		if err != nil {
			return nil, err
		}
		orderings = append(orderings, o)
	}
	return orderings, nil
}

func compileLimit(field func(string) string, doc *Document) (*queryir.Limit, error) {
	if doc.Offset < 0 {
		return nil, newParseError(field("offset"), -1, "offset must not be negative")
	}
	if doc.Limit == nil && doc.Offset == 0 {
		return nil, nil
	}
	limit := &queryir.Limit{RowLimit: queryir.NoRowLimit, Offset: doc.Offset}
	if doc.Limit != nil {
		if *doc.Limit < 0 {
			return nil, newParseError(field("limit"), -1, "limit must not be negative")
		}
		limit.RowLimit = *doc.Limit
	}
	return limit, nil
}

func parseJoinType(field, text string) (queryir.JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "inner":
		return queryir.InnerJoin, nil
	case "left", "left_outer", "left outer":
		return queryir.LeftOuterJoin, nil
	case "right", "right_outer", "right outer":
		return queryir.RightOuterJoin, nil
	case "full", "full_outer", "full outer":
		return queryir.FullOuterJoin, nil
	case "cross":
		return queryir.CrossJoin, nil
	default:
		return 0, newParseError(field, -1, "unknown join type %q", text)
	}
}

func parseSetOperator(field, text string) (queryir.SetOperator, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "union":
		return queryir.Union, nil
	case "intersect":
		return queryir.Intersect, nil
	case "except":
		return queryir.Except, nil
	default:
		return 0, newParseError(field, -1, "unknown set operation %q", text)
	}
}
