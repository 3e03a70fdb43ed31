package queryir

import (
	"github.com/roach88/repoquery/internal/ir"
)

// Query represents an abstract query.
//
// This is a sealed interface - only types in this package implement it.
//
// Query types:
//   - Select: selectors, joins, columns, constraint, grouping, ordering, limit
//   - SetQuery: UNION / INTERSECT / EXCEPT of two queries
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Source is the FROM clause of a Select: a single selector or a join tree.
type Source interface {
	sourceNode()
}

// JoinCondition describes how the two sides of a Join are matched.
type JoinCondition interface {
	joinConditionNode()
}

// Constraint is a boolean criterion evaluated against a row.
type Constraint interface {
	constraintNode()
}

// DynamicOperand is a value computed from the row being evaluated.
type DynamicOperand interface {
	dynamicOperandNode()
}

// StaticOperand is a value fixed for the whole execution.
type StaticOperand interface {
	staticOperandNode()
}

// NoRowLimit marks a Limit that only skips rows.
const NoRowLimit = -1

// Limit bounds the rows a query returns.
// A nil *Limit means "all rows, no offset".
type Limit struct {
	RowLimit int // NoRowLimit for unbounded
	Offset   int
}

// IsUnlimited reports whether the limit neither truncates nor skips rows.
func (l *Limit) IsUnlimited() bool {
	return l == nil || (l.RowLimit == NoRowLimit && l.Offset == 0)
}

// Select represents a single SELECT query.
//
// Semantics:
//
//	SELECT [DISTINCT] <columns> FROM <source> WHERE <where>
//	GROUP BY <group_by> ORDER BY <order_by> LIMIT <limit.row_limit> OFFSET <limit.offset>
//
// An empty Columns slice selects every column of every selector in Source,
// in source order. A Column whose Property is "*" selects every column of
// that one selector.
type Select struct {
	Distinct bool
	Source   Source
	Columns  []Column
	Where    Constraint // nil = no criteria
	GroupBy  []Column
	OrderBy  []Ordering
	Limit    *Limit // nil = unlimited
}

func (Select) queryNode() {}

// SetOperator is the operator of a SetQuery.
type SetOperator int

const (
	Union SetOperator = iota
	Intersect
	Except
)

func (op SetOperator) String() string {
	switch op {
	case Union:
		return "UNION"
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return "UNKNOWN"
	}
}

// SetQuery combines the results of two queries.
// Without All, the result contains no duplicate tuples.
// Both sides must produce the same number of columns.
type SetQuery struct {
	Left    Query
	Right   Query
	Op      SetOperator
	All     bool
	OrderBy []Ordering
	Limit   *Limit
}

func (SetQuery) queryNode() {}

// NamedSelector references a table or view from the schema catalog.
type NamedSelector struct {
	Name  string
	Alias string // optional
}

func (NamedSelector) sourceNode() {}

// AliasOrName returns the name queries use to reference this selector.
func (s NamedSelector) AliasOrName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// JoinType enumerates the supported join kinds.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
)

func (jt JoinType) String() string {
	switch jt {
	case InnerJoin:
		return "INNER"
	case LeftOuterJoin:
		return "LEFT_OUTER"
	case RightOuterJoin:
		return "RIGHT_OUTER"
	case FullOuterJoin:
		return "FULL_OUTER"
	case CrossJoin:
		return "CROSS"
	default:
		return "UNKNOWN"
	}
}

// IsOuter reports whether the join preserves unmatched rows from either side.
func (jt JoinType) IsOuter() bool {
	return jt == LeftOuterJoin || jt == RightOuterJoin || jt == FullOuterJoin
}

// Join combines two sources.
// Condition may be nil only for CrossJoin.
type Join struct {
	Left      Source
	Right     Source
	Type      JoinType
	Condition JoinCondition
}

func (Join) sourceNode() {}

// EquiJoinCondition matches rows where Selector1.Property1 = Selector2.Property2.
type EquiJoinCondition struct {
	Selector1 string
	Property1 string
	Selector2 string
	Property2 string
}

func (EquiJoinCondition) joinConditionNode() {}

// ComparisonJoinCondition matches rows using an arbitrary comparison
// between a property of each side (for example a.c11 < b.c21).
type ComparisonJoinCondition struct {
	Left     PropertyValue
	Operator Operator
	Right    PropertyValue
}

func (ComparisonJoinCondition) joinConditionNode() {}

// Column is one projected output column.
type Column struct {
	Selector string
	Property string
	Alias    string // optional
}

// ColumnName returns the output name of the column.
func (c Column) ColumnName() string {
	if c.Alias != "" {
		return c.Alias
	}
	return c.Property
}

// Ordering is one ORDER BY term.
type Ordering struct {
	Operand    DynamicOperand
	Descending bool
}

// Operator is a comparison operator.
type Operator int

const (
	EqualTo Operator = iota
	NotEqualTo
	LessThan
	LessThanOrEqualTo
	GreaterThan
	GreaterThanOrEqualTo
	Like
)

func (op Operator) String() string {
	switch op {
	case EqualTo:
		return "="
	case NotEqualTo:
		return "!="
	case LessThan:
		return "<"
	case LessThanOrEqualTo:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqualTo:
		return ">="
	case Like:
		return "LIKE"
	default:
		return "?"
	}
}

// And is true when both sides are true.
type And struct {
	Left  Constraint
	Right Constraint
}

func (And) constraintNode() {}

// Or is true when either side is true.
type Or struct {
	Left  Constraint
	Right Constraint
}

func (Or) constraintNode() {}

// Not negates a constraint.
type Not struct {
	Constraint Constraint
}

func (Not) constraintNode() {}

// Comparison compares a row value with a static value.
//
// Semantics:
//
//	<operand> <operator> <value>
//
// A NULL on either side never satisfies the comparison.
// For LIKE, '%' matches any run of characters and '_' matches one character.
type Comparison struct {
	Operand  DynamicOperand
	Operator Operator
	Value    StaticOperand
}

func (Comparison) constraintNode() {}

// Between is true when Lower <= operand <= Upper, with each bound optionally
// exclusive.
type Between struct {
	Operand        DynamicOperand
	Lower          StaticOperand
	Upper          StaticOperand
	LowerInclusive bool
	UpperInclusive bool
}

func (Between) constraintNode() {}

// SetCriteria is true when the operand equals any of Values (SQL IN).
// An empty Values list matches nothing. A BindVariableReference or Subquery
// bound to an IRArray contributes every element of the array.
type SetCriteria struct {
	Operand DynamicOperand
	Values  []StaticOperand
}

func (SetCriteria) constraintNode() {}

// PropertyExistence is true when the property is present (non-NULL) on the row.
type PropertyExistence struct {
	Selector string
	Property string
}

func (PropertyExistence) constraintNode() {}

// FullTextSearch is true when the text of the selector (or of one property,
// when Property is set) matches Expression.
// Relevance scoring is not computed; only the presence of a score column is
// propagated to the result columns.
type FullTextSearch struct {
	Selector   string
	Property   string // optional; empty = all properties
	Expression string
}

func (FullTextSearch) constraintNode() {}

// PropertyValue reads a property of a selector.
type PropertyValue struct {
	Selector string
	Property string
}

func (PropertyValue) dynamicOperandNode() {}

// Length is the length of a property's string form.
type Length struct {
	PropertyValue PropertyValue
}

func (Length) dynamicOperandNode() {}

// LowerCase lower-cases the string form of its operand.
type LowerCase struct {
	Operand DynamicOperand
}

func (LowerCase) dynamicOperandNode() {}

// UpperCase upper-cases the string form of its operand.
type UpperCase struct {
	Operand DynamicOperand
}

func (UpperCase) dynamicOperandNode() {}

// Literal is a constant value.
type Literal struct {
	Value ir.IRValue
}

func (Literal) staticOperandNode() {}

// BindVariableReference names a variable supplied with the query context.
type BindVariableReference struct {
	Name string
}

func (BindVariableReference) staticOperandNode() {}

// Subquery is a query whose first result column supplies the value(s).
type Subquery struct {
	Query Query
}

func (Subquery) staticOperandNode() {}
