package plan

import (
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

// Property identifies a slot in a node's property bag. Properties render in
// declaration order.
type Property int

const (
	PropSourceName Property = iota
	PropSourceAlias
	PropSourceColumns
	PropAccessCriteria
	PropAccessNoResults
	PropProjectColumns
	PropProjectColumnTypes
	PropSelectCriteria
	PropJoinType
	PropJoinAlgorithm
	PropJoinCondition
	PropGroupColumns
	PropSortOrderBy
	PropLimitCount
	PropLimitOffset
	PropSetOperation
	PropSetUseAll
	PropVariableName
	propCount
)

var propertyNames = [...]string{
	PropSourceName:         "SOURCE_NAME",
	PropSourceAlias:        "SOURCE_ALIAS",
	PropSourceColumns:      "SOURCE_COLUMNS",
	PropAccessCriteria:     "ACCESS_CRITERIA",
	PropAccessNoResults:    "ACCESS_NO_RESULTS",
	PropProjectColumns:     "PROJECT_COLUMNS",
	PropProjectColumnTypes: "PROJECT_COLUMN_TYPES",
	PropSelectCriteria:     "SELECT_CRITERIA",
	PropJoinType:           "JOIN_TYPE",
	PropJoinAlgorithm:      "JOIN_ALGORITHM",
	PropJoinCondition:      "JOIN_CONDITION",
	PropGroupColumns:       "GROUP_COLUMNS",
	PropSortOrderBy:        "SORT_ORDER_BY",
	PropLimitCount:         "LIMIT_COUNT",
	PropLimitOffset:        "LIMIT_OFFSET",
	PropSetOperation:       "SET_OPERATION",
	PropSetUseAll:          "SET_USE_ALL",
	PropVariableName:       "VARIABLE_NAME",
}

func (p Property) String() string {
	if p >= 0 && p < propCount {
		return propertyNames[p]
	}
	return "UNKNOWN"
}

// Key is a typed handle on a Property. Each Property has exactly one Key,
// so a slot always holds values of one Go type.
type Key[T any] struct {
	prop Property
}

// Property returns the slot the key addresses.
func (k Key[T]) Property() Property {
	return k.prop
}

// Get returns the value stored under the key.
func (k Key[T]) Get(p *Plan, id NodeID) (T, bool) {
	v, ok := p.node(id).props[k.prop]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Value returns the value stored under the key, or the zero value.
func (k Key[T]) Value(p *Plan, id NodeID) T {
	v, _ := k.Get(p, id)
	return v
}

// Has reports whether the node has a value for the key.
func (k Key[T]) Has(p *Plan, id NodeID) bool {
	_, ok := p.node(id).props[k.prop]
	return ok
}

// Set stores a value under the key.
func (k Key[T]) Set(p *Plan, id NodeID, v T) {
	n := p.node(id)
	if n.props == nil {
		n.props = make(map[Property]any)
	}
	n.props[k.prop] = v
}

// Remove deletes the value stored under the key.
func (k Key[T]) Remove(p *Plan, id NodeID) {
	delete(p.node(id).props, k.prop)
}

var (
	SourceName         = Key[string]{PropSourceName}
	SourceAlias        = Key[string]{PropSourceAlias}
	SourceColumns      = Key[[]schema.Column]{PropSourceColumns}
	AccessCriteria     = Key[[]queryir.Constraint]{PropAccessCriteria}
	AccessNoResults    = Key[bool]{PropAccessNoResults}
	ProjectColumns     = Key[[]queryir.Column]{PropProjectColumns}
	ProjectColumnTypes = Key[[]string]{PropProjectColumnTypes}
	SelectCriteria     = Key[queryir.Constraint]{PropSelectCriteria}
	JoinType           = Key[queryir.JoinType]{PropJoinType}
	JoinAlgorithmKey   = Key[JoinAlgorithm]{PropJoinAlgorithm}
	JoinCondition      = Key[queryir.JoinCondition]{PropJoinCondition}
	GroupColumns       = Key[[]queryir.Column]{PropGroupColumns}
	SortOrderBy        = Key[[]queryir.Ordering]{PropSortOrderBy}
	LimitCount         = Key[int]{PropLimitCount}
	LimitOffset        = Key[int]{PropLimitOffset}
	SetOperation       = Key[queryir.SetOperator]{PropSetOperation}
	SetUseAll          = Key[bool]{PropSetUseAll}
	VariableName       = Key[string]{PropVariableName}
)
