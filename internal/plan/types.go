package plan

// Type is the kind of a plan node.
type Type int

const (
	TypeSource Type = iota
	TypeAccess
	TypeProject
	TypeSelect
	TypeJoin
	TypeSort
	TypeLimit
	TypeGroup
	TypeDuplicateRemoval
	TypeSetOperation
	TypeDependent
	TypeNull
)

var typeNames = [...]string{
	TypeSource:           "SOURCE",
	TypeAccess:           "ACCESS",
	TypeProject:          "PROJECT",
	TypeSelect:           "SELECT",
	TypeJoin:             "JOIN",
	TypeSort:             "SORT",
	TypeLimit:            "LIMIT",
	TypeGroup:            "GROUP",
	TypeDuplicateRemoval: "DUPLICATE_REMOVAL",
	TypeSetOperation:     "SET_OPERATION",
	TypeDependent:        "DEPENDENT",
	TypeNull:             "NULL",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "UNKNOWN"
}

// JoinAlgorithm selects how the processor evaluates a JOIN node.
type JoinAlgorithm int

const (
	NestedLoop JoinAlgorithm = iota
	Hash
)

func (a JoinAlgorithm) String() string {
	switch a {
	case NestedLoop:
		return "NESTED_LOOP"
	case Hash:
		return "HASH"
	default:
		return "UNKNOWN"
	}
}
