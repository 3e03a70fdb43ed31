package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

// String renders the tree reachable from the root, one node per line,
// indented two spaces per level:
//
//	PROJECT [t1] <PROJECT_COLUMNS=[t1.c11, t1.c12], PROJECT_COLUMN_TYPES=[STRING, STRING]>
//	  SELECT [t1] <SELECT_CRITERIA=t1.c13 < 3>
//	    ACCESS [t1]
//	      SOURCE [t1] <SOURCE_NAME=t1, SOURCE_COLUMNS=[c11(STRING), c12(STRING), c13(STRING)]>
//
// The output is deterministic and is used by golden tests and debug logs.
func (p *Plan) String() string {
	if p.root == NoNode {
		return "<empty plan>\n"
	}
	var sb strings.Builder
	p.render(&sb, p.root, 0)
	return sb.String()
}

// NodeString renders a single node without its children.
func (p *Plan) NodeString(id NodeID) string {
	n := p.node(id)
	var sb strings.Builder
	sb.WriteString(n.typ.String())
	sb.WriteString(" [")
	sb.WriteString(strings.Join(n.visible, ", "))
	sb.WriteString("]")

	var parts []string
	for prop := Property(0); prop < propCount; prop++ {
		v, ok := n.props[prop]
		if !ok {
			continue
		}
		parts = append(parts, prop.String()+"="+formatValue(v))
	}
	if len(parts) > 0 {
		sb.WriteString(" <")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(">")
	}
	return sb.String()
}

func (p *Plan) render(sb *strings.Builder, id NodeID, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(p.NodeString(id))
	sb.WriteByte('\n')
	for _, c := range p.node(id).children {
		p.render(sb, c, depth+1)
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case queryir.Constraint:
		return queryir.FormatConstraint(val)
	case queryir.JoinCondition:
		return queryir.FormatJoinCondition(val)
	case []queryir.Constraint:
		parts := make([]string, len(val))
		for i, c := range val {
			parts[i] = queryir.FormatConstraint(c)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []queryir.Column:
		parts := make([]string, len(val))
		for i, c := range val {
			parts[i] = FormatColumn(c)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []queryir.Ordering:
		parts := make([]string, len(val))
		for i, o := range val {
			parts[i] = queryir.FormatOrdering(o)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []schema.Column:
		parts := make([]string, len(val))
		for i, c := range val {
			parts[i] = c.Name + "(" + c.Type + ")"
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatColumn renders a column as "selector.property" with " AS alias"
// when the output name differs from the property.
func FormatColumn(c queryir.Column) string {
	s := c.Selector + "." + c.Property
	if c.Alias != "" && c.Alias != c.Property {
		s += " AS " + c.Alias
	}
	return s
}
