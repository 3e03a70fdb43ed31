package query

import (
	"fmt"
	"strings"
)

// Severity of a Problem.
type Severity int

const (
	// SeverityError halts progression past the current phase.
	SeverityError Severity = iota
	// SeverityWarning is recorded and does not halt.
	SeverityWarning
	// SeverityInfo is informational.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// Code is the message key of a Problem.
type Code string

const (
	CodeTableDoesNotExist        Code = "table-does-not-exist"
	CodeColumnDoesNotExist       Code = "column-does-not-exist"
	CodeSelectorDoesNotExist     Code = "selector-does-not-exist"
	CodeDuplicateSelector        Code = "duplicate-selector"
	CodeBindVariableMissing      Code = "bind-variable-missing"
	CodeMalformedPlan            Code = "malformed-plan"
	CodeRowSourceFailed          Code = "row-source-failed"
	CodeRuleLimitExceeded        Code = "rule-limit-exceeded"
	CodeViewColumnDoesNotExist   Code = "view-column-does-not-exist"
	CodeSetOperationIncompatible Code = "set-operation-incompatible"
	CodeOrderingNotProjected     Code = "ordering-not-projected"
	CodeQueryStructure           Code = "query-structure"
	CodeUnsupportedPlanNode      Code = "unsupported-plan-node"
	CodeExecutionCanceled        Code = "execution-canceled"
	CodeSelectorNotProduced      Code = "selector-not-produced"
)

// messages is the catalog used by Problem.Message. Parameters are applied
// positionally.
var messages = map[Code]string{
	CodeTableDoesNotExist:        "Table '%v' does not exist",
	CodeColumnDoesNotExist:       "Column '%v' does not exist on table '%v'",
	CodeSelectorDoesNotExist:     "Selector '%v' is not used in the query",
	CodeDuplicateSelector:        "Selector '%v' is used more than once in the query",
	CodeBindVariableMissing:      "No value was supplied for bind variable '%v'",
	CodeMalformedPlan:            "The optimized plan has no PROJECT node",
	CodeRowSourceFailed:          "Unable to read rows for '%v': %v",
	CodeRuleLimitExceeded:        "Optimization stopped after %v rule applications",
	CodeViewColumnDoesNotExist:   "Column '%v' does not exist on view '%v'",
	CodeSetOperationIncompatible: "%v requires the same number of columns on both sides (%v vs %v)",
	CodeOrderingNotProjected:     "ORDER BY '%v' must reference a selected column when DISTINCT is used",
	CodeQueryStructure:           "%v",
	CodeUnsupportedPlanNode:      "Plan node type %v cannot be processed",
	CodeExecutionCanceled:        "Execution was canceled: %v",
	CodeSelectorNotProduced:      "Selector '%v' is not available to the %v node",
}

// Problem is one diagnostic.
type Problem struct {
	Severity Severity
	Code     Code
	Params   []any
}

// Message renders the problem through the message catalog.
func (p Problem) Message() string {
	format, ok := messages[p.Code]
	if !ok {
		if len(p.Params) == 0 {
			return string(p.Code)
		}
		return fmt.Sprintf("%s %v", p.Code, p.Params)
	}
	return fmt.Sprintf(format, p.Params...)
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %s: %s", p.Severity, p.Code, p.Message())
}

// Problems is an append-only diagnostics collector.
//
// A Problems value belongs to exactly one Context and is never shared across
// executions, so it has no locking.
type Problems struct {
	list []Problem
}

// AddError records an error.
func (ps *Problems) AddError(code Code, params ...any) {
	ps.add(SeverityError, code, params)
}

// AddWarning records a warning.
func (ps *Problems) AddWarning(code Code, params ...any) {
	ps.add(SeverityWarning, code, params)
}

// AddInfo records an informational problem.
func (ps *Problems) AddInfo(code Code, params ...any) {
	ps.add(SeverityInfo, code, params)
}

func (ps *Problems) add(sev Severity, code Code, params []any) {
	ps.list = append(ps.list, Problem{Severity: sev, Code: code, Params: params})
}

// HasErrors reports whether any error has been recorded.
func (ps *Problems) HasErrors() bool {
	return ps.ErrorCount() > 0
}

// ErrorCount returns the number of errors.
func (ps *Problems) ErrorCount() int {
	return ps.count(SeverityError)
}

// WarningCount returns the number of warnings.
func (ps *Problems) WarningCount() int {
	return ps.count(SeverityWarning)
}

func (ps *Problems) count(sev Severity) int {
	n := 0
	for _, p := range ps.list {
		if p.Severity == sev {
			n++
		}
	}
	return n
}

// Len returns the number of problems of any severity.
func (ps *Problems) Len() int {
	return len(ps.list)
}

// HasCode reports whether a problem with the given code was recorded.
func (ps *Problems) HasCode(code Code) bool {
	for _, p := range ps.list {
		if p.Code == code {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the problems recorded so far.
func (ps *Problems) Snapshot() []Problem {
	out := make([]Problem, len(ps.list))
	copy(out, ps.list)
	return out
}

func (ps *Problems) String() string {
	lines := make([]string, len(ps.list))
	for i, p := range ps.list {
		lines[i] = p.String()
	}
	return strings.Join(lines, "\n")
}
