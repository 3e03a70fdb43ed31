package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemsCollect(t *testing.T) {
	var ps Problems

	assert.False(t, ps.HasErrors())
	assert.Equal(t, 0, ps.Len())

	ps.AddWarning(CodeQueryStructure, "Empty IN list matches nothing")
	assert.False(t, ps.HasErrors())

	ps.AddError(CodeTableDoesNotExist, "t9")
	ps.AddError(CodeColumnDoesNotExist, "c99", "t1")
	ps.AddInfo(CodeMalformedPlan)

	assert.True(t, ps.HasErrors())
	assert.Equal(t, 2, ps.ErrorCount())
	assert.Equal(t, 1, ps.WarningCount())
	assert.Equal(t, 4, ps.Len())
	assert.True(t, ps.HasCode(CodeColumnDoesNotExist))
	assert.False(t, ps.HasCode(CodeRowSourceFailed))
}

func TestProblemsSnapshotIsACopy(t *testing.T) {
	var ps Problems
	ps.AddError(CodeBindVariableMissing, "x")

	snap := ps.Snapshot()
	ps.AddError(CodeBindVariableMissing, "y")

	require.Len(t, snap, 1)
	assert.Equal(t, 2, ps.Len())
}

func TestProblemMessage(t *testing.T) {
	tests := []struct {
		problem  Problem
		expected string
	}{
		{Problem{Code: CodeTableDoesNotExist, Params: []any{"t9"}}, "Table 't9' does not exist"},
		{Problem{Code: CodeColumnDoesNotExist, Params: []any{"c99", "t1"}}, "Column 'c99' does not exist on table 't1'"},
		{Problem{Code: CodeBindVariableMissing, Params: []any{"x"}}, "No value was supplied for bind variable 'x'"},
		{Problem{Code: CodeMalformedPlan}, "The optimized plan has no PROJECT node"},
		{Problem{Code: Code("custom")}, "custom"},
		{Problem{Code: Code("custom"), Params: []any{1, "a"}}, "custom [1 a]"},
	}

	for _, tt := range tests {
		t.Run(string(tt.problem.Code), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.problem.Message())
		})
	}

	p := Problem{Severity: SeverityWarning, Code: CodeTableDoesNotExist, Params: []any{"t9"}}
	assert.Equal(t, "WARNING table-does-not-exist: Table 't9' does not exist", p.String())
}

func TestEveryCodeHasAMessage(t *testing.T) {
	codes := []Code{
		CodeTableDoesNotExist, CodeColumnDoesNotExist, CodeSelectorDoesNotExist,
		CodeDuplicateSelector, CodeBindVariableMissing, CodeMalformedPlan,
		CodeRowSourceFailed, CodeRuleLimitExceeded, CodeViewColumnDoesNotExist,
		CodeSetOperationIncompatible, CodeOrderingNotProjected, CodeQueryStructure,
		CodeUnsupportedPlanNode, CodeExecutionCanceled,
	}
	for _, code := range codes {
		_, ok := messages[code]
		assert.True(t, ok, "missing message for %s", code)
	}
}
