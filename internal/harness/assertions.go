package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/query"
)

// checkExpectations compares results against an expect clause and returns
// one message per failed expectation. The result is empty when all hold.
func checkExpectations(results query.Results, expect ExpectClause) []string {
	var errs []string

	if expect.Columns != nil {
		got := results.Columns.ColumnNames()
		if !slices.Equal(got, expect.Columns) {
			errs = append(errs, fmt.Sprintf("columns: expected %v, got %v", expect.Columns, got))
		}
	}

	if expect.Rows != nil {
		if err := assertRows(results.Tuples, expect.Rows, expect.Unordered); err != nil {
			errs = append(errs, err.Error())
		}
	}

	errs = append(errs, assertProblems(results.Problems, expect.Problems)...)
	return errs
}

func assertRows(got []query.Tuple, expected [][]any, unordered bool) error {
	want := make([]query.Tuple, len(expected))
	for i, raw := range expected {
		row := make(query.Tuple, len(raw))
		for j, val := range raw {
			v, err := ir.FromGo(val)
			if err != nil {
				return fmt.Errorf("expect.rows[%d][%d]: %w", i, j, err)
			}
			row[j] = v
		}
		want[i] = row
	}

	if unordered {
		got = sortedTuples(got)
		want = sortedTuples(want)
	}

	if len(got) != len(want) {
		return fmt.Errorf("rows: expected %d rows, got %d\n  want: %s\n  got:  %s",
			len(want), len(got), formatTuples(want), formatTuples(got))
	}
	for i := range want {
		if !tuplesEqual(got[i], want[i]) {
			return fmt.Errorf("rows[%d]: expected %s, got %s", i, formatTuple(want[i]), formatTuple(got[i]))
		}
	}
	return nil
}

// assertProblems checks that every listed code was reported. An empty list
// requires a query without errors.
func assertProblems(got []query.Problem, codes []string) []string {
	if len(codes) == 0 {
		var errs []string
		for _, p := range got {
			if p.Severity == query.SeverityError {
				errs = append(errs, fmt.Sprintf("unexpected problem: %s", p))
			}
		}
		return errs
	}

	var errs []string
	for _, code := range codes {
		found := slices.ContainsFunc(got, func(p query.Problem) bool {
			return string(p.Code) == code
		})
		if !found {
			errs = append(errs, fmt.Sprintf("problems: expected %s, got %s", code, formatProblems(got)))
		}
	}
	return errs
}

func tuplesEqual(a, b query.Tuple) bool {
	return len(a) == len(b) && ir.CompareTuples(a, b) == 0
}

func sortedTuples(rows []query.Tuple) []query.Tuple {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b query.Tuple) int {
		return ir.CompareTuples(a, b)
	})
	return out
}

func formatTuples(rows []query.Tuple) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = formatTuple(row)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatTuple(row query.Tuple) string {
	parts := make([]string, len(row))
	for i, v := range row {
		if ir.IsNull(v) {
			parts[i] = "NULL"
			continue
		}
		b, err := ir.MarshalCanonical(v)
		if err != nil {
			parts[i] = fmt.Sprintf("%v", v)
			continue
		}
		parts[i] = string(b)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatProblems(problems []query.Problem) string {
	if len(problems) == 0 {
		return "none"
	}
	codes := make([]string, len(problems))
	for i, p := range problems {
		codes[i] = string(p.Code)
	}
	return strings.Join(codes, ", ")
}
