package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/repoquery/internal/querydoc"
)

// Scenario is one conformance test: a catalog, its base-table rows, a query
// document and the results the engine must produce for it.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is CUE source declaring tables and views:
	//
	//	tables: t1: columns: {c11: "LONG", c12: "STRING"}
	//	views: v1: query: {from: "t1", where: "c11 > 0"}
	Schema string `yaml:"schema"`

	// Rows holds the base-table rows, keyed by table name. Each row lists
	// one value per column in declaration order; ~ is NULL.
	Rows map[string][][]any `yaml:"rows,omitempty"`

	// Variables are the bind variable values. A YAML list binds a
	// multi-valued variable.
	Variables map[string]any `yaml:"variables,omitempty"`

	// Hints adjusts the planning hints before execution.
	Hints *HintsClause `yaml:"hints,omitempty"`

	// Query is the query document to execute.
	Query querydoc.Document `yaml:"query"`

	// Expect is checked in addition to the golden snapshot.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// HintsClause holds the caller-settable hints. Unset fields keep the
// defaults from query.DefaultHints.
type HintsClause struct {
	ShowPlan                *bool `yaml:"show_plan,omitempty"`
	ValidateColumnExistence *bool `yaml:"validate_column_existence,omitempty"`
}

// ExpectClause specifies the expected query results.
type ExpectClause struct {
	// Columns are the expected result column names, in order.
	Columns []string `yaml:"columns,omitempty"`

	// Rows are the expected tuples. Nil skips the check; an empty list
	// requires no rows.
	Rows [][]any `yaml:"rows"`

	// Unordered compares Rows as a multiset.
	Unordered bool `yaml:"unordered,omitempty"`

	// Problems lists problem codes that must be reported. When the list
	// is empty the query must report no errors.
	Problems []string `yaml:"problems,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "expects:" vs "expect:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml file in dir, sorted by file name.
// Scenario names must be unique within the directory.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	seen := make(map[string]string, len(paths))
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if s.Query.From == "" && s.Query.Set == nil {
		return fmt.Errorf("query: from or set is required")
	}
	for table, rows := range s.Rows {
		for i, row := range rows {
			if row == nil {
				return fmt.Errorf("rows.%s[%d]: row must be a list", table, i)
			}
		}
	}
	return nil
}
