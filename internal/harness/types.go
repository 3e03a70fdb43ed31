package harness

import (
	"github.com/roach88/repoquery/internal/query"
)

// Backend selects the row source a scenario runs against.
type Backend string

const (
	// BackendMemory serves rows from store.MemorySource.
	BackendMemory Backend = "memory"

	// BackendSQLite serves rows from a SQLite store in a temporary directory.
	BackendSQLite Backend = "sqlite"
)

// Backends lists every backend, in the order conformance tests run them.
var Backends = []Backend{BackendMemory, BackendSQLite}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation holds.
	Pass bool

	// Results are the engine results.
	Results query.Results

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failed expectation.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}
