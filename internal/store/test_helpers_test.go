package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/schema"
)

// createTestStore opens a fresh database in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var peopleTable = schema.Table{
	Name: "people",
	Columns: []schema.Column{
		{Name: "id", Type: schema.TypeLong},
		{Name: "name", Type: schema.TypeString},
		{Name: "active", Type: schema.TypeBoolean},
	},
}

// createPeople creates and fills the people table.
func createPeople(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.CreateTable(ctx, peopleTable); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	err := s.Insert(ctx, "people",
		row(t, 1, "ada", true),
		row(t, 2, "grace", false),
		row(t, 3, nil, true),
		row(t, 4, "linus", nil),
	)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
}

func row(t *testing.T, values ...any) query.Tuple {
	t.Helper()
	tuple := make(query.Tuple, len(values))
	for i, v := range values {
		val, err := ir.FromGo(v)
		if err != nil {
			t.Fatalf("FromGo(%v) failed: %v", v, err)
		}
		tuple[i] = val
	}
	return tuple
}
