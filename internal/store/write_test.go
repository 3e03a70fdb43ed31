package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

func TestCreateTable_RecordsColumns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTable(ctx, peopleTable))

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, peopleTable, tables[0])
}

func TestCreateTable_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		table schema.Table
	}{
		{"view", schema.Table{Name: "v", View: queryir.Select{}}},
		{"no columns", schema.Table{Name: "empty"}},
		{"bad type", schema.Table{Name: "bad", Columns: []schema.Column{{Name: "c", Type: "DOUBLE"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.CreateTable(ctx, tt.table))
		})
	}

	require.NoError(t, s.CreateTable(ctx, peopleTable))
	assert.Error(t, s.CreateTable(ctx, peopleTable), "duplicate table")

	tables, err := s.Tables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1, "failed creates leave no metadata behind")
}

func TestInsert_UnknownTable(t *testing.T) {
	s := createTestStore(t)

	err := s.Insert(context.Background(), "missing", row(t, 1))
	assert.True(t, errors.Is(err, ErrUnknownTable))
}

func TestInsert_IsAtomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateTable(ctx, peopleTable))

	err := s.Insert(ctx, "people",
		row(t, 1, "ada", true),
		row(t, "two", "grace", false),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")

	err = s.Insert(ctx, "people", row(t, 1, "ada"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 2 values, want 3")

	var count int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM "people"`).Scan(&count))
	assert.Zero(t, count)
}

func TestInsert_NormalizesStrings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateTable(ctx, peopleTable))
	require.NoError(t, s.Insert(ctx, "people", row(t, 1, ir.IRString("Jose\u0301"), true)))

	var name string
	require.NoError(t, s.DB().QueryRow(`SELECT "name" FROM "people"`).Scan(&name))
	assert.Equal(t, "Jos\u00e9", name)
}
