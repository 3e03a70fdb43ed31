package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

func TestMemorySource_FetchRows(t *testing.T) {
	m := NewMemorySource()
	require.NoError(t, m.AddTable(peopleTable))
	require.NoError(t, m.Insert("people", row(t, 1, "ada", true), row(t, 2, nil, false)))

	rows, err := m.FetchRows(context.Background(), process.FetchRequest{
		Table:    "people",
		Columns:  []string{"name", "id"},
		Criteria: []queryir.Constraint{eq("id", ir.IRInt(1))},
	})
	require.NoError(t, err)

	// Criteria are not applied.
	assert.Equal(t, []query.Tuple{
		{ir.IRString("ada"), ir.IRInt(1)},
		{ir.IRNull{}, ir.IRInt(2)},
	}, rows)
}

func TestMemorySource_RowsAreCopied(t *testing.T) {
	m := NewMemorySource()
	require.NoError(t, m.AddTable(peopleTable))
	r := row(t, 1, "ada", true)
	require.NoError(t, m.Insert("people", r))
	r[1] = ir.IRString("changed")

	rows, err := m.FetchRows(context.Background(), process.FetchRequest{Table: "people", Columns: []string{"name"}})
	require.NoError(t, err)
	rows[0][0] = ir.IRString("changed again")

	rows, err = m.FetchRows(context.Background(), process.FetchRequest{Table: "people", Columns: []string{"name"}})
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("ada"), rows[0][0])
}

func TestMemorySource_Errors(t *testing.T) {
	m := NewMemorySource()
	require.NoError(t, m.AddTable(peopleTable))

	assert.Error(t, m.AddTable(peopleTable), "duplicate")
	assert.Error(t, m.AddTable(schema.Table{Name: "v", View: queryir.Select{}}), "view")
	assert.True(t, errors.Is(m.Insert("missing", row(t, 1)), ErrUnknownTable))
	assert.Error(t, m.Insert("people", row(t, 1)), "short row")

	_, err := m.FetchRows(context.Background(), process.FetchRequest{Table: "missing"})
	assert.True(t, errors.Is(err, ErrUnknownTable))

	_, err = m.FetchRows(context.Background(), process.FetchRequest{Table: "people", Columns: []string{"age"}})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.FetchRows(ctx, process.FetchRequest{Table: "people", Columns: []string{"id"}})
	assert.ErrorIs(t, err, context.Canceled)
}
