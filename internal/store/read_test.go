package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

func peopleRequest(columns ...string) process.FetchRequest {
	return process.FetchRequest{Table: "people", Selector: "p", Columns: columns}
}

func eq(property string, v ir.IRValue) queryir.Comparison {
	return queryir.Comparison{
		Operand:  queryir.PropertyValue{Selector: "p", Property: property},
		Operator: queryir.EqualTo,
		Value:    queryir.Literal{Value: v},
	}
}

func TestFetchRows_AllRowsInInsertionOrder(t *testing.T) {
	s := createTestStore(t)
	createPeople(t, s)

	rows, err := s.FetchRows(context.Background(), peopleRequest("id", "name", "active"))
	require.NoError(t, err)

	assert.Equal(t, []query.Tuple{
		{ir.IRInt(1), ir.IRString("ada"), ir.IRBool(true)},
		{ir.IRInt(2), ir.IRString("grace"), ir.IRBool(false)},
		{ir.IRInt(3), ir.IRNull{}, ir.IRBool(true)},
		{ir.IRInt(4), ir.IRString("linus"), ir.IRNull{}},
	}, rows)
}

func TestFetchRows_ProjectsRequestedColumns(t *testing.T) {
	s := createTestStore(t)
	createPeople(t, s)

	rows, err := s.FetchRows(context.Background(), peopleRequest("name", "id"))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, query.Tuple{ir.IRString("ada"), ir.IRInt(1)}, rows[0])
}

func TestFetchRows_PushesExactCriteria(t *testing.T) {
	s := createTestStore(t)
	createPeople(t, s)

	tests := []struct {
		name     string
		criteria []queryir.Constraint
		wantIDs  []int64
	}{
		{"string equality", []queryir.Constraint{eq("name", ir.IRString("grace"))}, []int64{2}},
		{"boolean", []queryir.Constraint{eq("active", ir.IRBool(true))}, []int64{1, 3}},
		{"conjunction", []queryir.Constraint{eq("active", ir.IRBool(true)), queryir.PropertyExistence{Selector: "p", Property: "name"}}, []int64{1}},
		{"not is left to the processor", []queryir.Constraint{queryir.Not{Constraint: eq("id", ir.IRInt(1))}}, []int64{1, 2, 3, 4}},
		{"type mismatch is left to the processor", []queryir.Constraint{eq("id", ir.IRString("1"))}, []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := peopleRequest("id", "name", "active")
			req.Criteria = tt.criteria
			rows, err := s.FetchRows(context.Background(), req)
			require.NoError(t, err)

			var ids []int64
			for _, r := range rows {
				ids = append(ids, int64(r[0].(ir.IRInt)))
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFetchRows_BindVariables(t *testing.T) {
	s := createTestStore(t)
	createPeople(t, s)

	req := peopleRequest("id")
	req.Criteria = []queryir.Constraint{queryir.SetCriteria{
		Operand: queryir.PropertyValue{Selector: "p", Property: "id"},
		Values:  []queryir.StaticOperand{queryir.BindVariableReference{Name: "ids"}},
	}}
	req.Variables = map[string]ir.IRValue{"ids": ir.NewIRArray(ir.IRInt(2), ir.IRInt(4))}

	rows, err := s.FetchRows(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []query.Tuple{{ir.IRInt(2)}, {ir.IRInt(4)}}, rows)
}

func TestFetchRows_Errors(t *testing.T) {
	s := createTestStore(t)
	createPeople(t, s)
	ctx := context.Background()

	_, err := s.FetchRows(ctx, process.FetchRequest{Table: "missing", Columns: []string{"id"}})
	assert.True(t, errors.Is(err, ErrUnknownTable))

	_, err = s.FetchRows(ctx, peopleRequest("id", "age"))
	assert.ErrorContains(t, err, `no column "age"`)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.FetchRows(canceled, peopleRequest("id"))
	assert.Error(t, err)
}

func TestFetchRows_Concurrent(t *testing.T) {
	s := createTestStore(t)
	createPeople(t, s)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := s.FetchRows(context.Background(), peopleRequest("id"))
			if err == nil && len(rows) != 4 {
				err = errors.New("short read")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestAddTo_RegistersStoredTables(t *testing.T) {
	s := createTestStore(t)
	createPeople(t, s)

	b := schema.NewBuilder()
	require.NoError(t, s.AddTo(context.Background(), b))
	catalog, err := b.Build()
	require.NoError(t, err)

	people, ok := catalog.Table("people")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "active"}, people.ColumnNames())
}
