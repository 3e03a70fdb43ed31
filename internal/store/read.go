package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/schema"
)

// FetchRows implements process.RowSource.
//
// Column types come from the stored metadata, not from the request, so
// criteria are pushed and values decoded by what is actually on disk.
func (s *Store) FetchRows(ctx context.Context, req process.FetchRequest) ([]query.Tuple, error) {
	stored, err := s.columns(ctx, req.Table)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Table, err)
	}
	types := make(map[string]string, len(stored))
	for _, c := range stored {
		types[c.Name] = c.Type
	}

	req.Types = make([]string, len(req.Columns))
	for i, name := range req.Columns {
		typ, ok := types[name]
		if !ok {
			return nil, fmt.Errorf("fetch %s: no column %q", req.Table, name)
		}
		req.Types[i] = typ
	}

	stmt, err := s.compiler.Compile(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Table, err)
	}

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Table, err)
	}
	defer rows.Close()

	var out []query.Tuple
	for rows.Next() {
		tuple, err := scanTuple(rows, req.Types)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", req.Table, err)
		}
		out = append(out, tuple)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Table, err)
	}
	return out, nil
}

func scanTuple(rows *sql.Rows, types []string) (query.Tuple, error) {
	raw := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	tuple := make(query.Tuple, len(types))
	for i, v := range raw {
		val, err := fromColumn(v, types[i])
		if err != nil {
			return nil, err
		}
		tuple[i] = val
	}
	return tuple, nil
}

// Tables returns every stored table, sorted by name, with its columns in
// declaration order.
func (s *Store) Tables(ctx context.Context) ([]schema.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, column_name, column_type
		FROM rq_columns
		ORDER BY table_name ASC COLLATE BINARY, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var table string
		var c schema.Column
		if err := rows.Scan(&table, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("read tables: %w", err)
		}
		if n := len(tables); n == 0 || tables[n-1].Name != table {
			tables = append(tables, schema.Table{Name: table})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	return tables, nil
}

// AddTo registers every stored table with a catalog builder.
func (s *Store) AddTo(ctx context.Context, b *schema.Builder) error {
	tables, err := s.Tables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		b.AddTable(t.Name, t.Columns...)
	}
	return nil
}

func (s *Store) columns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT column_name, column_type
		FROM rq_columns
		WHERE table_name = ?
		ORDER BY position ASC
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var c schema.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownTable, table)
	}
	return columns, nil
}
