package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/querysql"
	"github.com/roach88/repoquery/internal/schema"
)

// ErrUnknownTable is returned for tables that were never created.
var ErrUnknownTable = errors.New("unknown table")

// CreateTable creates a SQL table for a catalog base table and records its
// column types. Views cannot be created; they are expanded by the optimizer.
func (s *Store) CreateTable(ctx context.Context, t schema.Table) error {
	if t.IsView() {
		return fmt.Errorf("create table %s: views are not stored", t.Name)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("create table %s: no columns", t.Name)
	}

	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		typ, err := sqlType(c.Type)
		if err != nil {
			return fmt.Errorf("create table %s: column %s: %w", t.Name, c.Name, err)
		}
		defs[i] = querysql.QuoteIdent(c.Name) + " " + typ
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}
	defer tx.Rollback()

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", querysql.QuoteIdent(t.Name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}
	for i, c := range t.Columns {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rq_columns (table_name, position, column_name, column_type)
			VALUES (?, ?, ?, ?)
		`, t.Name, i, c.Name, c.Type)
		if err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}
	return nil
}

// Insert appends rows to a table. Each row holds one value per column in
// declaration order. Either every row is stored or none is.
func (s *Store) Insert(ctx context.Context, table string, rows ...query.Tuple) error {
	columns, err := s.columns(ctx, table)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = querysql.QuoteIdent(c.Name)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		querysql.QuoteIdent(table),
		strings.Join(names, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	defer prepared.Close()

	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("insert into %s: row %d has %d values, want %d", table, i, len(row), len(columns))
		}
		args := make([]any, len(row))
		for j, v := range row {
			arg, err := toColumn(v, columns[j].Type)
			if err != nil {
				return fmt.Errorf("insert into %s: row %d column %s: %w", table, i, columns[j].Name, err)
			}
			args[j] = arg
		}
		if _, err := prepared.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: row %d: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}
