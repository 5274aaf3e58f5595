package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/pickaxe/internal/shape"
)

// insertStatement builds the INSERT of one row. Columns are written in
// sorted order so the statement text is deterministic.
func insertStatement(table string, row map[string]any) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, fmt.Errorf("empty row")
	}

	columns := slices.Sorted(maps.Keys(row))
	quoted := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		v, err := marshalValue(row[c])
		if err != nil {
			return "", nil, fmt.Errorf("column %s: %w", c, err)
		}
		quoted[i] = quoteIdent(c)
		args[i] = v
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)
	return query, args, nil
}

// Insert writes one row into table. Compound values are stored as
// canonical JSON.
//
// The table must exist. Insert does not create or migrate schemas.
func (s *Store) Insert(ctx context.Context, table string, row map[string]any) error {
	query, args, err := insertStatement(table, row)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	if _, err := s.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// InsertAll writes rows in a single transaction. Nothing is written if
// any row fails.
func (s *Store) InsertAll(ctx context.Context, table string, rows []map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i, row := range rows {
		query, args, err := insertStatement(table, row)
		if err != nil {
			return fmt.Errorf("insert into %s: row %d: %w", table, i, err)
		}
		s.log.Debug("exec statement", "sql", query, "args", len(args))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert into %s: row %d: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Column declares one column of CreateTable.
type Column struct {
	Name       string
	Affinity   string
	PrimaryKey bool
}

// AffinityOf returns the SQLite column affinity storing values of t.
// Compound values are stored as JSON text and booleans as 0 or 1.
func AffinityOf(t *shape.Type) string {
	if t == nil {
		return ""
	}
	switch t.Kind() {
	case shape.KindOption:
		return AffinityOf(t.Elem())
	case shape.KindNumber:
		return "NUMERIC"
	case shape.KindBoolean:
		return "INTEGER"
	case shape.KindAny, shape.KindUnion:
		return ""
	}
	return "TEXT"
}

// CreateTable creates table with columns unless it already exists.
func (s *Store) CreateTable(ctx context.Context, table string, columns []Column) error {
	if len(columns) == 0 {
		return fmt.Errorf("create table %s: no columns", table)
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		def := quoteIdent(c.Name)
		if c.Affinity != "" {
			def += " " + c.Affinity
		}
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		defs[i] = def
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := s.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
