package store

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
)

// Driver prepares compiled statements. Store is the SQLite
// implementation; tests may substitute their own.
type Driver interface {
	Prepare(ctx context.Context, query string) (Statement, error)
}

// Statement is a prepared statement awaiting its arguments.
type Statement interface {
	// Bind returns the statement bound to args, matching the ?
	// placeholders in order.
	Bind(args ...any) BoundStatement
	Close() error
}

// BoundStatement executes a statement with bound arguments.
type BoundStatement interface {
	// Raw switches to positional mode: records carry values only.
	Raw(raw bool) BoundStatement

	// Get returns the first row, or sql.ErrNoRows.
	Get(ctx context.Context) (Record, error)

	// All returns every row. It never returns a nil slice without error.
	All(ctx context.Context) ([]Record, error)

	// Iterate yields rows lazily. Breaking out of the loop releases the
	// cursor.
	Iterate(ctx context.Context) iter.Seq2[Record, error]
}

// Record is one result row. Columns is nil in raw mode.
type Record struct {
	Columns []string
	Values  []any
}

// Map returns the record as column name to value.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// Prepare implements Driver.
func (s *Store) Prepare(ctx context.Context, query string) (Statement, error) {
	s.log.Debug("prepare statement", "sql", query)
	st, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return &statement{st: st}, nil
}

type statement struct {
	st *sql.Stmt
}

func (s *statement) Bind(args ...any) BoundStatement {
	return &bound{st: s.st, args: args}
}

func (s *statement) Close() error { return s.st.Close() }

type bound struct {
	st   *sql.Stmt
	args []any
	raw  bool
}

func (b *bound) Raw(raw bool) BoundStatement {
	c := *b
	c.raw = raw
	return &c
}

func (b *bound) Get(ctx context.Context) (Record, error) {
	for rec, err := range b.Iterate(ctx) {
		return rec, err
	}
	return Record{}, sql.ErrNoRows
}

func (b *bound) All(ctx context.Context) ([]Record, error) {
	records := []Record{}
	for rec, err := range b.Iterate(ctx) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (b *bound) Iterate(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		rows, err := b.st.QueryContext(ctx, b.args...)
		if err != nil {
			yield(Record{}, fmt.Errorf("query: %w", err))
			return
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			yield(Record{}, fmt.Errorf("columns: %w", err))
			return
		}

		for rows.Next() {
			rec, err := scanRecord(rows, columns, b.raw)
			if !yield(rec, err) || err != nil {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(Record{}, fmt.Errorf("iterate rows: %w", err))
		}
	}
}

func scanRecord(rows *sql.Rows, columns []string, raw bool) (Record, error) {
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return Record{}, fmt.Errorf("scan row: %w", err)
	}
	rec := Record{Values: values}
	if !raw {
		rec.Columns = columns
	}
	return rec, nil
}
