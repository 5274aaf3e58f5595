package query

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/querysql"
	"github.com/roach88/pickaxe/internal/shape"
	"github.com/roach88/pickaxe/internal/store"
)

var (
	// ErrNotEntry is returned by ToObject when the projection is not a
	// two-column tuple.
	ErrNotEntry = errors.New("Select result must be a [key,value] entry")

	// ErrMissingCallback is returned by Explain without a callback.
	ErrMissingCallback = errors.New("You must provide a function to receive the report")

	// ErrNoDriver is returned when executing a query built without
	// WithDriver.
	ErrNoDriver = errors.New("no driver configured")
)

// FinalQuery is a complete query description. It compiles and executes
// but can no longer be refined.
type FinalQuery struct {
	driver    store.Driver
	q         *queryir.Query
	starTypes map[string]*shape.Type
}

// Query returns a copy of the query description.
func (f FinalQuery) Query() *queryir.Query { return f.q.Clone() }

// SQL renders the statement with values inlined, for display.
func (f FinalQuery) SQL() (string, error) { return querysql.CompileInline(f.q) }

// Compile renders the statement with ? placeholders and its arguments.
func (f FinalQuery) Compile() (string, []any, error) { return querysql.Compile(f.q) }

// Fingerprint returns the content hash of the query description.
func (f FinalQuery) Fingerprint() (string, error) { return queryir.Fingerprint(f.q) }

// Result is one decoded row. Names are empty for tuple columns.
type Result struct {
	names  []string
	values []any
}

func (r Result) Names() []string { return r.names }
func (r Result) Values() []any   { return r.values }

// Get returns the value of the named column.
func (r Result) Get(name string) (any, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Map returns named columns by name.
func (r Result) Map() map[string]any {
	m := make(map[string]any, len(r.names))
	for i, n := range r.names {
		if n != "" {
			m[n] = r.values[i]
		}
	}
	return m
}

// Scalar returns the first column, the whole result of a Field query.
func (r Result) Scalar() any {
	if len(r.values) == 0 {
		return nil
	}
	return r.values[0]
}

// decoder maps records to results.
type decoder struct {
	positional bool
	names      []string
	mappers    []Mapper
	byName     map[string]*shape.Type
}

func (f FinalQuery) decoder() decoder {
	sel := f.q.Select
	if sel.Star {
		return decoder{byName: f.starTypes}
	}
	d := decoder{
		positional: sel.Positional(),
		names:      make([]string, len(sel.Columns)),
		mappers:    make([]Mapper, len(sel.Columns)),
	}
	for i, c := range sel.Columns {
		d.names[i] = c.Name
		d.mappers[i] = MapperFor(c.Type)
	}
	return d
}

func (d decoder) decode(rec store.Record) (Result, error) {
	values := make([]any, len(rec.Values))
	names := d.names
	if names == nil {
		names = rec.Columns
	}
	for i, v := range rec.Values {
		m := identity
		switch {
		case i < len(d.mappers):
			m = d.mappers[i]
		case d.byName != nil && i < len(rec.Columns):
			m = MapperFor(d.byName[rec.Columns[i]])
		}
		out, err := m(v)
		if err != nil {
			col := fmt.Sprint(i)
			if i < len(names) && names[i] != "" {
				col = names[i]
			}
			return Result{}, fmt.Errorf("column %s: %w", col, err)
		}
		values[i] = out
	}
	return Result{names: names, values: values}, nil
}

// bind compiles q and prepares it on the driver.
func (f FinalQuery) bind(ctx context.Context, q *queryir.Query) (store.Statement, store.BoundStatement, error) {
	if f.driver == nil {
		return nil, nil, ErrNoDriver
	}
	sql, args, err := querysql.Compile(q)
	if err != nil {
		return nil, nil, err
	}
	stmt, err := f.driver.Prepare(ctx, sql)
	if err != nil {
		return nil, nil, err
	}
	return stmt, stmt.Bind(args...).Raw(q.Select.Positional()), nil
}

// Get returns the first row. It returns sql.ErrNoRows when there is none.
func (f FinalQuery) Get(ctx context.Context) (Result, error) {
	stmt, b, err := f.bind(ctx, f.q)
	if err != nil {
		return Result{}, err
	}
	defer stmt.Close()

	rec, err := b.Get(ctx)
	if err != nil {
		return Result{}, err
	}
	return f.decoder().decode(rec)
}

// All returns every row.
func (f FinalQuery) All(ctx context.Context) ([]Result, error) {
	results := []Result{}
	for r, err := range f.Iterate(ctx) {
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Iterate yields rows lazily.
func (f FinalQuery) Iterate(ctx context.Context) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		stmt, b, err := f.bind(ctx, f.q)
		if err != nil {
			yield(Result{}, err)
			return
		}
		defer stmt.Close()

		d := f.decoder()
		for rec, err := range b.Iterate(ctx) {
			if err != nil {
				yield(Result{}, err)
				return
			}
			r, err := d.decode(rec)
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// ToObject runs a two-column tuple query and collects it into a map from
// the first column, formatted as a string, to the second.
func (f FinalQuery) ToObject(ctx context.Context) (map[string]any, error) {
	sel := f.q.Select
	if !sel.Tuple || len(sel.Columns) != 2 {
		return nil, ErrNotEntry
	}
	results, err := f.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(results))
	for _, r := range results {
		out[fmt.Sprint(r.values[0])] = r.values[1]
	}
	return out, nil
}

// Explain runs EXPLAIN QUERY PLAN and passes every report row to fn.
func (f FinalQuery) Explain(ctx context.Context, fn func(row []any)) error {
	if fn == nil {
		return ErrMissingCallback
	}
	q := f.q.Clone()
	q.Explain = true

	stmt, b, err := f.bind(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for rec, err := range b.Raw(true).Iterate(ctx) {
		if err != nil {
			return err
		}
		fn(rec.Values)
	}
	return nil
}

// Describe wraps a query description built elsewhere, such as one decoded
// from a file. rowShape types the columns of SELECT * and may be nil, in
// which case those columns are returned undecoded.
func (b Builder) Describe(q *queryir.Query, rowShape *shape.Type) FinalQuery {
	var star map[string]*shape.Type
	if q.Select.Star && rowShape != nil {
		star = map[string]*shape.Type{}
		for _, p := range rowShape.Properties() {
			star[p.Name] = p.Type
		}
	}
	return FinalQuery{driver: b.driver, q: q.Clone(), starTypes: star}
}
