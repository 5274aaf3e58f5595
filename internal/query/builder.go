package query

import (
	"slices"

	"github.com/roach88/pickaxe/internal/pick"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
	"github.com/roach88/pickaxe/internal/store"
)

// Builder is the unbound entry point of a query.
//
// Builders are values: every method returns a new one and the receiver
// stays usable, so a configured builder can be shared.
type Builder struct {
	driver  store.Driver
	resolve Resolver
	with    []queryir.CTE
}

// Option configures a Builder.
type Option func(*Builder)

// WithDriver sets the driver used by Get, All, Iterate and Explain.
func WithDriver(d store.Driver) Option {
	return func(b *Builder) { b.driver = d }
}

// WithSchema resolves logical table names through m.
func WithSchema(m map[string]TableSchema) Option {
	return func(b *Builder) { b.resolve = SchemaMap(m) }
}

// WithResolver resolves logical table names through r.
func WithResolver(r Resolver) Option {
	return func(b *Builder) { b.resolve = r }
}

// New returns a builder. Without a schema every logical name is its own
// physical table.
func New(opts ...Option) Builder {
	b := Builder{resolve: defaultResolver}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Querier is anything holding a query description, such as FinalQuery
// and SelectQuery.
type Querier interface {
	Query() *queryir.Query
}

// With declares a CTE named name whose body is q. Later From and join
// calls can use name as a table.
func (b Builder) With(name string, q Querier) Builder {
	b.with = append(slices.Clip(b.with), queryir.CTE{Name: name, Query: q.Query()})
	return b
}

// From starts a query on the logical table name, whose rows have the
// object shape t.
func (b Builder) From(name string, t *shape.Type) FromQuery {
	s := b.resolve(name, t)
	row, cond := useTableSchema(s, name, t)
	q := &queryir.Query{
		With:  slices.Clone(b.with),
		From:  s.source(),
		Where: cond,
	}
	return FromQuery{b: b, rows: []pick.Row{row}, q: q}
}

// FromQuery is a query with its tables bound but no projection yet.
type FromQuery struct {
	b    Builder
	rows []pick.Row
	q    *queryir.Query
}

// Rows returns the row picks accumulated so far, in join order.
func (f FromQuery) Rows() []pick.Row { return slices.Clone(f.rows) }

func (f FromQuery) next(rows []pick.Row, q *queryir.Query) FromQuery {
	return FromQuery{b: f.b, rows: rows, q: q}
}

// Join appends a join of the logical table name. on receives every row
// including the new one and may be nil. Outer joins wrap the rows that
// may be missing in options.
func (f FromQuery) Join(operator queryir.JoinOperator, name string, t *shape.Type, on func(rows ...pick.Row) any) FromQuery {
	s := f.b.resolve(name, t)
	row, cond := useTableSchema(s, name, t)

	rows := slices.Clone(f.rows)
	switch operator {
	case queryir.LeftJoin, queryir.LeftOuterJoin:
		row = row.Optional()
	case queryir.RightJoin, queryir.RightOuterJoin:
		for i := range rows {
			rows[i] = rows[i].Optional()
		}
	case queryir.FullJoin, queryir.FullOuterJoin:
		for i := range rows {
			rows[i] = rows[i].Optional()
		}
		row = row.Optional()
	}
	rows = append(rows, row)

	var constraint queryir.Expr
	if on != nil {
		constraint = queryir.Coerce(on(rows...))
	}
	constraint = queryir.MergeWhere(constraint, cond)

	q := f.q.Clone()
	q.Joins = append(q.Joins, queryir.Join{
		Operator:   operator,
		Table:      s.source(),
		Constraint: constraint,
	})
	return f.next(rows, q)
}

func (f FromQuery) InnerJoin(name string, t *shape.Type, on func(rows ...pick.Row) any) FromQuery {
	return f.Join(queryir.InnerJoin, name, t, on)
}

// LeftJoin makes every property of the joined row optional.
func (f FromQuery) LeftJoin(name string, t *shape.Type, on func(rows ...pick.Row) any) FromQuery {
	return f.Join(queryir.LeftJoin, name, t, on)
}

// RightJoin makes every property of the previous rows optional.
func (f FromQuery) RightJoin(name string, t *shape.Type, on func(rows ...pick.Row) any) FromQuery {
	return f.Join(queryir.RightJoin, name, t, on)
}

// FullJoin makes every row optional.
func (f FromQuery) FullJoin(name string, t *shape.Type, on func(rows ...pick.Row) any) FromQuery {
	return f.Join(queryir.FullJoin, name, t, on)
}

func (f FromQuery) CrossJoin(name string, t *shape.Type, on func(rows ...pick.Row) any) FromQuery {
	return f.Join(queryir.CrossJoin, name, t, on)
}

// Scope narrows the first row to the object returned by fn. The object
// expression becomes the query scope and the first row reads its
// properties from it.
func (f FromQuery) Scope(fn func(rows ...pick.Row) pick.Object) FromQuery {
	obj := fn(f.rows...)
	rows := slices.Clone(f.rows)
	rows[0] = pick.ScopedRow(obj.Type(), rows[0].Table())

	q := f.q.Clone()
	q.Scope = obj.Expression()
	return f.next(rows, q)
}

// Where AND-s the condition returned by fn into the filter. A nil
// condition leaves the filter unchanged.
func (f FromQuery) Where(fn func(rows ...pick.Row) any) FromQuery {
	cond := fn(f.rows...)
	if cond == nil {
		return f
	}
	q := f.q.Clone()
	q.Where = queryir.MergeWhere(q.Where, queryir.Coerce(cond))
	return f.next(f.rows, q)
}

func (f FromQuery) selected(sel queryir.Selection, star map[string]*shape.Type) SelectQuery {
	q := f.q.Clone()
	q.Select = sel
	return SelectQuery{
		FinalQuery: FinalQuery{driver: f.b.driver, q: q, starTypes: star},
		rows:       f.rows,
	}
}

// Field selects one property of the first row. Rows decode to the bare
// value.
func (f FromQuery) Field(name string) SelectQuery {
	p := f.rows[0].Get(name)
	return f.selected(queryir.Selection{
		OneField: true,
		Columns:  []queryir.Column{{Name: name, Expr: p.Expression(), Type: p.Type()}},
	}, nil)
}

// Fields selects properties of the first row by name.
func (f FromQuery) Fields(names ...string) SelectQuery {
	cols := make([]queryir.Column, len(names))
	for i, name := range names {
		p := f.rows[0].Get(name)
		cols[i] = queryir.Column{Name: name, Expr: p.Expression(), Type: p.Type()}
	}
	return f.selected(queryir.Selection{Columns: cols}, nil)
}

// Column is one named projection of Select.
type Column struct {
	Name  string
	Value any
}

// Col pairs a column name with a pick, expression or literal.
func Col(name string, v any) Column { return Column{Name: name, Value: v} }

func column(name string, v any) queryir.Column {
	return queryir.Column{Name: name, Expr: queryir.Coerce(v), Type: pick.TypeOf(v)}
}

// Select projects named columns computed by fn.
func (f FromQuery) Select(fn func(rows ...pick.Row) []Column) SelectQuery {
	out := fn(f.rows...)
	cols := make([]queryir.Column, len(out))
	for i, c := range out {
		cols[i] = column(c.Name, c.Value)
	}
	return f.selected(queryir.Selection{Columns: cols}, nil)
}

// SelectTuple projects positional columns computed by fn. Rows are read
// in order and ToObject works on two-column tuples.
func (f FromQuery) SelectTuple(fn func(rows ...pick.Row) []any) SelectQuery {
	out := fn(f.rows...)
	cols := make([]queryir.Column, len(out))
	for i, v := range out {
		cols[i] = column("", v)
	}
	return f.selected(queryir.Selection{Tuple: true, Columns: cols}, nil)
}

// SelectAll projects every property of every row. A single unscoped
// root renders *; otherwise each property becomes a column, named
// "<table>.<property>" when several rows are joined.
func (f FromQuery) SelectAll() SelectQuery {
	if len(f.rows) == 1 && f.rows[0].IsRoot() {
		star := map[string]*shape.Type{}
		for _, p := range f.rows[0].Type().Properties() {
			star[p.Name] = p.Type
		}
		return f.selected(queryir.Star(), star)
	}

	var cols []queryir.Column
	for _, r := range f.rows {
		for _, name := range r.Properties() {
			p := r.Get(name)
			colName := name
			if len(f.rows) > 1 {
				colName = r.Table() + "." + name
			}
			cols = append(cols, queryir.Column{Name: colName, Expr: p.Expression(), Type: p.Type()})
		}
	}
	return f.selected(queryir.Selection{Columns: cols}, nil)
}

// SelectQuery is a projected query still accepting filters, ordering and
// paging.
type SelectQuery struct {
	FinalQuery
	rows []pick.Row
}

func (s SelectQuery) with(q *queryir.Query) SelectQuery {
	s.q = q
	return s
}

// Where AND-s the condition returned by fn into the filter. A nil
// condition leaves the filter unchanged.
func (s SelectQuery) Where(fn func(rows ...pick.Row) any) SelectQuery {
	cond := fn(s.rows...)
	if cond == nil {
		return s
	}
	q := s.q.Clone()
	q.Where = queryir.MergeWhere(q.Where, queryir.Coerce(cond))
	return s.with(q)
}

func liftAll(vs []any) []queryir.Expr {
	out := make([]queryir.Expr, len(vs))
	for i, v := range vs {
		out[i] = queryir.Coerce(v)
	}
	return out
}

// OrderBy replaces the sort keys. fn returns picks or orders such as
// row.Number("age").Desc().
func (s SelectQuery) OrderBy(fn func(rows ...pick.Row) []any) SelectQuery {
	q := s.q.Clone()
	q.OrderBy = liftAll(fn(s.rows...))
	return s.with(q)
}

// GroupBy replaces the grouping keys.
func (s SelectQuery) GroupBy(fn func(rows ...pick.Row) []any) SelectQuery {
	q := s.q.Clone()
	q.GroupBy = liftAll(fn(s.rows...))
	return s.with(q)
}

// Limit caps the number of rows. Negative values fail at compile time.
func (s SelectQuery) Limit(n int) SelectQuery {
	q := s.q.Clone()
	q.Limit = queryir.Int64(int64(n))
	return s.with(q)
}

// Offset skips rows. Negative values fail at compile time.
func (s SelectQuery) Offset(n int) SelectQuery {
	q := s.q.Clone()
	q.Offset = queryir.Int64(int64(n))
	return s.with(q)
}

func (s SelectQuery) Distinct() SelectQuery {
	q := s.q.Clone()
	q.Distinct = true
	return s.with(q)
}
