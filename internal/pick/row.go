package pick

import (
	"github.com/roach88/pickaxe/internal/op"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

type rowMode int

const (
	rowRoot    rowMode = iota // columns of the table
	rowNested                 // properties of an expression over the table
	rowAmbient                // properties of the query scope
)

// Row is the per-table entry point of a query: one row of a table or
// join, typed by its object shape.
//
// A root row addresses the columns of the table itself. A scoped table
// yields a nested row whose properties are read from an expression over
// the physical row, and Query.Scope yields an ambient row whose
// properties are read from the query scope.
type Row struct {
	base
	table string
	mode  rowMode
}

// NewRow returns the root row of table, shaped by the object type t.
func NewRow(t *shape.Type, table string) Row {
	return Row{
		base:  invalid(t, queryir.ErrNoExpression),
		table: table,
		mode:  rowRoot,
	}
}

// ScopedRow returns a row whose properties are read from the ambient
// scope of the query.
func ScopedRow(t *shape.Type, table string) Row {
	return Row{
		base:  invalid(t, queryir.ErrNoExpression),
		table: table,
		mode:  rowAmbient,
	}
}

// Table returns the name columns of this row are qualified with.
func (r Row) Table() string { return r.table }

// IsRoot reports whether the row is the unscoped root of its table, in
// which case SELECT * projects exactly its shape.
func (r Row) IsRoot() bool { return r.mode == rowRoot }

// Optional returns the row with every property wrapped in an option, as
// seen through an outer join.
func (r Row) Optional() Row {
	r.t = shape.OptionalObject(r.t)
	return r
}

// Properties returns the property names of the row shape in order.
func (r Row) Properties() []string {
	props := r.t.Properties()
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}

// Get returns the named property.
func (r Row) Get(name string) Pick {
	return property(r.t, name, func() queryir.Expr {
		switch r.mode {
		case rowNested:
			return op.Get(r.e, queryir.Key(name))
		case rowAmbient:
			return op.Get(nil, queryir.Key(name))
		}
		return op.Field(r.table, name)
	})
}

func (r Row) String(name string) String { return AsString(r.Get(name)) }
func (r Row) Number(name string) Number { return AsNumber(r.Get(name)) }
func (r Row) Bool(name string) Bool { return AsBool(r.Get(name)) }
func (r Row) Option(name string) Option { return AsOption(r.Get(name)) }
func (r Row) Array(name string) Array { return AsArray(r.Get(name)) }
func (r Row) Object(name string) Object { return AsObject(r.Get(name)) }
func (r Row) Record(name string) Record { return AsRecord(r.Get(name)) }
func (r Row) Value(name string) Value { return AsValue(r.Get(name)) }
