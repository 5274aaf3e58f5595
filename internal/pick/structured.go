package pick

import (
	"fmt"

	"github.com/roach88/pickaxe/internal/op"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

// property builds the pick of a named property of the object type t,
// computed by at.
func property(t *shape.Type, name string, at func() queryir.Expr) Pick {
	pt, ok := t.Property(name)
	if !ok {
		return Value{invalid(shape.Any, fmt.Errorf("%w %q of %s", ErrUnknownProperty, name, t))}
	}
	return Make(pt, at())
}

// Object is a pick of a JSON object with declared properties.
type Object struct {
	base
}

// Get returns the named property. Access always emits a get node; the
// compiler folds chains of them into one JSON path.
func (o Object) Get(name string) Pick {
	return property(o.t, name, func() queryir.Expr {
		return op.Get(o.e, queryir.Key(name))
	})
}

func (o Object) String(name string) String { return AsString(o.Get(name)) }
func (o Object) Number(name string) Number { return AsNumber(o.Get(name)) }
func (o Object) Bool(name string) Bool { return AsBool(o.Get(name)) }
func (o Object) Option(name string) Option { return AsOption(o.Get(name)) }
func (o Object) Array(name string) Array { return AsArray(o.Get(name)) }
func (o Object) Object(name string) Object { return AsObject(o.Get(name)) }
func (o Object) Record(name string) Record { return AsRecord(o.Get(name)) }
func (o Object) Value(name string) Value { return AsValue(o.Get(name)) }

// Includes tests whether any property value equals v.
func (o Object) Includes(v any) Bool { return boolOf(op.Includes(o.e, v)) }

// ToRow turns the object into a row rooted at its expression, as done for
// the logical row of a scoped table.
func (o Object) ToRow(table string) Row {
	return Row{base: o.base, table: table, mode: rowNested}
}

// Record is a pick of a JSON object keyed by arbitrary keys.
type Record struct {
	base
}

func (r Record) keyType() *shape.Type {
	if k := r.t.Key(); k != nil {
		return k
	}
	return shape.String
}

// Key returns the value stored under k.
func (r Record) Key(k string) Pick {
	return Make(r.t.Elem(), op.Get(r.e, queryir.Key(k)))
}

// Includes tests whether any value of the record equals v.
func (r Record) Includes(v any) Bool { return boolOf(op.Includes(r.e, v)) }

// Keys collects the keys into an array.
func (r Record) Keys() Array {
	return Array{base{t: shape.Array(r.keyType()), e: op.Keys(r.e)}}
}

// Values collects the values into an array.
func (r Record) Values() Array {
	return Array{base{t: shape.Array(r.t.Elem()), e: op.Values(r.e)}}
}

func (r Record) entry() (v, k Pick) {
	return Make(r.t.Elem(), op.EachValue()), Make(r.keyType(), op.EachKey())
}

// Some holds when fn holds for at least one entry.
func (r Record) Some(fn func(v, k Pick) any) Bool {
	return boolOf(op.Some(r.e, fn(r.entry())))
}

// Every holds when fn holds for all entries, vacuously for none. It is
// rendered as NOT some(NOT fn), so entries for which fn is NULL do not
// count as counterexamples.
func (r Record) Every(fn func(v, k Pick) any) Bool {
	return boolOf(op.Not(op.Some(r.e, op.Not(fn(r.entry())))))
}

// Select builds a correlated subquery computing fn over the entries,
// typically an aggregate.
func (r Record) Select(fn func(v, k Pick) any) Pick {
	return selectEach(r.e, fn(r.entry()))
}

// Array is a pick of a JSON array.
type Array struct {
	base
}

func (a Array) elem() *shape.Type { return a.t.Elem() }

// At returns the element at index i.
func (a Array) At(i int) Pick {
	return Make(a.elem(), op.Get(a.e, queryir.Index(i)))
}

// Length is the number of elements.
func (a Array) Length() Number { return numberOf(op.Length(a.e)) }

// Includes tests whether an element equals v.
func (a Array) Includes(v any) Bool { return boolOf(op.Includes(a.e, v)) }

func (a Array) each() Pick { return Make(a.elem(), op.EachValue()) }

// Some holds when fn holds for at least one element.
func (a Array) Some(fn func(v Pick) any) Bool {
	return boolOf(op.Some(a.e, fn(a.each())))
}

// Every holds when fn holds for all elements, vacuously for none.
func (a Array) Every(fn func(v Pick) any) Bool {
	return boolOf(op.Not(op.Some(a.e, op.Not(fn(a.each())))))
}

// Select builds a correlated subquery computing fn over the elements,
// typically an aggregate.
func (a Array) Select(fn func(v Pick) any) Pick {
	return selectEach(a.e, fn(a.each()))
}

func selectEach(collection queryir.Expr, result any) Pick {
	t := TypeOf(result)
	q := &queryir.Query{
		From: queryir.Table{Source: op.Each(collection)},
		Select: queryir.Selection{
			Tuple:   true,
			Columns: []queryir.Column{{Expr: queryir.Coerce(result), Type: t}},
		},
	}
	return Make(t, op.Query(q))
}
