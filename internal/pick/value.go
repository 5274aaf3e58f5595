package pick

import (
	"github.com/roach88/pickaxe/internal/op"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

// Value is a pick of a scalar of any kind.
type Value struct {
	base
}

func boolOf(e queryir.Expr) Bool { return Bool{Value{base{t: shape.Boolean, e: e}}} }

func numberOf(e queryir.Expr) Number { return Number{Value{base{t: shape.Number, e: e}}} }

func (v Value) Eq(x any) Bool { return boolOf(op.Eq(v.e, x)) }
func (v Value) Neq(x any) Bool { return boolOf(op.Neq(v.e, x)) }
func (v Value) Gt(x any) Bool { return boolOf(op.Gt(v.e, x)) }
func (v Value) Gte(x any) Bool { return boolOf(op.Gte(v.e, x)) }
func (v Value) Lt(x any) Bool { return boolOf(op.Lt(v.e, x)) }
func (v Value) Lte(x any) Bool { return boolOf(op.Lte(v.e, x)) }

// In tests membership in a list of values or picks.
func (v Value) In(list ...any) Bool { return boolOf(op.In(v.e, list...)) }

// Match runs a full-text MATCH.
func (v Value) Match(x any) Bool { return boolOf(op.Match(v.e, x)) }

func (v Value) Asc() Order { return Order{op.Asc(v.e)} }
func (v Value) Desc() Order { return Order{op.Desc(v.e)} }

// As aliases the value in a projection.
func (v Value) As(name string) Value {
	return Value{base{t: v.t, e: op.As(v.e, name)}}
}

// Order is a sort key of ORDER BY or of a group array.
type Order struct {
	e queryir.Expr
}

func (o Order) Expression() queryir.Expr { return o.e }
func (o Order) NullsFirst() Order { return Order{op.NullsFirst(o.e)} }
func (o Order) NullsLast() Order { return Order{op.NullsLast(o.e)} }

// Bool is a pick of a boolean condition.
type Bool struct {
	Value
}

// And conjoins b with further conditions.
func (b Bool) And(conditions ...any) Bool {
	return boolOf(op.And(append([]any{b.e}, conditions...)...))
}

// Or disjoins b with further conditions.
func (b Bool) Or(conditions ...any) Bool {
	return boolOf(op.Or(append([]any{b.e}, conditions...)...))
}

func (b Bool) Not() Bool { return boolOf(op.Not(b.e)) }

// Number is a pick of a numeric value.
type Number struct {
	Value
}

func (n Number) Abs() Number { return numberOf(op.Abs(n.e)) }

func (n Number) Plus(values ...any) Number {
	return numberOf(op.Plus(append([]any{n.e}, values...)...))
}

func (n Number) Minus(values ...any) Number {
	return numberOf(op.Minus(append([]any{n.e}, values...)...))
}

// String is a pick of a string or of a string enumeration.
type String struct {
	Value
}

func (s String) Like(pattern any) Bool { return boolOf(op.Like(s.e, pattern)) }
func (s String) Glob(pattern any) Bool { return boolOf(op.Glob(s.e, pattern)) }

// Length is the number of characters.
func (s String) Length() Number { return numberOf(op.StringLength(s.e)) }

// Substr extracts the substring starting at the 1-based start, bounded by
// an optional length.
func (s String) Substr(start any, length ...any) String {
	return String{Value{base{t: shape.String, e: op.Substr(s.e, start, length...)}}}
}

// Concat appends strings or picks.
func (s String) Concat(values ...any) String {
	return String{Value{base{t: shape.String, e: op.StringConcat(append([]any{s.e}, values...)...)}}}
}

// Option is a pick of a value that may be NULL.
type Option struct {
	Value
}

// Elem returns the type of the wrapped value.
func (o Option) Elem() *shape.Type {
	if o.t.Kind() != shape.KindOption {
		return o.t
	}
	return o.t.Elem()
}

// IfNull replaces NULL with v. The result has the union type of the
// wrapped value and v.
func (o Option) IfNull(v any) Pick {
	return Make(shape.Union(o.Elem(), TypeOf(v)), op.IfNull(o.e, v))
}

// IsNullOr holds when the value is NULL or fn holds for it.
func (o Option) IsNullOr(fn func(v Pick) any) Bool {
	return boolOf(op.Or(op.Eq(o.e, nil), fn(o.UnsafeUnwrap())))
}

// IsNotNullAnd holds when the value is set and fn holds for it.
func (o Option) IsNotNullAnd(fn func(v Pick) any) Bool {
	return boolOf(op.And(op.Neq(o.e, nil), fn(o.UnsafeUnwrap())))
}

// UnsafeUnwrap treats the value as set. Comparisons on the result
// evaluate to NULL for unset values.
func (o Option) UnsafeUnwrap() Pick {
	return Make(o.Elem(), o.e)
}
