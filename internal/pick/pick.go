package pick

import (
	"errors"
	"fmt"

	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

var (
	// ErrUnknownProperty is recorded when a structured pick is asked for a
	// property its shape does not declare.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrKindMismatch is recorded when a typed accessor is used on a pick
	// of another kind.
	ErrKindMismatch = errors.New("kind mismatch")
)

// Pick pairs a type descriptor with the expression computing the value.
type Pick interface {
	queryir.Expressioner
	Type() *shape.Type
}

// Scalar picks compare by equality and set membership.
type Scalar interface {
	Pick
	Eq(v any) Bool
	Neq(v any) Bool
	In(list ...any) Bool
}

// Ordered picks compare by order and can sort a query.
type Ordered interface {
	Scalar
	Gt(v any) Bool
	Gte(v any) Bool
	Lt(v any) Bool
	Lte(v any) Bool
	Asc() Order
	Desc() Order
}

// Pattern picks match LIKE and GLOB patterns.
type Pattern interface {
	Pick
	Like(pattern any) Bool
	Glob(pattern any) Bool
}

// Sequence picks are JSON arrays.
type Sequence interface {
	Pick
	At(i int) Pick
	Length() Number
	Includes(v any) Bool
	Some(fn func(v Pick) any) Bool
	Every(fn func(v Pick) any) Bool
}

// Mapping picks are JSON objects keyed by arbitrary strings.
type Mapping interface {
	Pick
	Key(k string) Pick
	Keys() Array
	Values() Array
	Includes(v any) Bool
	Some(fn func(v, k Pick) any) Bool
	Every(fn func(v, k Pick) any) Bool
}

// Structured picks expose named properties.
type Structured interface {
	Pick
	Get(name string) Pick
}

var (
	_ Ordered    = Value{}
	_ Ordered    = String{}
	_ Ordered    = Number{}
	_ Pattern    = String{}
	_ Sequence   = Array{}
	_ Mapping    = Record{}
	_ Structured = Object{}
	_ Structured = Row{}
)

type base struct {
	t *shape.Type
	e queryir.Expr
}

// Type returns the type descriptor of the picked value.
func (b base) Type() *shape.Type { return b.t }

// Expression returns the expression computing the picked value.
func (b base) Expression() queryir.Expr { return b.e }

// Make wraps e in the pick variant matching the kind of t.
func Make(t *shape.Type, e queryir.Expr) Pick {
	b := base{t: t, e: e}
	switch {
	case t == nil:
		return Value{base{t: shape.Any, e: e}}
	case t.Kind() == shape.KindArray:
		return Array{b}
	case t.Kind() == shape.KindObject:
		return Object{b}
	case t.Kind() == shape.KindMap, t.Kind() == shape.KindRecord:
		return Record{b}
	case t.Kind() == shape.KindNumber:
		return Number{Value{b}}
	case t.IsStringLike():
		return String{Value{b}}
	case t.Kind() == shape.KindOption:
		return Option{Value{b}}
	case t.Kind() == shape.KindBoolean:
		return Bool{Value{b}}
	}
	return Value{b}
}

// TypeOf returns the type descriptor of an operand: the type of a pick,
// the scalar kind of a Go value, or any.
func TypeOf(v any) *shape.Type {
	switch val := v.(type) {
	case Pick:
		return val.Type()
	case string:
		return shape.String
	case bool:
		return shape.Boolean
	case nil:
		return shape.Option(shape.Any)
	}
	if queryir.IsScalar(v) {
		return shape.Number
	}
	return shape.Any
}

// Lit lifts a Go scalar into a typed pick.
func Lit(v any) Pick {
	return Make(TypeOf(v), queryir.Coerce(v))
}

func invalid(t *shape.Type, err error) base {
	if t == nil {
		t = shape.Any
	}
	return base{t: t, e: &queryir.Invalid{Err: err}}
}

func mismatch(p Pick, kind string) base {
	return invalid(p.Type(), fmt.Errorf("%w: %s is not %s", ErrKindMismatch, p.Type(), kind))
}

// AsValue returns p as a generic scalar pick.
func AsValue(p Pick) Value {
	switch v := p.(type) {
	case Value:
		return v
	case String:
		return v.Value
	case Number:
		return v.Value
	case Bool:
		return v.Value
	case Option:
		return v.Value
	}
	return Value{base{t: p.Type(), e: p.Expression()}}
}

// AsString returns p as a string pick. Picks of another kind yield a
// pick whose expression fails to compile with ErrKindMismatch.
func AsString(p Pick) String {
	if s, ok := p.(String); ok {
		return s
	}
	return String{Value{mismatch(p, "a string")}}
}

// AsNumber returns p as a number pick.
func AsNumber(p Pick) Number {
	if n, ok := p.(Number); ok {
		return n
	}
	return Number{Value{mismatch(p, "a number")}}
}

// AsBool returns p as a boolean pick.
func AsBool(p Pick) Bool {
	if b, ok := p.(Bool); ok {
		return b
	}
	return Bool{Value{mismatch(p, "a boolean")}}
}

// AsOption returns p as an option pick.
func AsOption(p Pick) Option {
	if o, ok := p.(Option); ok {
		return o
	}
	return Option{Value{mismatch(p, "an option")}}
}

// AsArray returns p as an array pick.
func AsArray(p Pick) Array {
	if a, ok := p.(Array); ok {
		return a
	}
	return Array{mismatch(p, "an array")}
}

// AsObject returns p as an object pick.
func AsObject(p Pick) Object {
	if o, ok := p.(Object); ok {
		return o
	}
	return Object{mismatch(p, "an object")}
}

// AsRecord returns p as a record pick.
func AsRecord(p Pick) Record {
	if r, ok := p.(Record); ok {
		return r
	}
	return Record{mismatch(p, "a record")}
}
