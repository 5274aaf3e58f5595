package pick

import (
	"github.com/roach88/pickaxe/internal/op"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

// The functions below mirror package op but return typed picks, so the
// result of an operator can be navigated and compared further.

func And(conditions ...any) Bool { return boolOf(op.And(conditions...)) }

func Or(conditions ...any) Bool { return boolOf(op.Or(conditions...)) }

func Not(condition any) Bool { return boolOf(op.Not(condition)) }

// If picks a or b depending on condition. The result has the union type
// of both branches.
func If(condition, a, b any) Pick {
	return Make(shape.Union(TypeOf(a), TypeOf(b)), op.If(condition, a, b))
}

// Branch is one WHEN of Case.
type Branch struct {
	Condition any
	Value     any
}

// When builds a Case branch.
func When(condition, value any) Branch { return Branch{Condition: condition, Value: value} }

// Case evaluates to the value of the first branch whose condition holds,
// else to elseValue. The result has the union type of all values.
func Case(elseValue any, branches ...Branch) Pick {
	types := []*shape.Type{TypeOf(elseValue)}
	whens := make([]queryir.When, len(branches))
	for i, b := range branches {
		types = append(types, TypeOf(b.Value))
		whens[i] = op.When(b.Condition, b.Value)
	}
	return Make(shape.Union(types...), op.Case(elseValue, whens...))
}

// CountAll counts rows.
func CountAll() Number { return numberOf(op.CountAll()) }

// Count counts non-NULL values of field.
func Count(field any) Number { return numberOf(op.Count(field)) }

func CountDistinct(field any) Number { return numberOf(op.CountDistinct(field)) }

func Avg(field any) Number { return numberOf(op.Avg(field)) }

func Sum(field any) Number { return numberOf(op.Sum(field)) }

func SumDistinct(field any) Number { return numberOf(op.SumDistinct(field)) }

// Max keeps the type of field.
func Max(field Pick) Pick { return Make(field.Type(), op.Max(field)) }

// Min keeps the type of field.
func Min(field Pick) Pick { return Make(field.Type(), op.Min(field)) }

// GroupArray aggregates field into an array, optionally ordered.
func GroupArray(field Pick, orderBy ...any) Array {
	return Array{base{t: shape.Array(field.Type()), e: op.GroupArray(field, orderBy...)}}
}

// UnsafeSQL inserts sql verbatim, typed as any.
func UnsafeSQL(sql string) Value {
	return Value{base{t: shape.Any, e: op.UnsafeSQL(sql)}}
}
