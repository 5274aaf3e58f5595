// Package op builds expression nodes from loosely typed operands.
//
// Every operand goes through queryir.Coerce: nil becomes NULL, Go scalars
// become bound values, expressions pass through and picks contribute
// their backing expression. An operand that cannot be coerced is kept as
// an Invalid node and reported when the expression is compiled, so
// builder chains never panic.
package op

import (
	"github.com/roach88/pickaxe/internal/queryir"
)

func lift(v any) queryir.Expr { return queryir.Coerce(v) }

func liftAll(vs []any) []queryir.Expr {
	out := make([]queryir.Expr, len(vs))
	for i, v := range vs {
		out[i] = lift(v)
	}
	return out
}

// Val wraps a scalar as a bound value.
func Val(v any) queryir.Expr {
	if !queryir.IsScalar(v) {
		return lift(v)
	}
	return &queryir.Value{V: v}
}

func Null() queryir.Expr { return &queryir.Null{} }

// Field references a column. Table may be empty.
func Field(table, name string) queryir.Expr {
	return &queryir.Field{Table: table, Name: name}
}

func As(v any, name string) queryir.Expr {
	return &queryir.As{Value: lift(v), Name: name}
}

// Get descends into a JSON value. A nil v descends into the ambient
// scope of the query.
func Get(v any, path ...queryir.Segment) queryir.Expr {
	var base queryir.Expr
	if v != nil {
		base = lift(v)
	}
	return &queryir.Get{Value: base, Path: path}
}

func Not(v any) queryir.Expr { return &queryir.Not{Value: lift(v)} }

func StringConcat(vs ...any) queryir.Expr {
	return &queryir.StringConcat{Values: liftAll(vs)}
}

func StringLength(v any) queryir.Expr { return &queryir.StringLength{Value: lift(v)} }

// Substr extracts a substring starting at the 1-based start. An optional
// length bounds it.
func Substr(v, start any, length ...any) queryir.Expr {
	n := &queryir.Substr{Value: lift(v), Start: lift(start)}
	if len(length) > 0 {
		n.Length = lift(length[0])
	}
	return n
}

func Like(v, pattern any) queryir.Expr {
	return &queryir.Like{Value: lift(v), Pattern: lift(pattern)}
}

func Glob(v, pattern any) queryir.Expr {
	return &queryir.Glob{Value: lift(v), Pattern: lift(pattern)}
}

func Match(a, b any) queryir.Expr { return &queryir.Match{A: lift(a), B: lift(b)} }

// Eq compiles to the NULL-safe IS unless the compiler runs in strict mode.
func Eq(a, b any) queryir.Expr { return &queryir.Eq{A: lift(a), B: lift(b)} }

// Neq compiles to IS NOT unless the compiler runs in strict mode.
func Neq(a, b any) queryir.Expr { return &queryir.Neq{A: lift(a), B: lift(b)} }

func Gte(a, b any) queryir.Expr { return &queryir.Gte{A: lift(a), B: lift(b)} }
func Gt(a, b any) queryir.Expr { return &queryir.Gt{A: lift(a), B: lift(b)} }
func Lte(a, b any) queryir.Expr { return &queryir.Lte{A: lift(a), B: lift(b)} }
func Lt(a, b any) queryir.Expr { return &queryir.Lt{A: lift(a), B: lift(b)} }

func In(v any, list ...any) queryir.Expr {
	return &queryir.In{Value: lift(v), List: liftAll(list)}
}

// And conjoins conditions. Conditions rendering to nothing are dropped by
// the compiler; an And of nothing renders to nothing.
func And(conditions ...any) queryir.Expr {
	return &queryir.And{Conditions: liftAll(conditions)}
}

func Or(conditions ...any) queryir.Expr {
	return &queryir.Or{Conditions: liftAll(conditions)}
}

func IfNull(a, b any) queryir.Expr { return &queryir.IfNull{A: lift(a), B: lift(b)} }

func If(condition, a, b any) queryir.Expr {
	return &queryir.If{Condition: lift(condition), A: lift(a), B: lift(b)}
}

// When is one branch of Case.
func When(condition, value any) queryir.When {
	return queryir.When{Condition: lift(condition), Value: lift(value)}
}

func Case(elseValue any, whens ...queryir.When) queryir.Expr {
	return &queryir.Case{Whens: whens, Else: lift(elseValue)}
}

func Abs(v any) queryir.Expr { return &queryir.Abs{Value: lift(v)} }

func Plus(vs ...any) queryir.Expr { return &queryir.Plus{Values: liftAll(vs)} }
func Minus(vs ...any) queryir.Expr { return &queryir.Minus{Values: liftAll(vs)} }

func Length(list any) queryir.Expr { return &queryir.Length{List: lift(list)} }

func Includes(list, v any) queryir.Expr {
	return &queryir.Includes{List: lift(list), Value: lift(v)}
}

// Some holds when condition, written against EachValue and EachKey, holds
// for at least one element of list.
func Some(list, condition any) queryir.Expr {
	return &queryir.Some{List: lift(list), Condition: lift(condition)}
}

func Each(v any) queryir.Expr { return &queryir.Each{Value: lift(v)} }
func EachValue() queryir.Expr { return &queryir.EachValue{} }
func EachKey() queryir.Expr { return &queryir.EachKey{} }
func Keys(obj any) queryir.Expr { return &queryir.Keys{Obj: lift(obj)} }
func Values(obj any) queryir.Expr { return &queryir.Values{Obj: lift(obj)} }

func Asc(v any) queryir.Expr { return &queryir.Asc{Value: lift(v)} }
func Desc(v any) queryir.Expr { return &queryir.Desc{Value: lift(v)} }
func NullsFirst(v any) queryir.Expr { return &queryir.NullsFirst{Value: lift(v)} }
func NullsLast(v any) queryir.Expr { return &queryir.NullsLast{Value: lift(v)} }

// CountAll counts rows.
func CountAll() queryir.Expr { return &queryir.Count{} }

func Count(field any) queryir.Expr { return &queryir.Count{Field: lift(field)} }

func CountDistinct(field any) queryir.Expr {
	return &queryir.Count{Field: lift(field), Distinct: true}
}

func Avg(field any) queryir.Expr { return &queryir.Avg{Field: lift(field)} }
func Max(field any) queryir.Expr { return &queryir.Max{Field: lift(field)} }
func Min(field any) queryir.Expr { return &queryir.Min{Field: lift(field)} }
func Sum(field any) queryir.Expr { return &queryir.Sum{Field: lift(field)} }

func SumDistinct(field any) queryir.Expr {
	return &queryir.Sum{Field: lift(field), Distinct: true}
}

// GroupArray aggregates field into a JSON array, ordered by the optional
// orderBy expression.
func GroupArray(field any, orderBy ...any) queryir.Expr {
	n := &queryir.GroupArray{Field: lift(field)}
	if len(orderBy) > 0 {
		n.OrderBy = lift(orderBy[0])
	}
	return n
}

// UnsafeSQL inserts sql verbatim. Nothing is escaped or bound.
func UnsafeSQL(sql string) queryir.Expr { return &queryir.UnsafeSQL{SQL: sql} }

// Query embeds q as a parenthesized subquery.
func Query(q *queryir.Query) queryir.Expr { return &queryir.Subquery{Query: q} }
