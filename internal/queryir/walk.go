package queryir

// Children returns the direct sub-expressions of e in rendering order.
// Subquery nodes have no expression children; use WalkQuery to descend
// into them.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *As:
		return []Expr{n.Value}
	case *Get:
		if n.Value == nil {
			return nil
		}
		return []Expr{n.Value}
	case *Not:
		return []Expr{n.Value}
	case *StringConcat:
		return n.Values
	case *StringLength:
		return []Expr{n.Value}
	case *Substr:
		return compact(n.Value, n.Start, n.Length)
	case *Like:
		return []Expr{n.Value, n.Pattern}
	case *Glob:
		return []Expr{n.Value, n.Pattern}
	case *Match:
		return []Expr{n.A, n.B}
	case *Eq:
		return []Expr{n.A, n.B}
	case *Neq:
		return []Expr{n.A, n.B}
	case *Gte:
		return []Expr{n.A, n.B}
	case *Gt:
		return []Expr{n.A, n.B}
	case *Lte:
		return []Expr{n.A, n.B}
	case *Lt:
		return []Expr{n.A, n.B}
	case *In:
		return append([]Expr{n.Value}, n.List...)
	case *And:
		return n.Conditions
	case *Or:
		return n.Conditions
	case *IfNull:
		return []Expr{n.A, n.B}
	case *If:
		return []Expr{n.Condition, n.A, n.B}
	case *Case:
		var out []Expr
		for _, w := range n.Whens {
			out = append(out, w.Condition, w.Value)
		}
		return compact(append(out, n.Else)...)
	case *Abs:
		return []Expr{n.Value}
	case *Plus:
		return n.Values
	case *Minus:
		return n.Values
	case *Length:
		return []Expr{n.List}
	case *Includes:
		return []Expr{n.List, n.Value}
	case *Some:
		return compact(n.List, n.Condition)
	case *Each:
		return []Expr{n.Value}
	case *Keys:
		return []Expr{n.Obj}
	case *Values:
		return []Expr{n.Obj}
	case *Asc:
		return []Expr{n.Value}
	case *Desc:
		return []Expr{n.Value}
	case *NullsFirst:
		return []Expr{n.Value}
	case *NullsLast:
		return []Expr{n.Value}
	case *Count:
		return compact(n.Field)
	case *Avg:
		return []Expr{n.Field}
	case *Max:
		return []Expr{n.Field}
	case *Min:
		return []Expr{n.Field}
	case *Sum:
		return []Expr{n.Field}
	case *GroupArray:
		return compact(n.Field, n.OrderBy)
	}
	return nil
}

func compact(exprs ...Expr) []Expr {
	out := exprs[:0:0]
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Walk calls fn for e and every expression below it, depth first,
// including the expressions of embedded subqueries. Returning false from
// fn skips the children of that node.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	if sq, ok := e.(*Subquery); ok && sq.Query != nil {
		WalkQuery(sq.Query, fn)
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// WalkQuery calls Walk for every expression held by q, in the order the
// compiler renders them.
func WalkQuery(q *Query, fn func(Expr) bool) {
	for _, cte := range q.With {
		if cte.Query != nil {
			WalkQuery(cte.Query, fn)
		}
	}
	for _, c := range q.Select.Columns {
		Walk(c.Expr, fn)
	}
	Walk(q.From.Source, fn)
	Walk(q.Scope, fn)
	for _, j := range q.Joins {
		Walk(j.Table.Source, fn)
		Walk(j.Constraint, fn)
	}
	Walk(q.Where, fn)
	for _, e := range q.OrderBy {
		Walk(e, fn)
	}
	for _, e := range q.GroupBy {
		Walk(e, fn)
	}
}
