package querysql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/pickaxe/internal/queryir"
)

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// renderer turns expression trees into SQLite fragments.
//
// Parameters are appended to *args in the order their placeholders
// appear in the fragment. A nil args renders every value inline.
type renderer struct {
	args          *[]any
	scope         queryir.Expr
	useTableNames bool
	strict        bool
}

func (r *renderer) inline() bool { return r.args == nil }

// withScope returns a copy of r resolving ambient gets against scope.
func (r *renderer) withScope(scope queryir.Expr) *renderer {
	c := *r
	c.scope = scope
	return &c
}

func (r *renderer) strictly() *renderer {
	c := *r
	c.strict = true
	return &c
}

// quoteIdent double-quotes name unless it is a plain identifier.
func quoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteString renders s as a SQL string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// literal renders a scalar inline.
func literal(v any) string {
	switch x := v.(type) {
	case string:
		return quoteString(x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// jsonPath renders path in SQLite JSON path syntax. Negative indexes
// count from the end of the array. SQLite has no escape for a double
// quote inside a quoted key, so such keys are rejected.
func jsonPath(path []queryir.Segment) (string, error) {
	var b strings.Builder
	b.WriteString("$")
	for _, s := range path {
		switch {
		case s.IsIndex && s.Index < 0:
			fmt.Fprintf(&b, "[#%d]", s.Index)
		case s.IsIndex:
			fmt.Fprintf(&b, "[%d]", s.Index)
		case plainIdent.MatchString(s.Key):
			b.WriteString("." + s.Key)
		case strings.Contains(s.Key, `"`):
			return "", compileErr(queryir.CodeBadPath, "get", "Bad path key '%s'", s.Key)
		default:
			b.WriteString(`."` + s.Key + `"`)
		}
	}
	return b.String(), nil
}

// extract renders json_extract of s at path.
func extract(s string, path []queryir.Segment) (string, error) {
	p, err := jsonPath(path)
	if err != nil {
		return "", err
	}
	return "json_extract(" + s + ", " + quoteString(p) + ")", nil
}

// squash folds a chain of gets into its innermost base and a single path.
func squash(g *queryir.Get) (queryir.Expr, []queryir.Segment) {
	base, path := g.Value, g.Path
	for {
		inner, ok := base.(*queryir.Get)
		if !ok {
			return base, path
		}
		path = append(append([]queryir.Segment{}, inner.Path...), path...)
		base = inner.Value
	}
}

func compileErr(code queryir.ErrorCode, operator, format string, args ...any) error {
	return &CompileError{Code: code, Operator: operator, Message: fmt.Sprintf(format, args...)}
}

// list renders each expression, dropping empty fragments when skipEmpty is
// set.
func (r *renderer) list(es []queryir.Expr, skipEmpty bool) ([]string, error) {
	out := make([]string, 0, len(es))
	for _, e := range es {
		s, err := r.expr(e)
		if err != nil {
			return nil, err
		}
		if skipEmpty && s == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *renderer) binary(a, b queryir.Expr, operator string) (string, error) {
	sa, err := r.expr(a)
	if err != nil {
		return "", err
	}
	sb, err := r.expr(b)
	if err != nil {
		return "", err
	}
	return sa + " " + operator + " " + sb, nil
}

func (r *renderer) call(fn string, e queryir.Expr) (string, error) {
	s, err := r.expr(e)
	if err != nil {
		return "", err
	}
	return fn + "(" + s + ")", nil
}

func (r *renderer) suffix(e queryir.Expr, keyword string) (string, error) {
	s, err := r.expr(e)
	if err != nil {
		return "", err
	}
	return s + " " + keyword, nil
}

func (r *renderer) join(es []queryir.Expr, sep string) (string, error) {
	parts, err := r.list(es, true)
	if err != nil {
		return "", err
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// conjunction renders AND/OR. A conjunction of nothing renders to
// nothing, so optional conditions can be dropped from the tree.
func (r *renderer) conjunction(es []queryir.Expr, sep string) (string, error) {
	parts, err := r.list(es, true)
	if err != nil || len(parts) == 0 {
		return "", err
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func distinctPrefix(distinct bool) string {
	if distinct {
		return "DISTINCT "
	}
	return ""
}

// expr renders one expression.
func (r *renderer) expr(e queryir.Expr) (string, error) {
	switch n := e.(type) {
	case nil:
		return "", compileErr(queryir.CodeInvalidExpression, "", "missing expression")

	case *queryir.UnsafeSQL:
		return n.SQL, nil

	case *queryir.Value:
		if b, ok := n.V.(bool); ok {
			return literal(b), nil
		}
		if r.inline() {
			return literal(n.V), nil
		}
		*r.args = append(*r.args, n.V)
		return "?", nil

	case *queryir.Null:
		return "NULL", nil

	case *queryir.Field:
		if r.useTableNames && n.Table != "" {
			return n.Table + "." + n.Name, nil
		}
		return n.Name, nil

	case *queryir.As:
		s, err := r.expr(n.Value)
		if err != nil {
			return "", err
		}
		return s + " AS " + quoteIdent(n.Name), nil

	case *queryir.Get:
		base, path := squash(n)
		if base != nil {
			s, err := r.expr(base)
			if err != nil {
				return "", err
			}
			return extract(s, path)
		}
		if r.scope == nil {
			return "", compileErr(queryir.CodeMissingScope, n.Operator(),
				"Missing 'value' or 'scope' for the 'get' operator")
		}
		s, err := r.withScope(nil).expr(r.scope)
		if err != nil {
			return "", err
		}
		return extract(s, path)

	case *queryir.Not:
		s, err := r.expr(n.Value)
		if err != nil || s == "" {
			return "", err
		}
		if rest, ok := strings.CutPrefix(s, "NOT "); ok {
			return rest, nil
		}
		return "NOT " + s, nil

	case *queryir.StringConcat:
		return r.join(n.Values, " || ")

	case *queryir.StringLength:
		return r.call("LENGTH", n.Value)

	case *queryir.Substr:
		parts := []queryir.Expr{n.Value, n.Start}
		if n.Length != nil {
			parts = append(parts, n.Length)
		}
		args, err := r.list(parts, false)
		if err != nil {
			return "", err
		}
		return "SUBSTR(" + strings.Join(args, ", ") + ")", nil

	case *queryir.Like:
		return r.binary(n.Value, n.Pattern, "LIKE")
	case *queryir.Glob:
		return r.binary(n.Value, n.Pattern, "GLOB")
	case *queryir.Match:
		return r.binary(n.A, n.B, "MATCH")

	case *queryir.Eq:
		if r.strict {
			return r.binary(n.A, n.B, "=")
		}
		return r.binary(n.A, n.B, "IS")
	case *queryir.Neq:
		if r.strict {
			return r.binary(n.A, n.B, "<>")
		}
		return r.binary(n.A, n.B, "IS NOT")
	case *queryir.Gte:
		return r.binary(n.A, n.B, ">=")
	case *queryir.Gt:
		return r.binary(n.A, n.B, ">")
	case *queryir.Lte:
		return r.binary(n.A, n.B, "<=")
	case *queryir.Lt:
		return r.binary(n.A, n.B, "<")

	case *queryir.In:
		v, err := r.expr(n.Value)
		if err != nil {
			return "", err
		}
		items, err := r.list(n.List, false)
		if err != nil {
			return "", err
		}
		return v + " IN (" + strings.Join(items, ",") + ")", nil

	case *queryir.And:
		return r.conjunction(n.Conditions, " AND ")
	case *queryir.Or:
		return r.conjunction(n.Conditions, " OR ")

	case *queryir.IfNull:
		args, err := r.list([]queryir.Expr{n.A, n.B}, false)
		if err != nil {
			return "", err
		}
		return "IFNULL(" + strings.Join(args, ",") + ")", nil

	case *queryir.If:
		args, err := r.list([]queryir.Expr{n.Condition, n.A, n.B}, false)
		if err != nil {
			return "", err
		}
		return "IIF(" + strings.Join(args, ",") + ")", nil

	case *queryir.Case:
		return r.caseExpr(n)

	case *queryir.Abs:
		return r.call("ABS", n.Value)
	case *queryir.Plus:
		return r.join(n.Values, " + ")
	case *queryir.Minus:
		return r.join(n.Values, " - ")

	case *queryir.Length:
		return r.call("json_array_length", n.List)

	case *queryir.Includes:
		list, err := r.expr(n.List)
		if err != nil {
			return "", err
		}
		v, err := r.expr(n.Value)
		if err != nil {
			return "", err
		}
		return "EXISTS (SELECT * FROM json_each(" + list + ") WHERE json_each.value = " + v + ")", nil

	case *queryir.Some:
		return r.some(n)

	case *queryir.Each:
		return r.call("json_each", n.Value)
	case *queryir.EachValue:
		return "json_each.value", nil
	case *queryir.EachKey:
		return "json_each.key", nil
	case *queryir.Keys:
		s, err := r.expr(n.Obj)
		if err != nil {
			return "", err
		}
		return "(SELECT json_group_array(json_each.key) FROM json_each(" + s + "))", nil
	case *queryir.Values:
		s, err := r.expr(n.Obj)
		if err != nil {
			return "", err
		}
		return "(SELECT json_group_array(json_each.value) FROM json_each(" + s + "))", nil

	case *queryir.Asc:
		return r.suffix(n.Value, "ASC")
	case *queryir.Desc:
		return r.suffix(n.Value, "DESC")
	case *queryir.NullsFirst:
		return r.suffix(n.Value, "NULLS FIRST")
	case *queryir.NullsLast:
		return r.suffix(n.Value, "NULLS LAST")

	case *queryir.Count:
		if n.Field == nil {
			return "COUNT(*)", nil
		}
		s, err := r.expr(n.Field)
		if err != nil {
			return "", err
		}
		return "COUNT(" + distinctPrefix(n.Distinct) + s + ")", nil
	case *queryir.Sum:
		s, err := r.expr(n.Field)
		if err != nil {
			return "", err
		}
		return "SUM(" + distinctPrefix(n.Distinct) + s + ")", nil
	case *queryir.Avg:
		return r.call("AVG", n.Field)
	case *queryir.Max:
		return r.call("MAX", n.Field)
	case *queryir.Min:
		return r.call("MIN", n.Field)

	case *queryir.GroupArray:
		s, err := r.expr(n.Field)
		if err != nil {
			return "", err
		}
		if n.OrderBy == nil {
			return "json_group_array(" + s + ")", nil
		}
		o, err := r.expr(n.OrderBy)
		if err != nil {
			return "", err
		}
		return "json_group_array(" + s + " ORDER BY " + o + ")", nil

	case *queryir.Subquery:
		c := compiler{args: r.args, scope: r.scope, useTableNames: r.useTableNames, strict: r.strict}
		s, err := c.query(n.Query)
		if err != nil {
			return "", err
		}
		return "(" + s + ")", nil

	case *queryir.Invalid:
		return "", &CompileError{
			Code:     queryir.CodeInvalidExpression,
			Operator: n.Operator(),
			Message:  n.Err.Error(),
			Err:      n.Err,
		}
	}
	return "", compileErr(queryir.CodeUnknownOperator, e.Operator(), "Unknown operator '%s'", e.Operator())
}

// caseExpr drops branches whose condition renders to nothing; with no
// branch left the else value stands alone.
func (r *renderer) caseExpr(n *queryir.Case) (string, error) {
	var whens []string
	for _, w := range n.Whens {
		cond, err := r.expr(w.Condition)
		if err != nil {
			return "", err
		}
		if cond == "" {
			continue
		}
		v, err := r.expr(w.Value)
		if err != nil {
			return "", err
		}
		whens = append(whens, "WHEN ("+cond+") THEN "+v)
	}
	elseSQL, err := r.expr(n.Else)
	if err != nil {
		return "", err
	}
	if len(whens) == 0 {
		return elseSQL, nil
	}
	return "CASE " + strings.Join(whens, " ") + " ELSE " + elseSQL + " END", nil
}

// some renders an EXISTS over the elements of the list. The list is
// rendered first so parameters follow placeholder order; an empty
// condition renders to nothing and discards the list parameters.
func (r *renderer) some(n *queryir.Some) (string, error) {
	mark := 0
	if !r.inline() {
		mark = len(*r.args)
	}
	list, err := r.expr(n.List)
	if err != nil {
		return "", err
	}
	cond, err := r.expr(n.Condition)
	if err != nil {
		return "", err
	}
	if cond == "" {
		if !r.inline() {
			*r.args = (*r.args)[:mark]
		}
		return "", nil
	}
	return "EXISTS (SELECT * FROM json_each(" + list + ") WHERE " + cond + ")", nil
}
