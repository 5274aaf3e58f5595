package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/pickaxe/internal/queryir"
)

// Context controls how a standalone expression is compiled.
type Context struct {
	// Scope resolves gets without a base.
	Scope queryir.Expr

	// UseTableNames qualifies fields with their table.
	UseTableNames bool

	// Strict renders eq/neq as = and <> instead of IS and IS NOT.
	Strict bool

	// Inline renders values as escaped literals instead of parameters.
	Inline bool
}

// compiler renders whole queries. Subqueries and CTEs share the parent's
// parameter buffer so placeholders stay in statement order.
type compiler struct {
	args          *[]any
	scope         queryir.Expr
	useTableNames bool
	strict        bool
}

// Compile renders q as one SQLite statement with ? placeholders. The
// returned arguments match the placeholders in order.
//
// Boolean values are always rendered as the literals 1 and 0 so that
// json_extract indexes remain usable.
func Compile(q *queryir.Query) (string, []any, error) {
	args := []any{}
	c := compiler{args: &args}
	sql, err := c.query(q)
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

// CompileInline renders q with every value escaped inline. The result is
// meant for display and debugging, not for untrusted input.
func CompileInline(q *queryir.Query) (string, error) {
	var c compiler
	return c.query(q)
}

// CompileExpr renders a single expression.
func CompileExpr(e queryir.Expr, ctx Context) (string, []any, error) {
	r := &renderer{
		scope:         ctx.Scope,
		useTableNames: ctx.UseTableNames,
		strict:        ctx.Strict,
	}
	var args []any
	if !ctx.Inline {
		args = []any{}
		r.args = &args
	}
	sql, err := r.expr(e)
	if err != nil {
		return "", nil, err
	}
	return sql, args, nil
}

func (c *compiler) query(q *queryir.Query) (string, error) {
	if q == nil {
		return "", compileErr(queryir.CodeInvalidExpression, "query", "missing query")
	}
	scope := q.Scope
	if scope == nil {
		scope = c.scope
	}
	r := &renderer{
		args:          c.args,
		scope:         scope,
		useTableNames: c.useTableNames || len(q.Joins) > 0,
		strict:        c.strict,
	}

	var b strings.Builder
	if q.Explain {
		b.WriteString("EXPLAIN QUERY PLAN ")
	}

	if len(q.With) > 0 {
		ctes := make([]string, len(q.With))
		for i, cte := range q.With {
			sub := compiler{args: c.args, strict: c.strict}
			s, err := sub.query(cte.Query)
			if err != nil {
				return "", fmt.Errorf("with %s: %w", cte.Name, err)
			}
			ctes[i] = quoteIdent(cte.Name) + " AS (" + s + ")"
		}
		b.WriteString("WITH " + strings.Join(ctes, ", ") + "\n")
	}

	cols, err := r.columns(q.Select)
	if err != nil {
		return "", err
	}
	b.WriteString("SELECT ")
	b.WriteString(distinctPrefix(q.Distinct))
	b.WriteString(cols)

	from, err := r.table(q.From)
	if err != nil {
		return "", err
	}
	b.WriteString("\nFROM " + from)

	for _, j := range q.Joins {
		s, err := r.joinClause(j)
		if err != nil {
			return "", err
		}
		b.WriteString("\n" + s)
	}

	if q.Where != nil {
		where, err := r.expr(q.Where)
		if err != nil {
			return "", err
		}
		if where != "" {
			b.WriteString("\nWHERE " + where)
		}
	}

	if len(q.GroupBy) > 0 {
		parts, err := r.list(q.GroupBy, true)
		if err != nil {
			return "", err
		}
		b.WriteString("\nGROUP BY " + strings.Join(parts, ", "))
	}

	if len(q.OrderBy) > 0 {
		parts, err := r.list(q.OrderBy, true)
		if err != nil {
			return "", err
		}
		b.WriteString("\nORDER BY " + strings.Join(parts, ", "))
	}

	if q.Limit != nil {
		if *q.Limit < 0 {
			return "", compileErr(queryir.CodeBadLimit, "", "Bad limit '%d'", *q.Limit)
		}
		fmt.Fprintf(&b, "\nLIMIT %d", *q.Limit)
	}
	if q.Offset != nil {
		// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
		if q.Limit == nil {
			b.WriteString("\nLIMIT -1")
		}
		if *q.Offset < 0 {
			return "", compileErr(queryir.CodeBadOffset, "", "Bad offset '%d'", *q.Offset)
		}
		fmt.Fprintf(&b, "\nOFFSET %d", *q.Offset)
	}

	return b.String(), nil
}

// columns renders the projection. Named columns are aliased unless the
// rendered expression already is the quoted name.
func (r *renderer) columns(sel queryir.Selection) (string, error) {
	if sel.Star {
		return "*", nil
	}
	if len(sel.Columns) == 0 {
		return "", compileErr(queryir.CodeInvalidExpression, "", "empty projection")
	}
	parts := make([]string, len(sel.Columns))
	for i, col := range sel.Columns {
		s, err := r.expr(col.Expr)
		if err != nil {
			return "", fmt.Errorf("column %d: %w", i, err)
		}
		if sel.Tuple || col.Name == "" || s == quoteIdent(col.Name) {
			parts[i] = s
			continue
		}
		parts[i] = s + " AS " + quoteIdent(col.Name)
	}
	return strings.Join(parts, ", "), nil
}

func (r *renderer) table(t queryir.Table) (string, error) {
	if t.Source != nil {
		s, err := r.expr(t.Source)
		if err != nil {
			return "", err
		}
		if t.Alias != "" {
			s += " AS " + quoteIdent(t.Alias)
		}
		return s, nil
	}
	if t.Name == "" {
		return "", compileErr(queryir.CodeInvalidExpression, "", "missing table")
	}
	s := quoteIdent(t.Name)
	if t.DB != "" {
		s = quoteIdent(t.DB) + "." + s
	}
	if t.Alias != "" && t.Alias != t.Name {
		s += " AS " + quoteIdent(t.Alias)
	}
	return s, nil
}

// joinClause renders one JOIN. The constraint is rendered in strict mode.
func (r *renderer) joinClause(j queryir.Join) (string, error) {
	if !j.Operator.Valid() {
		return "", compileErr(queryir.CodeBadJoinOperator, string(j.Operator), "Bad join operator %s", j.Operator)
	}
	table, err := r.table(j.Table)
	if err != nil {
		return "", err
	}
	s := strings.ToUpper(string(j.Operator)) + " " + table
	if j.Constraint == nil {
		return s, nil
	}
	on, err := r.strictly().expr(j.Constraint)
	if err != nil {
		return "", err
	}
	if on == "" {
		return s, nil
	}
	return s + " ON " + on, nil
}
