package queryir

import (
	"fmt"
)

// ValidationResult contains the lint analysis of a query.
//
// Warnings flag constructs that compile but are easy to get wrong; Errors
// flag constructs the compiler will reject. A query with warnings only is
// still executable.
type ValidationResult struct {
	Warnings []string
	Errors   []error
}

// OK reports whether the query is free of errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate inspects a query description without compiling it.
//
// Rules:
//  1. Invalid nodes (failed operand coercion) are errors
//  2. Unknown join operators and negative paging are errors
//  3. unsafeSql nodes are warnings (inserted verbatim)
//  4. LIMIT or OFFSET without ORDER BY is a warning (unstable paging)
//  5. SELECT * over joined tables is a warning (ambiguous columns)
//
// Validate is a pure function with no side effects.
func Validate(q *Query) ValidationResult {
	v := &validator{}
	v.validateQuery(q, "query")
	return ValidationResult{Warnings: v.warnings, Errors: v.errors}
}

type validator struct {
	warnings []string
	errors   []error
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q *Query, where string) {
	if q == nil {
		v.errors = append(v.errors, fmt.Errorf("%s: nil query", where))
		return
	}
	for _, cte := range q.With {
		v.validateQuery(cte.Query, fmt.Sprintf("%s.with[%s]", where, cte.Name))
	}
	for i, j := range q.Joins {
		if !j.Operator.Valid() {
			v.errors = append(v.errors, fmt.Errorf("%s.joins[%d]: unknown join operator %q", where, i, j.Operator))
		}
	}
	if q.Limit != nil && *q.Limit < 0 {
		v.errors = append(v.errors, fmt.Errorf("%s: negative limit %d", where, *q.Limit))
	}
	if q.Offset != nil && *q.Offset < 0 {
		v.errors = append(v.errors, fmt.Errorf("%s: negative offset %d", where, *q.Offset))
	}
	if (q.Limit != nil || q.Offset != nil) && len(q.OrderBy) == 0 {
		v.addWarning("%s: LIMIT/OFFSET without ORDER BY returns rows in unspecified order", where)
	}
	if q.Select.Star && len(q.Joins) > 0 {
		v.addWarning("%s: SELECT * over %d joined tables may yield ambiguous column names", where, len(q.Joins)+1)
	}

	// CTEs and subqueries are validated as queries of their own.
	top := *q
	top.With = nil
	WalkQuery(&top, func(e Expr) bool {
		switch n := e.(type) {
		case *Invalid:
			v.errors = append(v.errors, fmt.Errorf("%s: %w", where, n.Err))
		case *UnsafeSQL:
			v.addWarning("%s: unsafeSql %q is inserted verbatim", where, n.SQL)
		case *Subquery:
			v.validateQuery(n.Query, where+".subquery")
			return false
		}
		return true
	})
}
