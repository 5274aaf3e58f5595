// Package querysql compiles query descriptions to SQLite statements using
// the JSON1 functions.
//
// Compile produces a statement with ? placeholders and the matching
// argument list. CompileInline escapes values into the text instead and
// is used for display. CompileExpr renders a single expression.
//
// RENDERING RULES:
//
//   - get chains fold into one json_extract(base, '$.a.b[0]')
//   - a get without base reads from the query scope
//   - eq / neq render as IS / IS NOT, or = / <> in strict mode
//   - join constraints are always strict
//   - booleans are literals 1 and 0, never parameters
//   - and / or / not of nothing render to nothing, dropping the filter
//   - some(list, cond) renders EXISTS over json_each(list)
//
// Subqueries and CTEs share the parameter buffer of the enclosing
// statement, so argument order always matches placeholder order.
//
// ERRORS:
//
// Failures are *CompileError values carrying a queryir.ErrorCode. The
// IsXxx helpers also match decode errors of the same category.
package querysql
