package querysql

import (
	"errors"
	"fmt"

	"github.com/roach88/pickaxe/internal/queryir"
)

// CompileError represents a query description the compiler cannot
// render.
//
// Compile errors include:
//   - Unknown operator: an expression node with no rendering rule
//   - Missing scope: a get with neither a base nor an ambient scope
//   - Bad join operator: a join keyword outside queryir.JoinOperators
//   - Bad limit/offset: a negative paging value
//   - Invalid expression: a node that failed to build (see Err)
//   - Bad path: a get key containing a double quote
type CompileError struct {
	// Code identifies the error category.
	Code queryir.ErrorCode

	// Operator is the tag of the offending node, if any.
	Operator string

	// Message is a human-readable description.
	Message string

	// Err is the underlying construction error of invalid expressions.
	Err error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Operator != "" {
		return fmt.Sprintf("%s: %s (operator=%s)", e.Code, e.Message, e.Operator)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the construction error, so errors.Is(err,
// queryir.ErrBadValue) holds for invalid operands.
func (e *CompileError) Unwrap() error { return e.Err }

func errorCode(err error) queryir.ErrorCode {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var de *queryir.DecodeError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsUnknownOperator returns true if the error reports an unknown
// expression tag, at compile or decode time.
func IsUnknownOperator(err error) bool {
	return errorCode(err) == queryir.CodeUnknownOperator
}

// IsMissingScope returns true if the error reports a get without base or
// scope.
func IsMissingScope(err error) bool {
	return errorCode(err) == queryir.CodeMissingScope
}

// IsBadJoinOperator returns true if the error reports an unknown join
// keyword.
func IsBadJoinOperator(err error) bool {
	return errorCode(err) == queryir.CodeBadJoinOperator
}

// IsBadLimit returns true if the error reports an invalid LIMIT.
func IsBadLimit(err error) bool {
	return errorCode(err) == queryir.CodeBadLimit
}

// IsBadOffset returns true if the error reports an invalid OFFSET.
func IsBadOffset(err error) bool {
	return errorCode(err) == queryir.CodeBadOffset
}

// IsInvalidExpression returns true if the error reports an expression
// that failed to build.
func IsInvalidExpression(err error) bool {
	return errorCode(err) == queryir.CodeInvalidExpression
}

// IsBadPath returns true if the error reports a JSON path key that cannot
// be rendered.
func IsBadPath(err error) bool {
	return errorCode(err) == queryir.CodeBadPath
}
