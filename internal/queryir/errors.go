package queryir

import (
	"errors"
	"fmt"
)

var (
	// ErrBadValue is returned when an operand is neither nil, a scalar, an
	// expression nor backed by one.
	ErrBadValue = errors.New("Bad value")

	// ErrNoExpression is returned when a value has no backing expression,
	// such as the root row of an unscoped table.
	ErrNoExpression = errors.New("no backing expression")
)

// ErrorCode categorizes decode and compile errors.
type ErrorCode string

const (
	// CodeUnknownOperator indicates an expression tag with no rendering rule.
	CodeUnknownOperator ErrorCode = "UNKNOWN_OPERATOR"

	// CodeMissingScope indicates a get with neither a base nor an ambient scope.
	CodeMissingScope ErrorCode = "MISSING_SCOPE"

	// CodeBadJoinOperator indicates a join keyword outside JoinOperators.
	CodeBadJoinOperator ErrorCode = "BAD_JOIN_OPERATOR"

	// CodeBadLimit indicates a limit that is not a non-negative integer.
	CodeBadLimit ErrorCode = "BAD_LIMIT"

	// CodeBadOffset indicates an offset that is not a non-negative integer.
	CodeBadOffset ErrorCode = "BAD_OFFSET"

	// CodeInvalidExpression indicates an expression that failed to build.
	CodeInvalidExpression ErrorCode = "INVALID_EXPRESSION"

	// CodeBadPath indicates a JSON path key SQLite cannot address.
	CodeBadPath ErrorCode = "BAD_PATH"
)

// DecodeError represents a malformed query tree.
type DecodeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Path locates the offending node, e.g. "where.conditions[1]".
	Path string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
