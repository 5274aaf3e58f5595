package queryir

import (
	"fmt"
	"strconv"
)

// Expr is a node of the expression tree.
//
// This is a sealed interface - only types in this package implement it.
// Backends switch exhaustively over the concrete node types; Operator
// returns the node tag used by the codec and in error messages.
type Expr interface {
	Operator() string
	exprNode() // Marker method - seals interface to this package
}

// Expressioner is implemented by values backed by an expression, such as
// picks. Coercion unwraps them to their expression.
type Expressioner interface {
	Expression() Expr
}

// Segment is one step of a JSON path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key returns an object-key segment.
func Key(name string) Segment { return Segment{Key: name} }

// Index returns an array-index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Value is a literal scalar: string, bool or a Go numeric kind.
type Value struct {
	V any
}

// Null is the SQL NULL literal.
type Null struct{}

// Field references a column, optionally qualified by its table.
type Field struct {
	Table string
	Name  string
}

// As aliases a value.
type As struct {
	Value Expr
	Name  string
}

// Get descends into a JSON value. A nil Value means the ambient scope.
type Get struct {
	Value Expr
	Path  []Segment
}

type Not struct {
	Value Expr
}

type StringConcat struct {
	Values []Expr
}

type StringLength struct {
	Value Expr
}

// Substr extracts part of a string. Length is optional.
type Substr struct {
	Value  Expr
	Start  Expr
	Length Expr
}

type Like struct {
	Value   Expr
	Pattern Expr
}

type Glob struct {
	Value   Expr
	Pattern Expr
}

type Match struct {
	A, B Expr
}

type Eq struct {
	A, B Expr
}

type Neq struct {
	A, B Expr
}

type Gte struct {
	A, B Expr
}

type Gt struct {
	A, B Expr
}

type Lte struct {
	A, B Expr
}

type Lt struct {
	A, B Expr
}

type In struct {
	Value Expr
	List  []Expr
}

type And struct {
	Conditions []Expr
}

type Or struct {
	Conditions []Expr
}

type IfNull struct {
	A, B Expr
}

type If struct {
	Condition Expr
	A, B      Expr
}

// When is one branch of a Case.
type When struct {
	Condition Expr
	Value     Expr
}

type Case struct {
	Whens []When
	Else  Expr
}

type Abs struct {
	Value Expr
}

type Plus struct {
	Values []Expr
}

type Minus struct {
	Values []Expr
}

// Length is the number of elements of a JSON array.
type Length struct {
	List Expr
}

// Includes tests membership of Value in a JSON collection.
type Includes struct {
	List  Expr
	Value Expr
}

// Some is true when Condition holds for at least one element of List.
// Condition refers to the current element through EachValue and EachKey.
type Some struct {
	List      Expr
	Condition Expr
}

// Each iterates a JSON collection as a table.
type Each struct {
	Value Expr
}

type EachValue struct{}

type EachKey struct{}

// Keys collects the keys of a JSON object into a JSON array.
type Keys struct {
	Obj Expr
}

// Values collects the values of a JSON object into a JSON array.
type Values struct {
	Obj Expr
}

type Asc struct {
	Value Expr
}

type Desc struct {
	Value Expr
}

type NullsFirst struct {
	Value Expr
}

type NullsLast struct {
	Value Expr
}

// Count counts rows when Field is nil, otherwise non-null values.
type Count struct {
	Field    Expr
	Distinct bool
}

type Avg struct {
	Field Expr
}

type Max struct {
	Field Expr
}

type Min struct {
	Field Expr
}

type Sum struct {
	Field    Expr
	Distinct bool
}

// GroupArray aggregates values into a JSON array, optionally ordered.
type GroupArray struct {
	Field   Expr
	OrderBy Expr
}

// UnsafeSQL is inserted verbatim into the compiled statement.
type UnsafeSQL struct {
	SQL string
}

// Subquery embeds a complete query description.
type Subquery struct {
	Query *Query
}

// Invalid records an expression that could not be built. Compiling it
// fails with Err.
type Invalid struct {
	Err error
}

func (*Value) Operator() string        { return "value" }
func (*Null) Operator() string         { return "null" }
func (*Field) Operator() string        { return "field" }
func (*As) Operator() string           { return "as" }
func (*Get) Operator() string          { return "get" }
func (*Not) Operator() string          { return "not" }
func (*StringConcat) Operator() string { return "stringConcat" }
func (*StringLength) Operator() string { return "stringLength" }
func (*Substr) Operator() string       { return "substr" }
func (*Like) Operator() string         { return "like" }
func (*Glob) Operator() string         { return "glob" }
func (*Match) Operator() string        { return "match" }
func (*Eq) Operator() string           { return "eq" }
func (*Neq) Operator() string          { return "neq" }
func (*Gte) Operator() string          { return "gte" }
func (*Gt) Operator() string           { return "gt" }
func (*Lte) Operator() string          { return "lte" }
func (*Lt) Operator() string           { return "lt" }
func (*In) Operator() string           { return "in" }
func (*And) Operator() string          { return "and" }
func (*Or) Operator() string           { return "or" }
func (*IfNull) Operator() string       { return "ifNull" }
func (*If) Operator() string           { return "if" }
func (*Case) Operator() string         { return "case" }
func (*Abs) Operator() string          { return "abs" }
func (*Plus) Operator() string         { return "plus" }
func (*Minus) Operator() string        { return "minus" }
func (*Length) Operator() string       { return "length" }
func (*Includes) Operator() string     { return "includes" }
func (*Some) Operator() string         { return "some" }
func (*Each) Operator() string         { return "each" }
func (*EachValue) Operator() string    { return "eachValue" }
func (*EachKey) Operator() string      { return "eachKey" }
func (*Keys) Operator() string         { return "keys" }
func (*Values) Operator() string       { return "values" }
func (*Asc) Operator() string          { return "asc" }
func (*Desc) Operator() string         { return "desc" }
func (*NullsFirst) Operator() string   { return "nullsFirst" }
func (*NullsLast) Operator() string    { return "nullsLast" }
func (*Count) Operator() string        { return "count" }
func (*Avg) Operator() string          { return "avg" }
func (*Max) Operator() string          { return "max" }
func (*Min) Operator() string          { return "min" }
func (*Sum) Operator() string          { return "sum" }
func (*GroupArray) Operator() string   { return "groupArray" }
func (*UnsafeSQL) Operator() string    { return "unsafeSql" }
func (*Subquery) Operator() string     { return "query" }
func (*Invalid) Operator() string      { return "invalid" }

func (*Value) exprNode()        {}
func (*Null) exprNode()         {}
func (*Field) exprNode()        {}
func (*As) exprNode()           {}
func (*Get) exprNode()          {}
func (*Not) exprNode()          {}
func (*StringConcat) exprNode() {}
func (*StringLength) exprNode() {}
func (*Substr) exprNode()       {}
func (*Like) exprNode()         {}
func (*Glob) exprNode()         {}
func (*Match) exprNode()        {}
func (*Eq) exprNode()           {}
func (*Neq) exprNode()          {}
func (*Gte) exprNode()          {}
func (*Gt) exprNode()           {}
func (*Lte) exprNode()          {}
func (*Lt) exprNode()           {}
func (*In) exprNode()           {}
func (*And) exprNode()          {}
func (*Or) exprNode()           {}
func (*IfNull) exprNode()       {}
func (*If) exprNode()           {}
func (*Case) exprNode()         {}
func (*Abs) exprNode()          {}
func (*Plus) exprNode()         {}
func (*Minus) exprNode()        {}
func (*Length) exprNode()       {}
func (*Includes) exprNode()     {}
func (*Some) exprNode()         {}
func (*Each) exprNode()         {}
func (*EachValue) exprNode()    {}
func (*EachKey) exprNode()      {}
func (*Keys) exprNode()         {}
func (*Values) exprNode()       {}
func (*Asc) exprNode()          {}
func (*Desc) exprNode()         {}
func (*NullsFirst) exprNode()   {}
func (*NullsLast) exprNode()    {}
func (*Count) exprNode()        {}
func (*Avg) exprNode()          {}
func (*Max) exprNode()          {}
func (*Min) exprNode()          {}
func (*Sum) exprNode()          {}
func (*GroupArray) exprNode()   {}
func (*UnsafeSQL) exprNode()    {}
func (*Subquery) exprNode()     {}
func (*Invalid) exprNode()      {}

// IsScalar reports whether v can be stored in a Value node.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// Lift coerces v into an expression: nil becomes Null, scalars become
// Value, expressions pass through and Expressioners yield their
// expression. Anything else fails with ErrBadValue.
func Lift(v any) (Expr, error) {
	switch val := v.(type) {
	case nil:
		return &Null{}, nil
	case Expr:
		return val, nil
	case Expressioner:
		return val.Expression(), nil
	}
	if IsScalar(v) {
		return &Value{V: v}, nil
	}
	return nil, fmt.Errorf("%w '%v'", ErrBadValue, v)
}

// Coerce is like Lift but records failures as an Invalid node.
func Coerce(v any) Expr {
	e, err := Lift(v)
	if err != nil {
		return &Invalid{Err: err}
	}
	return e
}
