package queryir

import (
	"slices"

	"github.com/roach88/pickaxe/internal/shape"
)

// Query is the description of a SELECT statement.
//
// It is the interchange format between the builder and the compiler and
// is treated as immutable: builders Clone it instead of mutating a shared
// value. Subqueries and CTEs embed another *Query.
//
// Semantics:
//
//	[WITH <with>] SELECT [DISTINCT] <select> FROM <from> [<joins>]
//	[WHERE <where>] [GROUP BY <groupBy>] [ORDER BY <orderBy>]
//	[LIMIT <limit>] [OFFSET <offset>]
//
// Scope is the ambient expression that Get nodes without a base descend
// into, letting a query be written in terms of a logical sub-shape of a
// wider stored row.
type Query struct {
	Explain  bool
	With     []CTE
	From     Table
	Scope    Expr
	Joins    []Join
	Select   Selection
	Distinct bool
	Where    Expr // single conjunctive root, nil = no filter
	OrderBy  []Expr
	GroupBy  []Expr
	Limit    *int64
	Offset   *int64
}

// CTE is a named query declared in the WITH clause.
type CTE struct {
	Name  string
	Query *Query
}

// Table is a FROM or JOIN source: a stored table, optionally qualified by
// an attached database and aliased, or a table-valued expression such as
// Each or Subquery.
type Table struct {
	DB     string
	Name   string
	Alias  string
	Source Expr
}

// RefName returns the name columns of this table are qualified with: the
// alias if any, else the table name. Expression sources without an alias
// have no reference name.
func (t Table) RefName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// JoinOperator is the SQL keyword sequence of a join.
type JoinOperator string

const (
	Join_            JoinOperator = "join"
	LeftJoin         JoinOperator = "left join"
	RightJoin        JoinOperator = "right join"
	FullJoin         JoinOperator = "full join"
	LeftOuterJoin    JoinOperator = "left outer join"
	RightOuterJoin   JoinOperator = "right outer join"
	FullOuterJoin    JoinOperator = "full outer join"
	InnerJoin        JoinOperator = "inner join"
	CrossJoin        JoinOperator = "cross join"
	NaturalJoin      JoinOperator = "natural join"
	NaturalLeftJoin  JoinOperator = "natural left join"
	NaturalRightJoin JoinOperator = "natural right join"
	NaturalFullJoin  JoinOperator = "natural full join"
	NaturalInnerJoin JoinOperator = "natural inner join"

	NaturalLeftOuterJoin  JoinOperator = "natural left outer join"
	NaturalRightOuterJoin JoinOperator = "natural right outer join"
	NaturalFullOuterJoin  JoinOperator = "natural full outer join"
)

// JoinOperators lists every join keyword sequence the compiler accepts.
var JoinOperators = []JoinOperator{
	Join_, LeftJoin, RightJoin, FullJoin,
	LeftOuterJoin, RightOuterJoin, FullOuterJoin,
	InnerJoin, CrossJoin,
	NaturalJoin, NaturalLeftJoin, NaturalRightJoin, NaturalFullJoin,
	NaturalLeftOuterJoin, NaturalRightOuterJoin, NaturalFullOuterJoin,
	NaturalInnerJoin,
}

// Valid reports whether op is one of JoinOperators.
func (op JoinOperator) Valid() bool {
	return slices.Contains(JoinOperators, op)
}

// Join is one JOIN clause.
type Join struct {
	Operator   JoinOperator
	Table      Table
	Constraint Expr
}

// Column is one named or positional projection. Type drives result
// decoding and may be nil for untyped columns.
type Column struct {
	Name string
	Expr Expr
	Type *shape.Type
}

// Selection is the projection of a query: the wildcard, named columns, or
// a positional tuple. OneField marks a projection of a single named
// column whose rows decode to the bare value.
type Selection struct {
	Star     bool
	Columns  []Column
	Tuple    bool
	OneField bool
}

// Star selects every column.
func Star() Selection { return Selection{Star: true} }

// Positional reports whether rows of this selection are read as tuples.
func (s Selection) Positional() bool { return s.Tuple || s.OneField }

// Clone returns a shallow copy of q whose slices can be appended to
// without affecting q.
func (q *Query) Clone() *Query {
	c := *q
	c.With = slices.Clip(q.With)
	c.Joins = slices.Clip(q.Joins)
	c.OrderBy = slices.Clip(q.OrderBy)
	c.GroupBy = slices.Clip(q.GroupBy)
	c.Select.Columns = slices.Clip(q.Select.Columns)
	return &c
}

// MergeWhere returns the conjunction of current and next. A nil current
// yields next unchanged.
func MergeWhere(current, next Expr) Expr {
	if current == nil {
		return next
	}
	if next == nil {
		return current
	}
	return &And{Conditions: []Expr{current, next}}
}

// Int64 returns a pointer to n, for Limit and Offset.
func Int64(n int64) *int64 { return &n }
