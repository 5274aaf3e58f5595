package query

import (
	"github.com/roach88/pickaxe/internal/op"
	"github.com/roach88/pickaxe/internal/pick"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

// TableSchema describes where a logical table lives.
//
// A plain schema maps the logical name onto a physical table. A scoped
// schema lets one physical table host several logical row types: Scope
// derives the logical row from the physical one and ScopeCondition is the
// discriminator selecting the rows of this type. The discriminator is
// AND-ed into WHERE for FROM and into the constraint for joins.
type TableSchema struct {
	DB    string
	Table string
	Alias string

	// BaseShape types the physical row handed to Scope and ScopeCondition.
	BaseShape *shape.Type

	Scope          func(base pick.Row) pick.Pick
	ScopeCondition func(base pick.Row) any

	// OnUse is called with the logical name every time the schema is
	// resolved by From or a join.
	OnUse func(name string)
}

// Ref returns the name columns of this table are qualified with.
func (s TableSchema) Ref() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Table
}

func (s TableSchema) source() queryir.Table {
	return queryir.Table{DB: s.DB, Name: s.Table, Alias: s.Alias}
}

// Resolver maps a logical table name and its requested shape to a schema.
type Resolver func(name string, t *shape.Type) TableSchema

// SchemaMap resolves names through m. Names missing from m resolve to the
// physical table of the same name.
func SchemaMap(m map[string]TableSchema) Resolver {
	return func(name string, _ *shape.Type) TableSchema {
		if s, ok := m[name]; ok {
			if s.Table == "" {
				s.Table = name
			}
			return s
		}
		return TableSchema{Table: name}
	}
}

func defaultResolver(name string, _ *shape.Type) TableSchema {
	return TableSchema{Table: name}
}

// EnvelopeScope reads the logical row from a JSON column of the physical
// row, optionally below path.
func EnvelopeScope(column string, path ...string) func(pick.Row) pick.Pick {
	return func(base pick.Row) pick.Pick {
		var e queryir.Expr = op.Field(base.Table(), column)
		if len(path) > 0 {
			segments := make([]queryir.Segment, len(path))
			for i, p := range path {
				segments[i] = queryir.Key(p)
			}
			e = op.Get(e, segments...)
		}
		return pick.Make(shape.Any, e)
	}
}

// Discriminator selects physical rows whose column equals value.
func Discriminator(column string, value any) func(pick.Row) any {
	return func(base pick.Row) any {
		return op.Eq(op.Field(base.Table(), column), value)
	}
}

// useTableSchema builds the row pick of a resolved table and returns the
// discriminator to apply, if any.
func useTableSchema(s TableSchema, name string, t *shape.Type) (pick.Row, queryir.Expr) {
	if s.OnUse != nil {
		s.OnUse(name)
	}
	if t == nil {
		t = shape.Object()
	}
	ref := s.Ref()
	if s.Scope == nil {
		return pick.NewRow(t, ref), nil
	}

	baseShape := s.BaseShape
	if baseShape == nil {
		baseShape = shape.Object()
	}
	base := pick.NewRow(baseShape, ref)

	var cond queryir.Expr
	if s.ScopeCondition != nil {
		cond = queryir.Coerce(s.ScopeCondition(base))
	}
	logical := pick.AsObject(pick.Make(t, s.Scope(base).Expression()))
	return logical.ToRow(ref), cond
}
