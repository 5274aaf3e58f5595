package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pickaxe/internal/op"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/querysql"
)

// seedScores creates a users table whose scores column covers the
// interesting array cases.
func seedScores(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	_, err := s.Exec(ctx, "CREATE TABLE users (id TEXT PRIMARY KEY, scores TEXT)")
	require.NoError(t, err)

	require.NoError(t, s.InsertAll(ctx, "users", []map[string]any{
		{"id": "u1", "scores": []any{5, 7}},
		{"id": "u2", "scores": []any{}},
		{"id": "u3", "scores": nil},
		{"id": "u4", "scores": []any{5, nil}},
		{"id": "u5", "scores": []any{1, 9}},
	}))
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}

// ids runs a query selecting users.id filtered by where.
func ids(t *testing.T, s *Store, where queryir.Expr) []string {
	t.Helper()
	q := &queryir.Query{
		From:    queryir.Table{Name: "users"},
		Select:  queryir.Selection{OneField: true, Columns: []queryir.Column{{Name: "id", Expr: op.Field("users", "id")}}},
		Where:   where,
		OrderBy: []queryir.Expr{op.Asc(op.Field("users", "id"))},
	}
	sql, args, err := querysql.Compile(q)
	require.NoError(t, err)

	ctx := context.Background()
	stmt, err := s.Prepare(ctx, sql)
	require.NoError(t, err)
	defer stmt.Close()

	recs, err := stmt.Bind(args...).Raw(true).All(ctx)
	require.NoError(t, err)

	out := []string{}
	for _, r := range recs {
		out = append(out, text(r.Values[0]))
	}
	return out
}

func TestSQLite_CollectionPredicates(t *testing.T) {
	s := openTestStore(t, DriverPure)
	seedScores(t, s)

	scores := op.Field("users", "scores")
	every := func(cond queryir.Expr) queryir.Expr {
		return op.Not(op.Some(scores, op.Not(cond)))
	}

	t.Run("some", func(t *testing.T) {
		assert.Equal(t, []string{"u1", "u5"}, ids(t, s, op.Some(scores, op.Gt(op.EachValue(), 6))))
	})

	t.Run("every is vacuous on empty and NULL arrays", func(t *testing.T) {
		got := ids(t, s, every(op.Gt(op.EachValue(), 3)))
		assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, got)
	})

	t.Run("NULL elements are not counterexamples", func(t *testing.T) {
		got := ids(t, s, every(op.Lt(op.EachValue(), 6)))
		assert.Equal(t, []string{"u2", "u3", "u4"}, got)
	})

	t.Run("includes", func(t *testing.T) {
		assert.Equal(t, []string{"u1", "u4"}, ids(t, s, op.Includes(scores, 5)))
	})

	t.Run("length", func(t *testing.T) {
		assert.Equal(t, []string{"u2"}, ids(t, s, op.Eq(op.Length(scores), 0)))
		assert.Equal(t, []string{"u3"}, ids(t, s, op.Eq(scores, nil)))
	})

	t.Run("empty filter keeps every row", func(t *testing.T) {
		assert.Len(t, ids(t, s, op.And()), 5)
	})
}

func TestSQLite_NegativeIndex(t *testing.T) {
	s := openTestStore(t, DriverPure)
	seedScores(t, s)

	last := op.Get(op.Field("users", "scores"), queryir.Index(-1))
	assert.Equal(t, []string{"u5"}, ids(t, s, op.Eq(last, 9)))
	assert.Equal(t, []string{"u2", "u3", "u4"}, ids(t, s, op.Eq(last, nil)))
}

func TestSQLite_JSONPaths(t *testing.T) {
	s := openTestStore(t, DriverPure)
	ctx := context.Background()

	_, err := s.Exec(ctx, "CREATE TABLE actions (id TEXT, action TEXT)")
	require.NoError(t, err)
	require.NoError(t, s.InsertAll(ctx, "actions", []map[string]any{
		{"id": "a1", "action": map[string]any{"payload": map[string]any{"state": map[string]any{"age": 30, "active": true}}}},
		{"id": "a2", "action": map[string]any{"payload": map[string]any{"state": map[string]any{"age": 12, "active": false}}}},
	}))

	q := &queryir.Query{
		From:  queryir.Table{Name: "actions"},
		Scope: op.Get(op.Field("actions", "action"), queryir.Key("payload"), queryir.Key("state")),
		Select: queryir.Selection{Columns: []queryir.Column{
			{Name: "id", Expr: op.Field("actions", "id")},
			{Name: "age", Expr: op.Get(nil, queryir.Key("age"))},
		}},
		Where: op.And(
			op.Gt(op.Get(nil, queryir.Key("age")), 18),
			op.Eq(op.Get(nil, queryir.Key("active")), true),
		),
	}
	sql, args, err := querysql.Compile(q)
	require.NoError(t, err)

	stmt, err := s.Prepare(ctx, sql)
	require.NoError(t, err)
	defer stmt.Close()

	rec, err := stmt.Bind(args...).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "age"}, rec.Columns)
	assert.Equal(t, "a1", text(rec.Values[0]))
	assert.EqualValues(t, 30, rec.Values[1])
}
