package query

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pickaxe/internal/pick"
	"github.com/roach88/pickaxe/internal/testutil"
)

// seedUsers opens an in-memory database holding three users and returns a
// builder executing against it.
func seedUsers(t *testing.T) Builder {
	t.Helper()
	ctx := context.Background()

	s := testutil.OpenSQLite(t)
	_, err := s.Exec(ctx, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		firstname TEXT,
		lastname TEXT,
		age INTEGER,
		active INTEGER,
		mails TEXT,
		address TEXT,
		skills TEXT
	)`)
	require.NoError(t, err)

	require.NoError(t, s.InsertAll(ctx, "users", []map[string]any{
		{
			"id": "u1", "firstname": "Toto", "lastname": "Tutu", "age": 42, "active": true,
			"mails":   []any{"toto@example.com"},
			"address": map[string]any{"streetName": "Mine road", "townName": "Paris"},
			"skills":  map[string]any{"go": 3, "sql": 2},
		},
		{
			"id": "u2", "firstname": "Tata", "lastname": "Titi", "age": 17, "active": false,
			"mails":   []any{},
			"address": map[string]any{"streetName": "Main street", "townName": "Lyon"},
			"skills":  map[string]any{},
		},
		{
			"id": "u3", "firstname": "Zaza", "lastname": "Zuzu", "age": 30, "active": true,
			"mails":   []any{"z@a.com", "z@example.com"},
			"address": map[string]any{"streetName": "Side road", "townName": "Paris"},
			"skills":  map[string]any{"go": 1},
		},
	}))

	return New(WithDriver(s))
}

func byFirstname(r ...pick.Row) []any {
	return []any{r[0].String("firstname").Asc()}
}

// firstnames runs a Field("firstname") query filtered by where.
func firstnames(t *testing.T, b Builder, where func(r ...pick.Row) any) []any {
	t.Helper()
	results, err := b.From("users", userShape).
		Field("firstname").
		Where(where).
		OrderBy(byFirstname).
		All(context.Background())
	require.NoError(t, err)

	out := []any{}
	for _, r := range results {
		out = append(out, r.Scalar())
	}
	return out
}

func TestExec_DecodesColumns(t *testing.T) {
	b := seedUsers(t)
	ctx := context.Background()

	results, err := b.From("users", userShape).
		Fields("firstname", "mails", "active").
		Where(func(r ...pick.Row) any { return r[0].Number("age").Gt(18) }).
		OrderBy(byFirstname).
		All(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, map[string]any{
		"firstname": "Toto",
		"mails":     []any{"toto@example.com"},
		"active":    true,
	}, results[0].Map())
	assert.Equal(t, []any{"Zaza", []any{"z@a.com", "z@example.com"}, true}, results[1].Values())
}

func TestExec_OffsetWithoutLimit(t *testing.T) {
	b := seedUsers(t)

	results, err := b.From("users", userShape).
		Field("firstname").
		OrderBy(byFirstname).
		Offset(1).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Toto", results[0].Scalar())
	assert.Equal(t, "Zaza", results[1].Scalar())
}

func TestExec_NilWhereKeepsRows(t *testing.T) {
	b := seedUsers(t)
	assert.Equal(t, []any{"Tata", "Toto", "Zaza"}, firstnames(t, b, func(r ...pick.Row) any { return nil }))
}

func TestExec_Get(t *testing.T) {
	b := seedUsers(t)
	ctx := context.Background()

	t.Run("field", func(t *testing.T) {
		r, err := b.From("users", userShape).
			Field("active").
			Where(func(r ...pick.Row) any { return r[0].String("id").Eq("u2") }).
			Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, false, r.Scalar())
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := b.From("users", userShape).
			Field("firstname").
			Where(func(r ...pick.Row) any { return r[0].String("id").Eq("nobody") }).
			Get(ctx)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("select all", func(t *testing.T) {
		r, err := b.From("users", userShape).
			SelectAll().
			Where(func(r ...pick.Row) any { return r[0].String("id").Eq("u1") }).
			Get(ctx)
		require.NoError(t, err)

		m := r.Map()
		assert.Equal(t, true, m["active"])
		assert.Equal(t, int64(42), m["age"])
		assert.Equal(t, map[string]any{"streetName": "Mine road", "townName": "Paris"}, m["address"])
		assert.Equal(t, map[string]any{"go": float64(3), "sql": float64(2)}, m["skills"])
	})
}

func TestExec_Predicates(t *testing.T) {
	b := seedUsers(t)

	tests := []struct {
		name  string
		where func(r ...pick.Row) any
		want  []any
	}{
		{
			name: "some mail matches",
			where: func(r ...pick.Row) any {
				return r[0].Array("mails").Some(func(m pick.Pick) any {
					return pick.AsString(m).Like("%@example.com")
				})
			},
			want: []any{"Toto", "Zaza"},
		},
		{
			name: "every mail matches",
			where: func(r ...pick.Row) any {
				return r[0].Array("mails").Every(func(m pick.Pick) any {
					return pick.AsString(m).Like("%@example.com")
				})
			},
			want: []any{"Tata", "Toto"},
		},
		{
			name:  "includes",
			where: func(r ...pick.Row) any { return r[0].Array("mails").Includes("z@a.com") },
			want:  []any{"Zaza"},
		},
		{
			name:  "nested property",
			where: func(r ...pick.Row) any { return r[0].Object("address").String("townName").Eq("Paris") },
			want:  []any{"Toto", "Zaza"},
		},
		{
			name:  "boolean",
			where: func(r ...pick.Row) any { return r[0].Bool("active").Eq(false) },
			want:  []any{"Tata"},
		},
		{
			name:  "level set has value",
			where: func(r ...pick.Row) any { return pick.LevelSetHasValue(r[0].Record("skills"), "go", 2) },
			want:  []any{"Toto"},
		},
		{
			name: "level set is subset",
			where: func(r ...pick.Row) any {
				return pick.LevelSetIsSubsetOf(r[0].Record("skills"), pick.LevelSet{"go": 2})
			},
			want: []any{"Tata", "Zaza"},
		},
		{
			name:  "level set is empty",
			where: func(r ...pick.Row) any { return pick.LevelSetIsEmpty(r[0].Record("skills")) },
			want:  []any{"Tata"},
		},
		{
			name:  "empty or",
			where: func(r ...pick.Row) any { return pick.Or() },
			want:  []any{"Tata", "Toto", "Zaza"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstnames(t, b, tt.where))
		})
	}
}

func TestExec_Aggregates(t *testing.T) {
	b := seedUsers(t)

	town := func(r ...pick.Row) pick.String { return r[0].Object("address").String("townName") }
	results, err := b.From("users", userShape).
		Select(func(r ...pick.Row) []Column {
			return []Column{
				Col("town", town(r...)),
				Col("n", pick.CountAll()),
				Col("names", pick.GroupArray(r[0].String("firstname"), r[0].String("firstname").Asc())),
			}
		}).
		GroupBy(func(r ...pick.Row) []any { return []any{town(r...)} }).
		OrderBy(func(r ...pick.Row) []any { return []any{town(r...).Asc()} }).
		All(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []any{"Lyon", int64(1), []any{"Tata"}}, results[0].Values())
	assert.Equal(t, []any{"Paris", int64(2), []any{"Toto", "Zaza"}}, results[1].Values())
}

func TestExec_ToObject(t *testing.T) {
	b := seedUsers(t)
	ctx := context.Background()

	m, err := b.From("users", userShape).
		SelectTuple(func(r ...pick.Row) []any { return []any{r[0].String("firstname"), r[0].Number("age")} }).
		ToObject(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Toto": int64(42), "Tata": int64(17), "Zaza": int64(30)}, m)

	_, err = b.From("users", userShape).Fields("firstname", "age").ToObject(ctx)
	assert.ErrorIs(t, err, ErrNotEntry)
}

func TestExec_Iterate(t *testing.T) {
	b := seedUsers(t)

	var seen []any
	for r, err := range b.From("users", userShape).Field("id").OrderBy(byFirstname).Iterate(context.Background()) {
		require.NoError(t, err)
		seen = append(seen, r.Scalar())
		break
	}
	assert.Equal(t, []any{"u2"}, seen)

	// The connection is released after an early break.
	all, err := b.From("users", userShape).Field("id").All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestExec_Explain(t *testing.T) {
	b := seedUsers(t)
	ctx := context.Background()
	q := b.From("users", userShape).Field("firstname").Where(func(r ...pick.Row) any {
		return r[0].String("id").Eq("u1")
	})

	assert.ErrorIs(t, q.Explain(ctx, nil), ErrMissingCallback)

	var rows [][]any
	require.NoError(t, q.Explain(ctx, func(row []any) { rows = append(rows, row) }))
	assert.NotEmpty(t, rows)
	assert.False(t, q.Query().Explain)
}

func TestExec_NoDriver(t *testing.T) {
	q := New().From("users", userShape).Field("id")
	ctx := context.Background()

	_, err := q.Get(ctx)
	assert.ErrorIs(t, err, ErrNoDriver)
	_, err = q.All(ctx)
	assert.ErrorIs(t, err, ErrNoDriver)
	assert.ErrorIs(t, q.Explain(ctx, func([]any) {}), ErrNoDriver)
}

func TestExec_Describe(t *testing.T) {
	b := seedUsers(t)
	built := b.From("users", userShape).SelectAll().
		Where(func(r ...pick.Row) any { return r[0].String("id").Eq("u3") })

	r, err := b.Describe(built.Query(), userShape).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []any{"z@a.com", "z@example.com"}, r.Map()["mails"])

	r, err = b.Describe(built.Query(), nil).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `["z@a.com","z@example.com"]`, r.Map()["mails"])
}
