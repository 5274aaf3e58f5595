package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pickaxe/internal/shape"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, nil), mock
}

const selectUsers = "SELECT name, age\nFROM users\nWHERE age > ?"

func TestStatement_Get(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectPrepare(regexp.QuoteMeta(selectUsers)).
		ExpectQuery().
		WithArgs(18).
		WillReturnRows(sqlmock.NewRows([]string{"name", "age"}).
			AddRow("Toto", int64(42)).
			AddRow("Tata", int64(30)))

	stmt, err := s.Prepare(ctx, selectUsers)
	require.NoError(t, err)

	rec, err := stmt.Bind(18).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, rec.Columns)
	assert.Equal(t, []any{"Toto", int64(42)}, rec.Values)
	assert.Equal(t, map[string]any{"name": "Toto", "age": int64(42)}, rec.Map())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatement_GetNoRows(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectPrepare(regexp.QuoteMeta(selectUsers)).
		ExpectQuery().
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"name", "age"}))

	stmt, err := s.Prepare(ctx, selectUsers)
	require.NoError(t, err)

	_, err = stmt.Bind(99).Get(ctx)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStatement_AllRaw(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	prep := mock.ExpectPrepare(regexp.QuoteMeta(selectUsers))
	prep.ExpectQuery().
		WithArgs(18).
		WillReturnRows(sqlmock.NewRows([]string{"name", "age"}).
			AddRow("Toto", int64(42)).
			AddRow("Tata", int64(30)))
	prep.ExpectQuery().
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"name", "age"}))

	stmt, err := s.Prepare(ctx, selectUsers)
	require.NoError(t, err)

	recs, err := stmt.Bind(18).Raw(true).All(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Nil(t, recs[0].Columns)
	assert.Equal(t, []any{"Tata", int64(30)}, recs[1].Values)

	empty, err := stmt.Bind(50).All(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatement_IterateStopsEarly(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"name", "age"}).
		AddRow("a", int64(1)).
		AddRow("b", int64(2)).
		AddRow("c", int64(3))
	mock.ExpectPrepare(regexp.QuoteMeta(selectUsers)).
		ExpectQuery().
		WithArgs(0).
		WillReturnRows(rows).
		RowsWillBeClosed()

	stmt, err := s.Prepare(ctx, selectUsers)
	require.NoError(t, err)

	var names []any
	for rec, err := range stmt.Bind(0).Iterate(ctx) {
		require.NoError(t, err)
		names = append(names, rec.Values[0])
		if len(names) == 2 {
			break
		}
	}
	assert.Equal(t, []any{"a", "b"}, names)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatement_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectPrepare(regexp.QuoteMeta(selectUsers)).
		ExpectQuery().
		WillReturnError(errors.New("disk on fire"))

	stmt, err := s.Prepare(ctx, selectUsers)
	require.NoError(t, err)

	_, err = stmt.Bind(1).All(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestPrepare_Error(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectPrepare("SELEKT").WillReturnError(errors.New("syntax error"))

	_, err := s.Prepare(context.Background(), "SELEKT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prepare")
}

func TestInsert(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users" ("active", "id", "tags") VALUES (?, ?, ?)`)).
		WithArgs(int64(1), "u1", `["a","b"]`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Insert(context.Background(), "users", map[string]any{
		"id":     "u1",
		"active": true,
		"tags":   []any{"a", "b"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_EmptyRow(t *testing.T) {
	s, _ := newMockStore(t)
	err := s.Insert(context.Background(), "users", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty row")
}

func TestInsertAll_RollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users" ("id") VALUES (?)`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users" ("id") VALUES (?)`)).
		WithArgs("u1").
		WillReturnError(errors.New("UNIQUE constraint failed"))
	mock.ExpectRollback()

	err := s.InsertAll(context.Background(), "users", []map[string]any{{"id": "u1"}, {"id": "u1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTable(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "users" ("id" TEXT PRIMARY KEY, "age" NUMERIC, "extra")`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.CreateTable(context.Background(), "users", []Column{
		{Name: "id", Affinity: "TEXT", PrimaryKey: true},
		{Name: "age", Affinity: "NUMERIC"},
		{Name: "extra"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	err = s.CreateTable(context.Background(), "empty", nil)
	assert.ErrorContains(t, err, "no columns")
}

func TestAffinityOf(t *testing.T) {
	tests := []struct {
		t    *shape.Type
		want string
	}{
		{shape.String, "TEXT"},
		{shape.Number, "NUMERIC"},
		{shape.Boolean, "INTEGER"},
		{shape.Option(shape.Boolean), "INTEGER"},
		{shape.Array(shape.Number), "TEXT"},
		{shape.Object(shape.P("a", shape.String)), "TEXT"},
		{shape.Enum("a", "b"), "TEXT"},
		{shape.Any, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AffinityOf(tt.t), "%v", tt.t)
	}
}
