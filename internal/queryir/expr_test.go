package queryir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backed struct{ e Expr }

func (b backed) Expression() Expr { return b.e }

func TestLift(t *testing.T) {
	field := &Field{Name: "age"}

	tests := []struct {
		name     string
		input    any
		expected Expr
	}{
		{"nil", nil, &Null{}},
		{"string", "Toto", &Value{V: "Toto"}},
		{"int", 42, &Value{V: 42}},
		{"float", 3.5, &Value{V: 3.5}},
		{"bool", true, &Value{V: true}},
		{"expression passes through", field, field},
		{"expressioner unwraps", backed{field}, field},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lift(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLift_BadValue(t *testing.T) {
	_, err := Lift(struct{ X int }{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadValue))
	assert.Contains(t, err.Error(), "Bad value")

	_, err = Lift([]string{"a"})
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestCoerce_RecordsInvalid(t *testing.T) {
	got := Coerce(map[string]int{"a": 1})
	inv, ok := got.(*Invalid)
	require.True(t, ok, "expected *Invalid, got %T", got)
	assert.ErrorIs(t, inv.Err, ErrBadValue)
	assert.Equal(t, "invalid", got.Operator())
}

func TestSegmentString(t *testing.T) {
	assert.Equal(t, "payload", Key("payload").String())
	assert.Equal(t, "3", Index(3).String())
}

func TestMergeWhere(t *testing.T) {
	a := &Eq{A: &Field{Name: "a"}, B: &Value{V: 1}}
	b := &Eq{A: &Field{Name: "b"}, B: &Value{V: 2}}

	assert.Same(t, a, MergeWhere(nil, a))
	assert.Same(t, a, MergeWhere(a, nil))
	assert.Equal(t, &And{Conditions: []Expr{a, b}}, MergeWhere(a, b))
}

func TestCloneDoesNotShareAppends(t *testing.T) {
	q := &Query{From: Table{Name: "users"}, OrderBy: make([]Expr, 0, 4)}
	c1 := q.Clone()
	c2 := q.Clone()
	c1.OrderBy = append(c1.OrderBy, &Asc{Value: &Field{Name: "a"}})
	c2.OrderBy = append(c2.OrderBy, &Desc{Value: &Field{Name: "b"}})

	require.Len(t, c1.OrderBy, 1)
	require.Len(t, c2.OrderBy, 1)
	assert.Equal(t, "asc", c1.OrderBy[0].Operator())
	assert.Equal(t, "desc", c2.OrderBy[0].Operator())
	assert.Empty(t, q.OrderBy)
}

func TestJoinOperatorValid(t *testing.T) {
	assert.Len(t, JoinOperators, 17)
	for _, op := range JoinOperators {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, JoinOperator("outer apply").Valid())
	assert.False(t, JoinOperator("LEFT JOIN").Valid())
}

func TestWalk_VisitsSubqueries(t *testing.T) {
	inner := &Query{
		From:   Table{Source: &Each{Value: &Field{Name: "mails"}}},
		Select: Selection{Tuple: true, Columns: []Column{{Expr: &EachValue{}}}},
		Where:  &Like{Value: &EachValue{}, Pattern: &Value{V: "%@x"}},
	}
	e := &Eq{A: &Subquery{Query: inner}, B: &Null{}}

	var ops []string
	Walk(e, func(x Expr) bool {
		ops = append(ops, x.Operator())
		return true
	})

	assert.Equal(t, []string{"eq", "query", "eachValue", "each", "field", "like", "eachValue", "value", "null"}, ops)
}
