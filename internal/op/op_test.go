package op

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pickaxe/internal/queryir"
)

func TestLift_BadOperandIsInvalid(t *testing.T) {
	e := Eq(Field("", "a"), struct{}{})

	eq, ok := e.(*queryir.Eq)
	require.True(t, ok)
	inv, ok := eq.B.(*queryir.Invalid)
	require.True(t, ok)
	assert.ErrorIs(t, inv.Err, queryir.ErrBadValue)
}

func TestLift_Scalars(t *testing.T) {
	assert.Equal(t, &queryir.Value{V: 3}, Val(3))
	assert.Equal(t, &queryir.Null{}, Val(nil))

	field := Field("users", "age")
	assert.Same(t, field, Not(field).(*queryir.Not).Value)
}

func TestGet_NilBaseUsesScope(t *testing.T) {
	g := Get(nil, queryir.Key("address"), queryir.Index(0)).(*queryir.Get)
	assert.Nil(t, g.Value)
	assert.Equal(t, []queryir.Segment{queryir.Key("address"), queryir.Index(0)}, g.Path)
}

func TestOptionalOperands(t *testing.T) {
	s := Substr("hello", 2).(*queryir.Substr)
	assert.Nil(t, s.Length)
	s = Substr("hello", 2, 3).(*queryir.Substr)
	assert.Equal(t, &queryir.Value{V: 3}, s.Length)

	g := GroupArray(Field("", "name")).(*queryir.GroupArray)
	assert.Nil(t, g.OrderBy)

	c := CountDistinct(Field("", "city")).(*queryir.Count)
	assert.True(t, c.Distinct)
	assert.Nil(t, CountAll().(*queryir.Count).Field)
}
