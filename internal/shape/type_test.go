package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOption_Idempotent(t *testing.T) {
	opt := Option(String)
	assert.Same(t, opt, Option(opt))
	assert.Equal(t, KindOption, opt.Kind())
	assert.Same(t, String, opt.Elem())
}

func TestUnion_MergesVariants(t *testing.T) {
	assert.Same(t, Number, Union(Number, Number, nil))

	u := Union(String, Array(Number), Array(Number), Boolean)
	require.Equal(t, KindUnion, u.Kind())
	assert.Len(t, u.Variants(), 3)
	assert.Equal(t, "string | array<number> | boolean", u.String())
}

func TestIsStringLike(t *testing.T) {
	tests := []struct {
		name string
		t    *Type
		want bool
	}{
		{"string", String, true},
		{"string enum", Enum("draft", "done"), true},
		{"mixed enum", Enum("draft", 1), false},
		{"empty enum", Enum(), false},
		{"number", Number, false},
		{"option of string", Option(String), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.IsStringLike())
		})
	}
}

func TestIsCompound(t *testing.T) {
	for _, c := range []*Type{Array(String), Object(), Map(Number), Record(String, Number)} {
		assert.True(t, c.IsCompound(), c.String())
	}
	for _, s := range []*Type{String, Boolean, Option(Array(String)), Literal("x"), Any} {
		assert.False(t, s.IsCompound(), s.String())
	}
}

func TestObject_PickAndOptional(t *testing.T) {
	user := Object(
		P("firstname", String),
		P("age", Number),
		P("nickname", Option(String)),
	)

	picked := user.Pick("age", "unknown", "firstname")
	assert.Equal(t, "{age: number, firstname: string}", picked.String())

	opt := OptionalObject(user)
	for _, p := range opt.Properties() {
		assert.Equal(t, KindOption, p.Type.Kind(), p.Name)
	}
	nickname, ok := opt.Property("nickname")
	require.True(t, ok)
	assert.Equal(t, KindString, nickname.Elem().Kind())

	// the source descriptor is untouched
	age, _ := user.Property("age")
	assert.Same(t, Number, age)
}

func TestEqual(t *testing.T) {
	a := Object(P("tags", Array(String)), P("skills", Record(String, Number)))
	b := Object(P("tags", Array(String)), P("skills", Record(String, Number)))
	assert.True(t, Equal(a, b))

	assert.False(t, Equal(a, Object(P("tags", Array(String)))))
	assert.False(t, Equal(Literal("a"), Literal("b")))
	assert.False(t, Equal(Map(Number), Record(String, Number)))
	assert.True(t, Equal(Enum("a", "b"), Enum("a", "b")))
	assert.False(t, Equal(nil, String))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "record", KindRecord.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
