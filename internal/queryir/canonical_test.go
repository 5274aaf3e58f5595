package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"null", nil, "null"},
		{"string", "hello", `"hello"`},
		{"int", 42, "42"},
		{"int64", int64(-100), "-100"},
		{"integral float", float64(42), "42"},
		{"fraction", 2.5, "2.5"},
		{"small float", 0.0000001, "1e-7"},
		{"bool", true, "true"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"nested", map[string]any{"b": []any{1, "x"}, "a": nil}, `{"a":null,"b":[1,"x"]}`},
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"control chars", "a\nb\x01", `"a\nb\u0001"`},
		{"line separator stays literal", "a\u2028b", "\"a\u2028b\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "é" as e + combining acute accent normalizes to the precomposed form.
	decomposed := "e\u0301"
	result, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as a surrogate pair (0xD83D...) which sorts before
	// U+FF5E in UTF-16 but after it in UTF-8.
	obj := map[string]any{"\uff5e": 1, "\U0001F600": 2}
	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uff5e\":1}", string(result))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	assert.Error(t, err)
}

func TestFingerprint_Stable(t *testing.T) {
	a, err := Fingerprint(sampleQuery())
	require.NoError(t, err)
	b, err := Fingerprint(sampleQuery())
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	other := sampleQuery()
	other.Limit = Int64(11)
	c, err := Fingerprint(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
