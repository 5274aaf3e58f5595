package store

import (
	"fmt"

	"github.com/roach88/pickaxe/internal/queryir"
)

// marshalValue converts a Go value into something SQLite can store.
//
// Compound values (maps and slices) become canonical JSON TEXT so that
// json_extract and json_each can read them and identical documents are
// stored byte for byte identically. Booleans become 1 and 0, matching
// the literals the compiler emits.
func marshalValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, int, int64, float64, []byte:
		return val, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case map[string]any, []any:
		data, err := queryir.MarshalCanonical(val)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
		return string(data), nil
	}
	if queryir.IsScalar(v) {
		return v, nil
	}
	return nil, fmt.Errorf("marshal value: unsupported type %T", v)
}
