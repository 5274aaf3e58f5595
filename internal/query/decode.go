package query

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pickaxe/internal/shape"
)

// Mapper converts a raw column value into the Go value of its type.
type Mapper func(v any) (any, error)

func identity(v any) (any, error) { return v, nil }

// MapperFor returns the decoder of values of type t:
//   - arrays, objects, maps and records are parsed from JSON text
//   - booleans map 1 and 0 to true and false
//   - options decode their value unless it is NULL
//   - everything else is returned unchanged
func MapperFor(t *shape.Type) Mapper {
	m, _ := mapperFor(t)
	return m
}

// mapperFor also reports whether the mapper is the identity, so options
// of plain values stay the identity.
func mapperFor(t *shape.Type) (Mapper, bool) {
	if t == nil {
		return identity, true
	}
	switch {
	case t.Kind() == shape.KindOption:
		sub, isIdentity := mapperFor(t.Elem())
		if isIdentity {
			return identity, true
		}
		return func(v any) (any, error) {
			if v == nil {
				return nil, nil
			}
			return sub(v)
		}, false
	case t.IsCompound():
		return parseJSON, false
	case t.Kind() == shape.KindBoolean:
		return parseBool, false
	}
	return identity, true
}

func parseJSON(v any) (any, error) {
	var data []byte
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		data = []byte(x)
	case []byte:
		data = x
	default:
		return v, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode json column: %w", err)
	}
	return out, nil
}

func parseBool(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		switch x {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	case int:
		switch x {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	}
	return v, nil
}
