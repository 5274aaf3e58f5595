package shape

import (
	"fmt"
	"sort"
)

// Encode converts a type into a generic tree suitable for JSON or YAML.
//
// Scalars encode as their kind name; compound types as a single-key map:
//
//	"string"
//	{"array": "string"}
//	{"object": [{"name": "age", "type": "number"}]}
//	{"record": ["string", "number"]}
func Encode(t *Type) any {
	switch t.kind {
	case KindAny, KindString, KindNumber, KindBoolean, KindDateTime:
		return t.kind.String()
	case KindLiteral:
		return map[string]any{"literal": t.values[0]}
	case KindEnumeration:
		return map[string]any{"enum": append([]any(nil), t.values...)}
	case KindArray:
		return map[string]any{"array": Encode(t.elem)}
	case KindOption:
		return map[string]any{"option": Encode(t.elem)}
	case KindMap:
		return map[string]any{"map": Encode(t.elem)}
	case KindRecord:
		return map[string]any{"record": []any{Encode(t.key), Encode(t.elem)}}
	case KindObject:
		props := make([]any, len(t.props))
		for i, p := range t.props {
			props[i] = map[string]any{"name": p.Name, "type": Encode(p.Type)}
		}
		return map[string]any{"object": props}
	case KindUnion:
		variants := make([]any, len(t.variants))
		for i, v := range t.variants {
			variants[i] = Encode(v)
		}
		return map[string]any{"union": variants}
	}
	return t.kind.String()
}

// Decode is the inverse of Encode. Objects may also be given as a plain
// map of property name to type, in which case properties are sorted by
// name.
func Decode(v any) (*Type, error) {
	switch val := v.(type) {
	case string:
		switch val {
		case "any":
			return Any, nil
		case "string":
			return String, nil
		case "number":
			return Number, nil
		case "boolean":
			return Boolean, nil
		case "datetime":
			return DateTime, nil
		}
		return nil, fmt.Errorf("unknown type %q", val)
	case map[string]any:
		if len(val) != 1 {
			return nil, fmt.Errorf("type must have exactly one kind key, got %d", len(val))
		}
		for kind, arg := range val {
			return decodeCompound(kind, arg)
		}
	}
	return nil, fmt.Errorf("unsupported type encoding: %T", v)
}

func decodeCompound(kind string, arg any) (*Type, error) {
	switch kind {
	case "literal":
		return Literal(arg), nil
	case "enum":
		list, ok := arg.([]any)
		if !ok {
			return nil, fmt.Errorf("enum values must be a list")
		}
		return Enum(list...), nil
	case "array", "option", "map":
		elem, err := Decode(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		switch kind {
		case "array":
			return Array(elem), nil
		case "option":
			return Option(elem), nil
		}
		return Map(elem), nil
	case "record":
		pair, ok := arg.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("record must be a [key, value] pair")
		}
		key, err := Decode(pair[0])
		if err != nil {
			return nil, fmt.Errorf("record key: %w", err)
		}
		value, err := Decode(pair[1])
		if err != nil {
			return nil, fmt.Errorf("record value: %w", err)
		}
		return Record(key, value), nil
	case "object":
		return decodeObject(arg)
	case "union":
		list, ok := arg.([]any)
		if !ok {
			return nil, fmt.Errorf("union variants must be a list")
		}
		variants := make([]*Type, len(list))
		for i, item := range list {
			t, err := Decode(item)
			if err != nil {
				return nil, fmt.Errorf("union[%d]: %w", i, err)
			}
			variants[i] = t
		}
		return Union(variants...), nil
	}
	return nil, fmt.Errorf("unknown type kind %q", kind)
}

func decodeObject(arg any) (*Type, error) {
	switch props := arg.(type) {
	case []any:
		out := make([]Property, len(props))
		for i, item := range props {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("object property %d must be a map", i)
			}
			name, _ := m["name"].(string)
			if name == "" {
				return nil, fmt.Errorf("object property %d has no name", i)
			}
			t, err := Decode(m["type"])
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			out[i] = P(name, t)
		}
		return Object(out...), nil
	case map[string]any:
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]Property, len(names))
		for i, name := range names {
			t, err := Decode(props[name])
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			out[i] = P(name, t)
		}
		return Object(out...), nil
	}
	return nil, fmt.Errorf("object properties must be a list or a map")
}
