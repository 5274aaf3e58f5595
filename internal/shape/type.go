package shape

import (
	"fmt"
	"strings"
)

// Kind discriminates type descriptors.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindDateTime
	KindLiteral
	KindEnumeration
	KindArray
	KindObject
	KindMap
	KindRecord
	KindOption
	KindUnion
)

var kindNames = map[Kind]string{
	KindAny:         "any",
	KindString:      "string",
	KindNumber:      "number",
	KindBoolean:     "boolean",
	KindDateTime:    "datetime",
	KindLiteral:     "literal",
	KindEnumeration: "enumeration",
	KindArray:       "array",
	KindObject:      "object",
	KindMap:         "map",
	KindRecord:      "record",
	KindOption:      "option",
	KindUnion:       "union",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type describes the structure of a value stored in a row.
//
// Types are immutable once built; every constructor returns a new value.
type Type struct {
	kind     Kind
	elem     *Type
	key      *Type
	props    []Property
	values   []any
	variants []*Type
}

// Property is a named member of an object type.
type Property struct {
	Name string
	Type *Type
}

// P is a shorthand for Property.
// Example: Object(P("name", String), P("age", Number))
func P(name string, t *Type) Property {
	return Property{Name: name, Type: t}
}

// Scalar descriptors.
var (
	Any      = &Type{kind: KindAny}
	String   = &Type{kind: KindString}
	Number   = &Type{kind: KindNumber}
	Boolean  = &Type{kind: KindBoolean}
	DateTime = &Type{kind: KindDateTime}
)

// Literal describes a single constant value.
func Literal(v any) *Type {
	return &Type{kind: KindLiteral, values: []any{v}}
}

// Enum describes a closed set of constant values.
func Enum(values ...any) *Type {
	return &Type{kind: KindEnumeration, values: append([]any(nil), values...)}
}

// Array describes a list of elem.
func Array(elem *Type) *Type {
	return &Type{kind: KindArray, elem: elem}
}

// Object describes a structure with ordered named properties.
func Object(props ...Property) *Type {
	return &Type{kind: KindObject, props: append([]Property(nil), props...)}
}

// Map describes an object keyed by arbitrary strings.
func Map(value *Type) *Type {
	return &Type{kind: KindMap, key: String, elem: value}
}

// Record describes an object with typed keys.
func Record(key, value *Type) *Type {
	return &Type{kind: KindRecord, key: key, elem: value}
}

// Option describes a value that may be null. Option of an option is
// the option itself.
func Option(t *Type) *Type {
	if t.kind == KindOption {
		return t
	}
	return &Type{kind: KindOption, elem: t}
}

// Union describes a value of any of the variants. Identical variants are
// merged and a single remaining variant is returned as is.
func Union(variants ...*Type) *Type {
	var merged []*Type
	for _, v := range variants {
		if v == nil {
			continue
		}
		dup := false
		for _, m := range merged {
			if Equal(m, v) {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, v)
		}
	}
	if len(merged) == 1 {
		return merged[0]
	}
	return &Type{kind: KindUnion, variants: merged}
}

// Kind returns the descriptor kind.
func (t *Type) Kind() Kind { return t.kind }

// Elem returns the element type of arrays, the wrapped type of options
// and the value type of maps and records.
func (t *Type) Elem() *Type { return t.elem }

// Key returns the key type of maps and records.
func (t *Type) Key() *Type { return t.key }

// Properties returns the object properties in declaration order.
func (t *Type) Properties() []Property { return t.props }

// Values returns the constants of literal and enumeration types.
func (t *Type) Values() []any { return t.values }

// Variants returns the members of a union.
func (t *Type) Variants() []*Type { return t.variants }

// Property returns the type of the named object property.
func (t *Type) Property(name string) (*Type, bool) {
	for _, p := range t.props {
		if p.Name == name {
			return p.Type, true
		}
	}
	return nil, false
}

// IsStringLike reports whether values of t are strings: plain strings and
// enumerations made only of strings.
func (t *Type) IsStringLike() bool {
	switch t.kind {
	case KindString:
		return true
	case KindEnumeration:
		if len(t.values) == 0 {
			return false
		}
		for _, v := range t.values {
			if _, ok := v.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// IsCompound reports whether values of t are stored as embedded JSON.
func (t *Type) IsCompound() bool {
	switch t.kind {
	case KindArray, KindObject, KindMap, KindRecord:
		return true
	}
	return false
}

// MapProperties returns a copy of an object type with fn applied to every
// property type.
func (t *Type) MapProperties(fn func(*Type) *Type) *Type {
	props := make([]Property, len(t.props))
	for i, p := range t.props {
		props[i] = Property{Name: p.Name, Type: fn(p.Type)}
	}
	return &Type{kind: KindObject, props: props}
}

// OptionalObject wraps every property of an object type in an option,
// leaving properties that already are options untouched.
func OptionalObject(t *Type) *Type {
	return t.MapProperties(Option)
}

// Pick returns an object type restricted to the named properties.
// Unknown names are ignored.
func (t *Type) Pick(names ...string) *Type {
	var props []Property
	for _, name := range names {
		if pt, ok := t.Property(name); ok {
			props = append(props, Property{Name: name, Type: pt})
		}
	}
	return &Type{kind: KindObject, props: props}
}

// Equal reports whether a and b describe the same structure.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindArray, KindOption:
		return Equal(a.elem, b.elem)
	case KindMap, KindRecord:
		return Equal(a.key, b.key) && Equal(a.elem, b.elem)
	case KindObject:
		if len(a.props) != len(b.props) {
			return false
		}
		for i := range a.props {
			if a.props[i].Name != b.props[i].Name || !Equal(a.props[i].Type, b.props[i].Type) {
				return false
			}
		}
		return true
	case KindLiteral, KindEnumeration:
		if len(a.values) != len(b.values) {
			return false
		}
		for i := range a.values {
			if a.values[i] != b.values[i] {
				return false
			}
		}
		return true
	case KindUnion:
		if len(a.variants) != len(b.variants) {
			return false
		}
		for i := range a.variants {
			if !Equal(a.variants[i], b.variants[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// String renders a compact description, e.g. "array<string>".
func (t *Type) String() string {
	switch t.kind {
	case KindArray:
		return fmt.Sprintf("array<%s>", t.elem)
	case KindOption:
		return fmt.Sprintf("option<%s>", t.elem)
	case KindMap:
		return fmt.Sprintf("map<%s>", t.elem)
	case KindRecord:
		return fmt.Sprintf("record<%s,%s>", t.key, t.elem)
	case KindObject:
		parts := make([]string, len(t.props))
		for i, p := range t.props {
			parts[i] = p.Name + ": " + p.Type.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindLiteral:
		return fmt.Sprintf("literal<%v>", t.values[0])
	case KindEnumeration:
		parts := make([]string, len(t.values))
		for i, v := range t.values {
			parts[i] = fmt.Sprint(v)
		}
		return "enum<" + strings.Join(parts, "|") + ">"
	case KindUnion:
		parts := make([]string, len(t.variants))
		for i, v := range t.variants {
			parts[i] = v.String()
		}
		return strings.Join(parts, " | ")
	}
	return t.kind.String()
}
