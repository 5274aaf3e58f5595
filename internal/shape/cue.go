package shape

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Named is a shape declared under a name in a CUE file.
type Named struct {
	Name string
	Type *Type
}

// ParseShapes reads every field of a CUE struct as a named object shape,
// in declaration order.
//
//	shapes: {
//		User: {
//			firstname: string
//			age:       number
//			mails: [...string]
//			skills: [string]: number
//			nickname?: string
//		}
//	}
func ParseShapes(v cue.Value) ([]Named, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var shapes []Named
	for iter.Next() {
		t, err := FromCUE(iter.Value())
		if err != nil {
			return nil, err
		}
		if t.Kind() != KindObject {
			return nil, &LoadError{
				Field:   iter.Label(),
				Message: fmt.Sprintf("shape must be a struct, got %s", t),
				Pos:     iter.Value().Pos(),
			}
		}
		shapes = append(shapes, Named{Name: iter.Label(), Type: t})
	}
	return shapes, nil
}

// FromCUE converts a CUE value into a type descriptor.
//
// Optional fields become options, `null | T` becomes option<T>, a
// disjunction of string literals becomes an enumeration, concrete scalars
// become literals and `_` becomes any.
func FromCUE(v cue.Value) (*Type, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if op, args := v.Expr(); op == cue.OrOp && len(args) > 1 {
		return fromDisjunction(v, args)
	}

	switch v.IncompleteKind() {
	case cue.StringKind:
		if v.IsConcrete() {
			s, err := v.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return Literal(s), nil
		}
		return String, nil
	case cue.IntKind:
		if v.IsConcrete() {
			n, err := v.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return Literal(n), nil
		}
		return Number, nil
	case cue.FloatKind, cue.NumberKind:
		if v.IsConcrete() {
			f, err := v.Float64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return Literal(f), nil
		}
		return Number, nil
	case cue.BoolKind:
		if v.IsConcrete() {
			b, err := v.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			return Literal(b), nil
		}
		return Boolean, nil
	case cue.ListKind:
		elem := v.LookupPath(cue.MakePath(cue.AnyIndex))
		if !elem.Exists() {
			return Array(Any), nil
		}
		et, err := FromCUE(elem)
		if err != nil {
			return nil, err
		}
		return Array(et), nil
	case cue.StructKind:
		return fromStruct(v)
	case cue.TopKind:
		return Any, nil
	}

	return nil, &LoadError{
		Field:   "type",
		Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
		Pos:     v.Pos(),
	}
}

func fromStruct(v cue.Value) (*Type, error) {
	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}
	var props []Property
	for iter.Next() {
		pt, err := FromCUE(iter.Value())
		if err != nil {
			return nil, err
		}
		if iter.Selector().ConstraintType() == cue.OptionalConstraint {
			pt = Option(pt)
		}
		props = append(props, P(iter.Label(), pt))
	}

	pattern := v.LookupPath(cue.MakePath(cue.AnyString))
	if len(props) == 0 && pattern.Exists() {
		vt, err := FromCUE(pattern)
		if err != nil {
			return nil, err
		}
		return Map(vt), nil
	}
	return Object(props...), nil
}

func fromDisjunction(v cue.Value, args []cue.Value) (*Type, error) {
	var (
		nullable bool
		strs     []any
		variants []*Type
	)
	allStrings := true
	for _, arg := range args {
		if arg.IncompleteKind() == cue.NullKind {
			nullable = true
			continue
		}
		if arg.IncompleteKind() == cue.StringKind && arg.IsConcrete() {
			s, err := arg.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			strs = append(strs, s)
		} else {
			allStrings = false
		}
		t, err := FromCUE(arg)
		if err != nil {
			return nil, err
		}
		variants = append(variants, t)
	}

	var t *Type
	switch {
	case len(variants) == 0:
		return nil, &LoadError{Field: "type", Message: "disjunction of null only", Pos: v.Pos()}
	case allStrings && len(strs) > 1:
		t = Enum(strs...)
	default:
		t = Union(variants...)
	}
	if nullable {
		t = Option(t)
	}
	return t, nil
}

// LoadError represents a shape loading error with source position.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
