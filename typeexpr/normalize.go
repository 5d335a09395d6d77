package typeexpr

import (
	"fmt"
)

// Normalize validates t and returns its canonical form:
// unions are flattened, deduplicated and stripped of Absent; a union of exactly
// true and false becomes Boolean; single-member unions collapse; object fields whose
// type admitted Absent become optional. Absent outside a union is unrepresentable.
func Normalize(t Type) (Type, error) {
	switch x := t.(type) {
	case nil:
		return nil, &UnrepresentableTypeError{What: "missing type"}
	case Boolean, Number, String, Null:
		return t, nil
	case Absent:
		return nil, &UnrepresentableTypeError{What: "undefined outside a union"}
	case Literal:
		lit, err := NewLiteral(x.Value)
		if err != nil {
			return nil, err
		}
		return lit, nil
	case Array:
		item, err := Normalize(x.Item)
		if err != nil {
			return nil, fmt.Errorf("array item: %w", err)
		}
		return Array{Item: item}, nil
	case Dictionary:
		v, err := Normalize(x.Value)
		if err != nil {
			return nil, fmt.Errorf("dictionary value: %w", err)
		}
		return Dictionary{Value: v}, nil
	case Object:
		return normalizeObject(x)
	case Union:
		members, _ := flatten(x.Members, nil)
		return normalizeUnion(members)
	default:
		return nil, &UnrepresentableTypeError{What: fmt.Sprintf("%T", t)}
	}
}

func normalizeObject(o Object) (Type, error) {
	seen := make(map[string]struct{}, len(o.Fields))
	fields := make([]Field, 0, len(o.Fields))
	for _, f := range o.Fields {
		if f.Name == "" {
			return nil, &UnrepresentableTypeError{What: "object member without a name"}
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("object member %q declared twice: %w", f.Name, ErrUnrepresentable)
		}
		seen[f.Name] = struct{}{}
		ft, optional := f.Type, f.Optional
		if u, ok := ft.(Union); ok {
			members, hadAbsent := flatten(u.Members, nil)
			optional = optional || hadAbsent
			ft = Union{Members: members}
		}
		nt, err := Normalize(ft)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", f.Name, err)
		}
		fields = append(fields, Field{Name: f.Name, Type: nt, Optional: optional})
	}
	return Object{Fields: fields}, nil
}

// flatten inlines nested unions and drops Absent, reporting whether one was seen.
func flatten(members []Type, out []Type) ([]Type, bool) {
	var absent bool
	for _, m := range members {
		switch x := m.(type) {
		case Absent:
			absent = true
		case Union:
			var nested bool
			out, nested = flatten(x.Members, out)
			absent = absent || nested
		default:
			out = append(out, m)
		}
	}
	return out, absent
}

func normalizeUnion(members []Type) (Type, error) {
	var out []Type
	for _, m := range members {
		nm, err := Normalize(m)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, o := range out {
			if Equal(o, nm) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, nm)
		}
	}
	switch {
	case len(out) == 0:
		return nil, ErrEmptyUnion
	case len(out) == 1:
		return out[0], nil
	case isBooleanPair(out):
		return Boolean{}, nil
	}
	return Union{Members: out}, nil
}

// isBooleanPair reports whether members are exactly Literal(true) and Literal(false).
func isBooleanPair(members []Type) bool {
	if len(members) != 2 {
		return false
	}
	var sawTrue, sawFalse bool
	for _, m := range members {
		l, ok := m.(Literal)
		if !ok {
			return false
		}
		switch l.Value {
		case true:
			sawTrue = true
		case false:
			sawFalse = true
		default:
			return false
		}
	}
	return sawTrue && sawFalse
}
