package typeexpr

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// reflector inlines every definition so the result has no $ref.
var reflector = &jsonschema.Reflector{
	DoNotReference: true,
	Anonymous:      true,
	ExpandedStruct: true,
}

// Reflect derives a Type from the Go type T using json struct tags.
// Fields without omitempty are required; maps must have string keys;
// interfaces, channels and functions are unrepresentable.
func Reflect[T any]() (Type, error) {
	return ReflectType(reflect.TypeFor[T]())
}

// MustReflect is like Reflect but panics on error.
func MustReflect[T any]() Type {
	t, err := Reflect[T]()
	if err != nil {
		panic(err)
	}
	return t
}

// ReflectType is the non-generic form of Reflect.
func ReflectType(rt reflect.Type) (t Type, err error) {
	if rt == nil {
		return nil, &UnrepresentableTypeError{What: "nil type"}
	}
	switch rt.Kind() {
	case reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, &UnrepresentableTypeError{What: rt.String()}
	}
	defer func() {
		if p := recover(); p != nil {
			t, err = nil, &UnrepresentableTypeError{What: fmt.Sprintf("%s: %v", rt, p)}
		}
	}()
	data, err := json.Marshal(reflector.ReflectFromType(rt))
	if err != nil {
		return nil, err
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, err
	}
	return FromSchema(s)
}

// FromSchema converts a schema of the supported subset back into a normalized Type.
// integer maps to Number, enum to a union of literals, and a type array to a union.
func FromSchema(s *Schema) (Type, error) {
	t, err := fromSchema(s)
	if err != nil {
		return nil, err
	}
	return Normalize(t)
}

var unsupportedKeywords = []string{"$ref", "oneOf", "allOf", "not", "prefixItems", "items", "if"}

// anyKeyPatterns are patternProperties keys that admit every string key.
var anyKeyPatterns = map[string]bool{".*": true, "^.*$": true, "": true}

func fromSchema(s *Schema) (Type, error) {
	if s == nil {
		return nil, &UnrepresentableTypeError{What: "missing schema"}
	}
	if raw, ok := s.Extra["patternProperties"]; ok {
		return dictionaryFromPatterns(raw)
	}
	for _, k := range unsupportedKeywords {
		if _, ok := s.Extra[k]; ok {
			return nil, &UnrepresentableTypeError{What: "schema keyword " + k}
		}
	}
	switch {
	case s.Const != nil:
		if *s.Const == nil {
			return Null{}, nil
		}
		return NewLiteral(*s.Const)
	case len(s.Enum) > 0:
		u := Union{}
		for _, v := range s.Enum {
			if v == nil {
				u.Members = append(u.Members, Null{})
				continue
			}
			lit, err := NewLiteral(v)
			if err != nil {
				return nil, err
			}
			u.Members = append(u.Members, lit)
		}
		return u, nil
	case len(s.AnyOf) > 0:
		u := Union{}
		for _, m := range s.AnyOf {
			mt, err := fromSchema(m)
			if err != nil {
				return nil, err
			}
			u.Members = append(u.Members, mt)
		}
		return u, nil
	}
	switch s.Type {
	case "boolean":
		return Boolean{}, nil
	case "number", "integer":
		return Number{}, nil
	case "string":
		return String{}, nil
	case "null":
		return Null{}, nil
	case "array":
		if s.Items == nil {
			return nil, &UnrepresentableTypeError{What: "array without items"}
		}
		item, err := fromSchema(s.Items)
		if err != nil {
			return nil, err
		}
		return Array{Item: item}, nil
	case "object", "":
		if s.Type == "" && s.Properties == nil && s.AdditionalProperties == nil {
			return nil, &UnrepresentableTypeError{What: "untyped schema"}
		}
		return objectFromSchema(s)
	}
	return nil, &UnrepresentableTypeError{What: fmt.Sprintf("schema type %q", s.Type)}
}

// dictionaryFromPatterns accepts a single catch-all pattern; any other key pattern
// restricts keys (for example to digits) and is not a string-keyed dictionary.
func dictionaryFromPatterns(raw json.RawMessage) (Type, error) {
	var patterns map[string]*Schema
	if err := json.Unmarshal(raw, &patterns); err != nil {
		return nil, err
	}
	if len(patterns) != 1 {
		return nil, &UnrepresentableTypeError{What: "patternProperties with several patterns"}
	}
	for pattern, vs := range patterns {
		if !anyKeyPatterns[pattern] {
			return nil, &UnrepresentableTypeError{What: fmt.Sprintf("dictionary keys restricted to %q", pattern)}
		}
		v, err := fromSchema(vs)
		if err != nil {
			return nil, err
		}
		return Dictionary{Value: v}, nil
	}
	return nil, nil
}

func objectFromSchema(s *Schema) (Type, error) {
	if s.Properties == nil || s.Properties.Len() == 0 {
		if s.AdditionalProperties != nil {
			v, err := fromSchema(s.AdditionalProperties)
			if err != nil {
				return nil, err
			}
			return Dictionary{Value: v}, nil
		}
		return Object{}, nil
	}
	if s.AdditionalProperties != nil {
		return nil, &UnrepresentableTypeError{What: "object with both properties and additionalProperties"}
	}
	var obj Object
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		ft, err := fromSchema(p.Value)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Key, err)
		}
		obj.Fields = append(obj.Fields, Field{Name: p.Key, Type: ft, Optional: !s.IsRequired(p.Key)})
	}
	return obj, nil
}
