// Package typeexpr describes the JSON-serializable shapes a function can accept or return
// and converts them to and from a JSON Schema subset and type-hint text.
//
// A Type is a closed, recursive union: the primitives Boolean, Number, String and Null,
// Literal, Array, Object, Dictionary and Union. Absent is only used while constructing
// types (the "undefined" of a declaration) and is removed by Normalize.
//
// Pipeline: Type → ToJSONSchema → Schema → TypeHint (prompt text) / CanonicalKind (priming).
// ParseHint and FromSchema go the other way.
package typeexpr

import (
	"fmt"
)

// Kind identifies a Type variant.
type Kind int

const (
	KindBoolean Kind = iota
	KindNumber
	KindString
	KindNull
	KindLiteral
	KindArray
	KindObject
	KindDictionary
	KindUnion
	KindAbsent
)

var kindNames = [...]string{
	KindBoolean:    "boolean",
	KindNumber:     "number",
	KindString:     "string",
	KindNull:       "null",
	KindLiteral:    "literal",
	KindArray:      "array",
	KindObject:     "object",
	KindDictionary: "dictionary",
	KindUnion:      "union",
	KindAbsent:     "undefined",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is a node of a type expression. The set of implementations is closed.
type Type interface {
	Kind() Kind
	isType()
}

type (
	// Boolean is the JSON boolean type.
	Boolean struct{}
	// Number is the JSON number type (integers included).
	Number struct{}
	// String is the JSON string type.
	String struct{}
	// Null is the JSON null type.
	Null struct{}
	// Absent marks an optional member ("undefined"). Only valid inside a Union while building.
	Absent struct{}
)

// Literal is a single fixed primitive value: string, float64 or bool.
type Literal struct {
	Value any
}

// Array is a homogeneous list.
type Array struct {
	Item Type
}

// Field is one named member of an Object.
type Field struct {
	Name     string
	Type     Type
	Optional bool
}

// Object has an ordered list of named members. A member is required unless Optional.
type Object struct {
	Fields []Field
}

// Dictionary is a string-keyed map with homogeneous values.
type Dictionary struct {
	Value Type
}

// Union is a set of heterogeneous alternatives.
type Union struct {
	Members []Type
}

func (Boolean) Kind() Kind    { return KindBoolean }
func (Number) Kind() Kind     { return KindNumber }
func (String) Kind() Kind     { return KindString }
func (Null) Kind() Kind       { return KindNull }
func (Absent) Kind() Kind     { return KindAbsent }
func (Literal) Kind() Kind    { return KindLiteral }
func (Array) Kind() Kind      { return KindArray }
func (Object) Kind() Kind     { return KindObject }
func (Dictionary) Kind() Kind { return KindDictionary }
func (Union) Kind() Kind      { return KindUnion }

func (Boolean) isType()    {}
func (Number) isType()     {}
func (String) isType()     {}
func (Null) isType()       {}
func (Absent) isType()     {}
func (Literal) isType()    {}
func (Array) isType()      {}
func (Object) isType()     {}
func (Dictionary) isType() {}
func (Union) isType()      {}

// Required returns the names of the non-optional fields in declaration order.
func (o Object) Required() []string {
	var out []string
	for _, f := range o.Fields {
		if !f.Optional {
			out = append(out, f.Name)
		}
	}
	return out
}

// Field returns the member with the given name.
func (o Object) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NewLiteral returns a Literal for a string, bool or numeric value.
// Integers are stored as float64 so that literals compare equal to decoded JSON.
func NewLiteral(v any) (Literal, error) {
	switch x := v.(type) {
	case string, bool, float64:
		return Literal{Value: x}, nil
	case float32:
		return Literal{Value: float64(x)}, nil
	case int:
		return Literal{Value: float64(x)}, nil
	case int64:
		return Literal{Value: float64(x)}, nil
	case int32:
		return Literal{Value: float64(x)}, nil
	default:
		return Literal{}, &UnrepresentableTypeError{What: fmt.Sprintf("literal of type %T", v)}
	}
}

// Opt is shorthand for an optional Field.
func Opt(name string, t Type) Field { return Field{Name: name, Type: t, Optional: true} }

// Req is shorthand for a required Field.
func Req(name string, t Type) Field { return Field{Name: name, Type: t} }

// Format renders t as type-hint text. It is equivalent to TypeHint(ToJSONSchema(t)).
func Format(t Type) string {
	return TypeHint(ToJSONSchema(t))
}

// Equal reports whether a and b describe the same shape. Union member order matters.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Literal:
		return x.Value == b.(Literal).Value
	case Array:
		return Equal(x.Item, b.(Array).Item)
	case Dictionary:
		return Equal(x.Value, b.(Dictionary).Value)
	case Object:
		y := b.(Object)
		if len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			fx, fy := x.Fields[i], y.Fields[i]
			if fx.Name != fy.Name || fx.Optional != fy.Optional || !Equal(fx.Type, fy.Type) {
				return false
			}
		}
		return true
	case Union:
		y := b.(Union)
		if len(x.Members) != len(y.Members) {
			return false
		}
		for i := range x.Members {
			if !Equal(x.Members[i], y.Members[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
