package typeexpr

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Shape is the canonical JSON kind of a schema. It selects the priming prefix
// and decides whether a decoded value arrives wrapped in {"value": ...}.
type Shape string

const (
	ShapeObject  Shape = "object"
	ShapeArray   Shape = "array"
	ShapeString  Shape = "string"
	ShapeNumber  Shape = "number"
	ShapeBoolean Shape = "boolean"
	ShapeNull    Shape = "null"
)

// Wrapped reports whether values of this shape travel as {"value": X}.
func (s Shape) Wrapped() bool {
	switch s {
	case ShapeString, ShapeNumber, ShapeBoolean, ShapeNull:
		return true
	}
	return false
}

// ToJSONSchema converts a Type into the JSON Schema subset.
// t is expected to be normalized; Absent members are skipped.
func ToJSONSchema(t Type) *Schema {
	switch x := t.(type) {
	case Boolean:
		return &Schema{Type: "boolean"}
	case Number:
		return &Schema{Type: "number"}
	case String:
		return &Schema{Type: "string"}
	case Null:
		return &Schema{Type: "null"}
	case Literal:
		return ConstSchema(x.Value)
	case Array:
		return &Schema{Type: "array", Items: ToJSONSchema(x.Item)}
	case Dictionary:
		return &Schema{Type: "object", AdditionalProperties: ToJSONSchema(x.Value)}
	case Object:
		props := orderedmap.New[string, *Schema]()
		for _, f := range x.Fields {
			props.Set(f.Name, ToJSONSchema(f.Type))
		}
		return &Schema{Type: "object", Properties: props, Required: x.Required()}
	case Union:
		if isBooleanPair(x.Members) {
			return &Schema{Type: "boolean"}
		}
		s := &Schema{}
		for _, m := range x.Members {
			if _, absent := m.(Absent); absent {
				continue
			}
			s.AnyOf = append(s.AnyOf, ToJSONSchema(m))
		}
		return s
	default:
		return &Schema{}
	}
}

// CanonicalKind resolves the single JSON kind described by s.
// const, homogeneous enum and anyOf whose members share one kind are resolved;
// anything heterogeneous or untyped is ErrSchemaAmbiguous.
func CanonicalKind(s *Schema) (Shape, error) {
	if s == nil {
		return "", fmt.Errorf("nil schema: %w", ErrSchemaAmbiguous)
	}
	if s.Type != "" {
		return shapeOfType(s.Type)
	}
	if s.Const != nil {
		return shapeOfValue(*s.Const)
	}
	if len(s.Enum) > 0 {
		return commonShape(len(s.Enum), func(i int) (Shape, error) { return shapeOfValue(s.Enum[i]) }, "enum")
	}
	if len(s.AnyOf) > 0 {
		return commonShape(len(s.AnyOf), func(i int) (Shape, error) { return CanonicalKind(s.AnyOf[i]) }, "anyOf")
	}
	switch {
	case s.Properties != nil || s.AdditionalProperties != nil:
		return ShapeObject, nil
	case s.Items != nil:
		return ShapeArray, nil
	}
	return "", fmt.Errorf("schema has no type, const, enum or anyOf: %w", ErrSchemaAmbiguous)
}

func commonShape(n int, at func(int) (Shape, error), keyword string) (Shape, error) {
	var first Shape
	for i := range n {
		sh, err := at(i)
		if err != nil {
			return "", err
		}
		if i == 0 {
			first = sh
			continue
		}
		if sh != first {
			return "", fmt.Errorf("%s mixes %s and %s: %w", keyword, first, sh, ErrSchemaAmbiguous)
		}
	}
	return first, nil
}

func shapeOfType(t string) (Shape, error) {
	switch t {
	case "object":
		return ShapeObject, nil
	case "array":
		return ShapeArray, nil
	case "string":
		return ShapeString, nil
	case "number", "integer":
		return ShapeNumber, nil
	case "boolean":
		return ShapeBoolean, nil
	case "null":
		return ShapeNull, nil
	}
	return "", fmt.Errorf("unknown schema type %q: %w", t, ErrSchemaAmbiguous)
}

func shapeOfValue(v any) (Shape, error) {
	switch v.(type) {
	case nil:
		return ShapeNull, nil
	case string:
		return ShapeString, nil
	case bool:
		return ShapeBoolean, nil
	case float64, float32, int, int32, int64, json.Number:
		return ShapeNumber, nil
	case []any:
		return ShapeArray, nil
	case map[string]any:
		return ShapeObject, nil
	}
	return "", fmt.Errorf("literal of type %T: %w", v, ErrSchemaAmbiguous)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// TypeHint renders s as type-declaration text for embedding in a prompt:
// primitives verbatim, const as a literal, enum/anyOf as "( a | b )", arrays as "T[]",
// objects as "{ name: T; age?: T }" and dictionaries as "{ [key: string]: T }".
func TypeHint(s *Schema) string {
	var b strings.Builder
	writeHint(&b, s)
	return b.String()
}

func writeHint(b *strings.Builder, s *Schema) {
	switch {
	case s == nil:
		b.WriteString("any")
	case s.Const != nil:
		b.WriteString(literalText(*s.Const))
	case len(s.Enum) > 0:
		b.WriteString("( ")
		for i, v := range s.Enum {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(literalText(v))
		}
		b.WriteString(" )")
	case len(s.AnyOf) > 0:
		b.WriteString("( ")
		for i, m := range s.AnyOf {
			if i > 0 {
				b.WriteString(" | ")
			}
			writeHint(b, m)
		}
		b.WriteString(" )")
	case s.Type == "array":
		if s.Items == nil {
			b.WriteString("any")
		} else {
			writeHint(b, s.Items)
		}
		b.WriteString("[]")
	case s.Type == "object" || (s.Type == "" && (s.Properties != nil || s.AdditionalProperties != nil)):
		writeObjectHint(b, s)
	case s.Type == "integer":
		b.WriteString("number")
	case s.Type != "":
		b.WriteString(s.Type)
	default:
		b.WriteString("any")
	}
}

func writeObjectHint(b *strings.Builder, s *Schema) {
	var members []string
	if s.Properties != nil {
		for p := s.Properties.Oldest(); p != nil; p = p.Next() {
			var m strings.Builder
			m.WriteString(memberName(p.Key))
			if !s.IsRequired(p.Key) {
				m.WriteByte('?')
			}
			m.WriteString(": ")
			writeHint(&m, p.Value)
			members = append(members, m.String())
		}
	}
	if s.AdditionalProperties != nil {
		var m strings.Builder
		m.WriteString("[key: string]: ")
		writeHint(&m, s.AdditionalProperties)
		members = append(members, m.String())
	}
	if len(members) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	b.WriteString(strings.Join(members, "; "))
	b.WriteString(" }")
}

func memberName(name string) string {
	if identPattern.MatchString(name) {
		return name
	}
	return literalText(name)
}

func literalText(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}
