package typeexpr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Schema is the JSON Schema subset reachable from a Type: type, const, enum, items,
// ordered properties, required, additionalProperties and anyOf.
// Keywords outside the subset are kept in Extra so FromSchema can reject them.
type Schema struct {
	Type                 string
	Const                *any
	Enum                 []any
	Items                *Schema
	Properties           *orderedmap.OrderedMap[string, *Schema]
	Required             []string
	AdditionalProperties *Schema
	// Closed is set for "additionalProperties": false.
	Closed      bool
	AnyOf       []*Schema
	Description string
	Extra       map[string]json.RawMessage
}

// ConstSchema returns a schema matching exactly v.
func ConstSchema(v any) *Schema {
	return &Schema{Const: &v}
}

// ParseSchema decodes a JSON Schema document into the supported subset.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Property returns the schema of the named property.
func (s *Schema) Property(name string) (*Schema, bool) {
	if s == nil || s.Properties == nil {
		return nil, false
	}
	return s.Properties.Get(name)
}

// IsRequired reports whether name is listed in required.
func (s *Schema) IsRequired(name string) bool {
	return s != nil && slices.Contains(s.Required, name)
}

// MarshalJSON writes keywords in a fixed order so prompts and cache keys are deterministic.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	write := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("schema %s: %w", key, err)
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}
	type kv struct {
		key  string
		val  any
		omit bool
	}
	fields := []kv{
		{"type", s.Type, s.Type == ""},
		{"const", s.Const, s.Const == nil},
		{"enum", s.Enum, len(s.Enum) == 0},
		{"items", s.Items, s.Items == nil},
		{"properties", s.Properties, s.Properties == nil},
		{"required", s.Required, len(s.Required) == 0},
		{"additionalProperties", s.AdditionalProperties, s.AdditionalProperties == nil},
		{"additionalProperties", false, !s.Closed || s.AdditionalProperties != nil},
		{"anyOf", s.AnyOf, len(s.AnyOf) == 0},
		{"description", s.Description, s.Description == ""},
	}
	for _, f := range fields {
		if f.omit {
			continue
		}
		if err := write(f.key, f.val); err != nil {
			return nil, err
		}
	}
	extra := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		extra = append(extra, k)
	}
	slices.Sort(extra)
	for _, k := range extra {
		if err := write(k, s.Extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts boolean schemas, type arrays and boolean additionalProperties.
func (s *Schema) UnmarshalJSON(data []byte) error {
	*s = Schema{}
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "true":
		return nil
	case "false":
		s.Extra = map[string]json.RawMessage{"not": json.RawMessage(`{}`)}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		if err := s.decodeKeyword(key, val); err != nil {
			return fmt.Errorf("schema keyword %q: %w", key, err)
		}
	}
	return nil
}

func (s *Schema) decodeKeyword(key string, val json.RawMessage) error {
	switch key {
	case "type":
		var one string
		if err := json.Unmarshal(val, &one); err == nil {
			s.Type = one
			return nil
		}
		var many []string
		if err := json.Unmarshal(val, &many); err != nil {
			return err
		}
		if len(many) == 1 {
			s.Type = many[0]
			return nil
		}
		for _, t := range many {
			s.AnyOf = append(s.AnyOf, &Schema{Type: t})
		}
	case "const":
		var v any
		if err := json.Unmarshal(val, &v); err != nil {
			return err
		}
		s.Const = &v
	case "enum":
		return json.Unmarshal(val, &s.Enum)
	case "items":
		if isJSONBool(val) {
			return nil
		}
		if bytes.HasPrefix(bytes.TrimSpace(val), []byte("[")) {
			s.keep(key, val)
			return nil
		}
		s.Items = new(Schema)
		return json.Unmarshal(val, s.Items)
	case "properties":
		s.Properties = orderedmap.New[string, *Schema]()
		return json.Unmarshal(val, s.Properties)
	case "required":
		return json.Unmarshal(val, &s.Required)
	case "additionalProperties":
		var b bool
		if err := json.Unmarshal(val, &b); err == nil {
			s.Closed = !b
			return nil
		}
		s.AdditionalProperties = new(Schema)
		return json.Unmarshal(val, s.AdditionalProperties)
	case "anyOf":
		var members []*Schema
		if err := json.Unmarshal(val, &members); err != nil {
			return err
		}
		s.AnyOf = append(s.AnyOf, members...)
	case "description":
		return json.Unmarshal(val, &s.Description)
	default:
		s.keep(key, val)
	}
	return nil
}

func (s *Schema) keep(key string, val json.RawMessage) {
	if s.Extra == nil {
		s.Extra = make(map[string]json.RawMessage)
	}
	s.Extra[key] = val
}

func isJSONBool(val json.RawMessage) bool {
	v := string(bytes.TrimSpace(val))
	return v == "true" || v == "false"
}
