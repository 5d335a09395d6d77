package typeexpr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, s *Schema) string {
	t.Helper()
	out, err := json.Marshal(s)
	require.NoError(t, err)
	return string(out)
}

func TestToJSONSchema(t *testing.T) {
	tests := []struct {
		name string
		in   Type
		want string
	}{
		{"string", String{}, `{"type":"string"}`},
		{"null", Null{}, `{"type":"null"}`},
		{"const string", Literal{Value: "a"}, `{"const":"a"}`},
		{"const false", Literal{Value: false}, `{"const":false}`},
		{"array", Array{Item: Number{}}, `{"type":"array","items":{"type":"number"}}`},
		{"dictionary", Dictionary{Value: Boolean{}}, `{"type":"object","additionalProperties":{"type":"boolean"}}`},
		{
			"object",
			Object{Fields: []Field{Req("name", String{}), Opt("age", Number{})}},
			`{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"number"}},"required":["name"]}`,
		},
		{"boolean pair", Union{Members: []Type{Literal{Value: true}, Literal{Value: false}}}, `{"type":"boolean"}`},
		{"union", Union{Members: []Type{String{}, Null{}}}, `{"anyOf":[{"type":"string"},{"type":"null"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustJSON(t, ToJSONSchema(tt.in)))
		})
	}
}

func TestToJSONSchema_PropertyOrderIsDeclarationOrder(t *testing.T) {
	obj := Object{Fields: []Field{Req("zeta", String{}), Req("alpha", String{}), Req("mid", String{})}}
	assert.Equal(t,
		`{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"string"},"mid":{"type":"string"}},"required":["zeta","alpha","mid"]}`,
		mustJSON(t, ToJSONSchema(obj)))
}

func TestCanonicalKind(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   Shape
	}{
		{"object", `{"type":"object","properties":{}}`, ShapeObject},
		{"array", `{"type":"array","items":{"type":"string"}}`, ShapeArray},
		{"integer", `{"type":"integer"}`, ShapeNumber},
		{"null", `{"type":"null"}`, ShapeNull},
		{"const", `{"const":"x"}`, ShapeString},
		{"const null", `{"const":null}`, ShapeNull},
		{"enum", `{"enum":["a","b"]}`, ShapeString},
		{"anyOf same kind", `{"anyOf":[{"const":1},{"type":"number"}]}`, ShapeNumber},
		{"untyped properties", `{"properties":{"a":{"type":"string"}}}`, ShapeObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSchema([]byte(tt.schema))
			require.NoError(t, err)
			got, err := CanonicalKind(s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalKind_Ambiguous(t *testing.T) {
	for _, schema := range []string{
		`{"enum":["a",1]}`,
		`{"anyOf":[{"type":"string"},{"type":"null"}]}`,
		`{}`,
		`{"type":"date"}`,
	} {
		t.Run(schema, func(t *testing.T) {
			s, err := ParseSchema([]byte(schema))
			require.NoError(t, err)
			_, err = CanonicalKind(s)
			require.ErrorIs(t, err, ErrSchemaAmbiguous)
		})
	}
	_, err := CanonicalKind(nil)
	require.ErrorIs(t, err, ErrSchemaAmbiguous)
}

func TestShape_Wrapped(t *testing.T) {
	assert.True(t, ShapeString.Wrapped())
	assert.True(t, ShapeNull.Wrapped())
	assert.True(t, ShapeBoolean.Wrapped())
	assert.False(t, ShapeObject.Wrapped())
	assert.False(t, ShapeArray.Wrapped())
}

func TestTypeHint(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   string
	}{
		{"primitive", `{"type":"string"}`, "string"},
		{"integer", `{"type":"integer"}`, "number"},
		{"object", `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"number"}},"required":["name"]}`, "{ name: string; age?: number }"},
		{"array of objects", `{"type":"array","items":{"type":"object","properties":{"id":{"type":"number"}},"required":["id"]}}`, "{ id: number }[]"},
		{"enum", `{"enum":["x","y"]}`, `( "x" | "y" )`},
		{"anyOf", `{"anyOf":[{"type":"string"},{"type":"null"}]}`, "( string | null )"},
		{"dictionary", `{"type":"object","additionalProperties":{"type":"boolean"}}`, "{ [key: string]: boolean }"},
		{"empty object", `{"type":"object"}`, "{}"},
		{"quoted member", `{"type":"object","properties":{"first name":{"type":"string"}},"required":["first name"]}`, `{ "first name": string }`},
		{"type array", `{"type":["string","number"]}`, "( string | number )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSchema([]byte(tt.schema))
			require.NoError(t, err)
			assert.Equal(t, tt.want, TypeHint(s))
		})
	}
}

func TestFormat_ParseHint_RoundTrip(t *testing.T) {
	types := []Type{
		String{},
		Number{},
		Boolean{},
		Null{},
		Literal{Value: "he said \"hi\""},
		Literal{Value: 42.0},
		Literal{Value: -1.5},
		Literal{Value: true},
		Array{Item: Union{Members: []Type{String{}, Number{}}}},
		Dictionary{Value: Array{Item: String{}}},
		Object{},
		Union{Members: []Type{Literal{Value: "a"}, Literal{Value: "b"}}},
		Object{Fields: []Field{
			Req("name", String{}),
			Opt("age", Number{}),
			Req("first name", Boolean{}),
			Opt("nick", Union{Members: []Type{String{}, Null{}}}),
			Req("tags", Array{Item: Object{Fields: []Field{Req("id", Number{})}}}),
		}},
	}
	for _, typ := range types {
		text := Format(typ)
		t.Run(text, func(t *testing.T) {
			want, err := Normalize(typ)
			require.NoError(t, err)
			got, err := ParseHint(text)
			require.NoError(t, err)
			assert.True(t, Equal(want, got), "got %s", Format(got))

			wantKind, errW := CanonicalKind(ToJSONSchema(want))
			gotKind, errG := CanonicalKind(ToJSONSchema(got))
			assert.Equal(t, errW == nil, errG == nil)
			assert.Equal(t, wantKind, gotKind)
		})
	}
}
