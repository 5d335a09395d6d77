package typeexpr

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reflectPerson struct {
	Name string   `json:"name"`
	Age  int      `json:"age,omitempty"`
	Tags []string `json:"tags"`
}

type reflectOrder struct {
	ID       string          `json:"id"`
	Customer reflectPerson   `json:"customer"`
	Lines    []reflectLine   `json:"lines"`
	Notes    map[string]bool `json:"notes,omitempty"`
}

type reflectLine struct {
	SKU string  `json:"sku"`
	Qty float64 `json:"qty"`
}

func TestReflect_Struct(t *testing.T) {
	got, err := Reflect[reflectPerson]()
	require.NoError(t, err)
	want := Object{Fields: []Field{
		Req("name", String{}),
		Opt("age", Number{}),
		Req("tags", Array{Item: String{}}),
	}}
	assert.True(t, Equal(want, got), "got %s", Format(got))
}

func TestReflect_Nested(t *testing.T) {
	got, err := Reflect[reflectOrder]()
	require.NoError(t, err)
	assert.Equal(t,
		"{ id: string; customer: { name: string; age?: number; tags: string[] }; lines: { sku: string; qty: number }[]; notes?: { [key: string]: boolean } }",
		Format(got))
}

func TestReflect_Primitives(t *testing.T) {
	s, err := Reflect[string]()
	require.NoError(t, err)
	assert.Equal(t, String{}, s)

	n, err := Reflect[int64]()
	require.NoError(t, err)
	assert.Equal(t, Number{}, n)

	d, err := Reflect[map[string]float64]()
	require.NoError(t, err)
	assert.True(t, Equal(Dictionary{Value: Number{}}, d))
}

func TestReflect_Unrepresentable(t *testing.T) {
	_, err := Reflect[func()]()
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = Reflect[any]()
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = Reflect[chan int]()
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = Reflect[map[int]string]()
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = ReflectType(nil)
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = ReflectType(reflect.TypeFor[complex128]())
	require.ErrorIs(t, err, ErrUnrepresentable)

	assert.Panics(t, func() { MustReflect[func()]() })
}

func TestFromSchema(t *testing.T) {
	tests := []struct {
		schema string
		want   Type
	}{
		{`{"type":"integer"}`, Number{}},
		{`{"const":null}`, Null{}},
		{`{"enum":["a","b",null]}`, Union{Members: []Type{Literal{Value: "a"}, Literal{Value: "b"}, Null{}}}},
		{`{"type":["string","null"]}`, Union{Members: []Type{String{}, Null{}}}},
		{`{"type":"object","additionalProperties":{"type":"string"}}`, Dictionary{Value: String{}}},
		{`{"type":"object","patternProperties":{".*":{"type":"number"}}}`, Dictionary{Value: Number{}}},
		{`{"type":"object"}`, Object{}},
		{`{"properties":{"a":{"type":"boolean"}},"required":["a"]}`, Object{Fields: []Field{Req("a", Boolean{})}}},
		{`{"enum":[true,false]}`, Boolean{}},
	}
	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			s, err := ParseSchema([]byte(tt.schema))
			require.NoError(t, err)
			got, err := FromSchema(s)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %s", Format(got))
		})
	}
}

func TestFromSchema_Rejects(t *testing.T) {
	for _, schema := range []string{
		`{"$ref":"#/$defs/x"}`,
		`{"oneOf":[{"type":"string"}]}`,
		`{"allOf":[{"type":"string"}]}`,
		`{"type":"array"}`,
		`{"type":"array","items":[{"type":"string"}]}`,
		`{}`,
		`{"type":"object","patternProperties":{"^[0-9]+$":{"type":"string"}}}`,
		`{"type":"object","properties":{"a":{"type":"string"}},"additionalProperties":{"type":"string"}}`,
		`{"type":"date"}`,
		`false`,
	} {
		t.Run(schema, func(t *testing.T) {
			s, err := ParseSchema([]byte(schema))
			require.NoError(t, err)
			_, err = FromSchema(s)
			require.ErrorIs(t, err, ErrUnrepresentable)
		})
	}
}
