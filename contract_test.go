package promptfn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/promptfn/typeexpr"
)

var personType = typeexpr.Object{Fields: []typeexpr.Field{
	typeexpr.Req("name", typeexpr.String{}),
	typeexpr.Opt("age", typeexpr.Number{}),
}}

func TestNewContract(t *testing.T) {
	c, err := NewContract("describe", "/** Describe someone. @maxTokens 50 */",
		[]Param{{Name: "who", Type: typeexpr.String{}}, {Name: "extra"}},
		personType, ServiceParameters{Model: "gpt-4o"})
	require.NoError(t, err)

	assert.Equal(t, "describe", c.Name())
	assert.Equal(t, "{ name: string; age?: number }", c.ReturnHint())
	assert.Equal(t, typeexpr.ShapeObject, c.Kind())
	assert.Equal(t, "{", c.Prefix())
	assert.Equal(t, "describe(who: string, extra: any): { name: string; age?: number }", c.Signature())
	assert.Equal(t, ServiceParameters{Model: "gpt-4o", MaxTokens: 50}, c.Service())
	assert.True(t, c.CanBeNull())
	assert.Len(t, c.Params(), 2)
}

func TestNewContract_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		fn     string
		params []Param
		ret    typeexpr.Type
	}{
		{name: "bad function name", fn: "not-an-ident", ret: typeexpr.String{}},
		{name: "bad parameter name", fn: "f", params: []Param{{Name: "1x"}}, ret: typeexpr.String{}},
		{name: "reserved parameter", fn: "f", params: []Param{{Name: "completion"}}, ret: typeexpr.String{}},
		{name: "duplicate parameter", fn: "f", params: []Param{{Name: "a"}, {Name: "a"}}, ret: typeexpr.String{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContract(tt.fn, "/** x */", tt.params, tt.ret, ServiceParameters{})
			require.ErrorIs(t, err, ErrInvalidContract)
		})
	}

	_, err := NewContract("f", "/** @temperature warm */", nil, typeexpr.String{}, ServiceParameters{})
	require.ErrorIs(t, err, ErrInvalidContract)

	_, err = NewContract("f", "/** x */", nil, typeexpr.Union{Members: []typeexpr.Type{typeexpr.String{}, typeexpr.Number{}}}, ServiceParameters{})
	require.ErrorIs(t, err, typeexpr.ErrSchemaAmbiguous)

	assert.Panics(t, func() {
		MustContract("bad name", "/** x */", nil, typeexpr.String{}, ServiceParameters{})
	})
}

func TestContract_CanBeNull(t *testing.T) {
	for ret, want := range map[string]bool{
		"string":                    false,
		"number":                    false,
		"boolean":                   false,
		"null":                      true,
		"string[]":                  true,
		"{ a: string }":             true,
		`( "yes" | "no" )`:          false,
		"{ [key: string]: number }": true,
	} {
		c := MustContract("f", "/** x */", nil, typeexpr.MustParseHint(ret), ServiceParameters{})
		assert.Equal(t, want, c.CanBeNull(), ret)
	}
}

func TestContract_MarshalJSON(t *testing.T) {
	c := MustContract("greet", "/** Greet. */", []Param{{Name: "name", Type: typeexpr.String{}}, {Name: "raw"}},
		typeexpr.String{}, ServiceParameters{})
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "greet",
		"docComment": "/** Greet. */",
		"parameters": [{"name": "name", "type": {"type": "string"}}, {"name": "raw"}],
		"returnType": {"type": "string"},
		"serviceParameters": {}
	}`, string(data))
}
