package typeexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Type
		want Type
	}{
		{"absent stripped", Union{Members: []Type{String{}, Absent{}}}, String{}},
		{"boolean pair", Union{Members: []Type{Literal{Value: true}, Literal{Value: false}}}, Boolean{}},
		{
			"flatten and dedupe",
			Union{Members: []Type{String{}, Union{Members: []Type{Number{}, String{}}}}},
			Union{Members: []Type{String{}, Number{}}},
		},
		{"int literal", Literal{Value: 3}, Literal{Value: 3.0}},
		{
			"absent makes member optional",
			Object{Fields: []Field{Req("q", Union{Members: []Type{Number{}, Absent{}}})}},
			Object{Fields: []Field{Opt("q", Number{})}},
		},
		{"nested array", Array{Item: Union{Members: []Type{Null{}}}}, Array{Item: Null{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %s", Format(got))
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	_, err := Normalize(Union{Members: []Type{Absent{}}})
	require.ErrorIs(t, err, ErrEmptyUnion)

	_, err = Normalize(Absent{})
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = Normalize(nil)
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = Normalize(Literal{Value: []int{1}})
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = Normalize(Object{Fields: []Field{Req("a", String{}), Req("a", Number{})}})
	require.ErrorIs(t, err, ErrUnrepresentable)

	_, err = Normalize(Object{Fields: []Field{Req("", String{})}})
	var ue *UnrepresentableTypeError
	require.ErrorAs(t, err, &ue)
}

func TestObject_Required(t *testing.T) {
	o := Object{Fields: []Field{Req("a", String{}), Opt("b", String{}), Req("c", Number{})}}
	assert.Equal(t, []string{"a", "c"}, o.Required())
	f, ok := o.Field("b")
	require.True(t, ok)
	assert.True(t, f.Optional)
	_, ok = o.Field("missing")
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "dictionary", KindDictionary.String())
	assert.Equal(t, "undefined", Absent{}.Kind().String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
