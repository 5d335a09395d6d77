package typeexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHint(t *testing.T) {
	tests := []struct {
		text string
		want Type
	}{
		{"string", String{}},
		{"integer", Number{}},
		{"string | undefined", String{}},
		{"| string | null", Union{Members: []Type{String{}, Null{}}}},
		{"true | false", Boolean{}},
		{"Array<number>", Array{Item: Number{}}},
		{"number[][]", Array{Item: Array{Item: Number{}}}},
		{`Record<string, "a" | "b">`, Dictionary{Value: Union{Members: []Type{Literal{Value: "a"}, Literal{Value: "b"}}}}},
		{"{ [k: string]: boolean }", Dictionary{Value: Boolean{}}},
		{"{ a: number | undefined, b: string }", Object{Fields: []Field{Opt("a", Number{}), Req("b", String{})}}},
		{`{ 'x y'?: 'z' }`, Object{Fields: []Field{Opt("x y", Literal{Value: "z"})}}},
		{`"é\n"`, Literal{Value: "é\n"}},
		{"-2.5e1", Literal{Value: -25.0}},
		{"(string)", String{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseHint(tt.text)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %s", Format(got))
		})
	}
}

func TestParseHint_Unrepresentable(t *testing.T) {
	for _, text := range []string{
		"string & number",
		"(a: string) => number",
		"() => void",
		"Record<number, string>",
		"{ [k: number]: string }",
		"{ a: string; [k: string]: string }",
		"{ run(): void }",
		"any",
		"Date",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseHint(text)
			require.ErrorIs(t, err, ErrUnrepresentable)
		})
	}
}

func TestParseHint_SyntaxError(t *testing.T) {
	for _, text := range []string{
		"{ name: string",
		"Array<string",
		"string number",
		`"open`,
		"#",
		"",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := ParseHint(text)
			var se *HintSyntaxError
			require.ErrorAs(t, err, &se)
		})
	}
}

func TestMustParseHint_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseHint("string &") })
	assert.NotPanics(t, func() { MustParseHint("string") })
}
