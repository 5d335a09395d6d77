package template

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTrim_Apply(t *testing.T) {
	tests := []struct {
		trim Trim
		want string
	}{
		{TrimNone, "  x  "},
		{TrimStart, "x  "},
		{TrimEnd, "  x"},
		{TrimBoth, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.trim.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trim.Apply("  x  "))
		})
	}
}

func TestParseTrim(t *testing.T) {
	for _, s := range []string{"none", "start", "END", "both", ""} {
		_, err := ParseTrim(s)
		require.NoError(t, err, s)
	}
	_, err := ParseTrim("middle")
	require.Error(t, err)
	assert.Equal(t, "Trim(9)", Trim(9).String())
}

func TestTrim_YAML(t *testing.T) {
	var cfg struct {
		Trim Trim `yaml:"trim"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("trim: both\n"), &cfg))
	assert.Equal(t, TrimBoth, cfg.Trim)
	require.Error(t, yaml.Unmarshal([]byte("trim: sideways\n"), &cfg))
}

func TestPrompt_Render(t *testing.T) {
	p := Prompt{Text: "\n  Fill {{x}}: {{completion}} done.  \n", TrimPrompt: TrimBoth}
	res, err := p.Render(map[string]any{"x": "gap"})
	require.NoError(t, err)
	assert.Equal(t, `Fill "gap": `, res.Prompt)
	assert.Equal(t, " done.", res.Suffix)

	p = Prompt{Text: "  {{x}}  ", TrimPrompt: TrimEnd}
	res, err = p.Render(map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, "  1", res.Prompt)
}

func TestPrompt_Accept(t *testing.T) {
	p := Prompt{TrimCompletion: TrimBoth, Validate: regexp.MustCompile(`^\d+$`)}
	out, err := p.Accept(" 42\n")
	require.NoError(t, err)
	assert.Equal(t, "42", out)

	_, err = p.Accept("forty-two")
	require.ErrorIs(t, err, ErrCompletionRejected)

	out, err = Prompt{}.Accept(" raw ")
	require.NoError(t, err)
	assert.Equal(t, " raw ", out)
}
