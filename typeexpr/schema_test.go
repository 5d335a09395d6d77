package typeexpr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_UnmarshalMarshal(t *testing.T) {
	in := `{"description":"d","required":["b"],"properties":{"b":{"type":"string"},"a":{"type":"number"}},"type":"object","additionalProperties":false,"x-custom":1}`
	s, err := ParseSchema([]byte(in))
	require.NoError(t, err)
	assert.True(t, s.Closed)
	assert.True(t, s.IsRequired("b"))
	assert.False(t, s.IsRequired("a"))
	p, ok := s.Property("a")
	require.True(t, ok)
	assert.Equal(t, "number", p.Type)
	_, ok = s.Property("missing")
	assert.False(t, ok)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"number"}},"required":["b"],"additionalProperties":false,"description":"d","x-custom":1}`,
		string(out))
}

func TestSchema_BooleanForms(t *testing.T) {
	s, err := ParseSchema([]byte(`true`))
	require.NoError(t, err)
	assert.Equal(t, "", s.Type)
	assert.Nil(t, s.Extra)

	s, err = ParseSchema([]byte(`false`))
	require.NoError(t, err)
	assert.Contains(t, s.Extra, "not")

	s, err = ParseSchema([]byte(`{"type":"array","items":true}`))
	require.NoError(t, err)
	assert.Nil(t, s.Items)
}

func TestSchema_ConstZeroValue(t *testing.T) {
	out, err := json.Marshal(ConstSchema(0))
	require.NoError(t, err)
	assert.Equal(t, `{"const":0}`, string(out))

	var nilSchema *Schema
	assert.False(t, nilSchema.IsRequired("a"))
	_, ok := nilSchema.Property("a")
	assert.False(t, ok)
}

func TestSchema_UnmarshalErrors(t *testing.T) {
	_, err := ParseSchema([]byte(`{"type":7}`))
	require.Error(t, err)
	_, err = ParseSchema([]byte(`[`))
	require.Error(t, err)
}
