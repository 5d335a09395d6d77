package promptfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skosovsky/promptfn/heal"
	"github.com/skosovsky/promptfn/typeexpr"
)

func TestExtractor_Legacy(t *testing.T) {
	x, err := NewExtractor(typeexpr.ToJSONSchema(personType), heal.Decoder{})
	require.NoError(t, err)
	assert.Equal(t, "{", x.Prefix(FamilyLegacy))
	assert.Empty(t, x.Prefix(FamilyChat))

	ex := x.Extract(`name: 'Ada', age: 36,}`, FamilyLegacy)
	require.NoError(t, ex.Err)
	assert.True(t, ex.Valid)
	assert.Equal(t, map[string]any{"name": "Ada", "age": float64(36)}, ex.Value)
}

func TestExtractor_ChatFencedScalar(t *testing.T) {
	c := MustContract("n", "/** x */", nil, typeexpr.Number{}, ServiceParameters{})
	x, err := ExtractorFor(c)
	require.NoError(t, err)

	ex := x.Extract("Sure!\n```json\n{\"value\": 42}\n```\nAnything else?", FamilyChat)
	require.True(t, ex.Valid, ex.Errors)
	assert.Equal(t, float64(42), ex.Value)

	ex = x.Extract("42", FamilyChat)
	require.True(t, ex.Valid, ex.Errors)
	assert.Equal(t, float64(42), ex.Value)
}

func TestExtractor_Failures(t *testing.T) {
	x, err := NewExtractor(typeexpr.ToJSONSchema(personType), heal.Decoder{})
	require.NoError(t, err)

	ex := x.Extract("I'm sorry, I can't do that.", FamilyChat)
	assert.False(t, ex.Valid)
	assert.Nil(t, ex.Value)
	require.ErrorIs(t, ex.Err, ErrDecodeFailure)
	require.Len(t, ex.Errors, 1)

	ex = x.Extract(`{"age": 3}`, FamilyChat)
	assert.False(t, ex.Valid)
	require.ErrorIs(t, ex.Err, ErrValidationFailure)
	var ve *ValidationError
	require.ErrorAs(t, ex.Err, &ve)
	assert.Equal(t, ve.Messages, ex.Errors)
	assert.Contains(t, ex.Errors[0], "name")
}
