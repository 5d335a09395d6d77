package promptfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceParameters(t *testing.T) {
	sp, err := ParseServiceParameters(`/**
 * Summarise the text.
 * @model davinci-002
 * @temperature 0.7
 * @maxTokens 300
 */`)
	require.NoError(t, err)
	assert.Equal(t, "davinci-002", sp.Model)
	require.NotNil(t, sp.Temperature)
	assert.InDelta(t, 0.7, *sp.Temperature, 1e-9)
	assert.Equal(t, 300, sp.MaxTokens)

	sp, err = ParseServiceParameters("/** @max_tokens 12 @max_tokens 20 */")
	require.NoError(t, err)
	assert.Equal(t, 20, sp.MaxTokens)
	assert.Nil(t, sp.Temperature)

	sp, err = ParseServiceParameters("/** No tags at all. */")
	require.NoError(t, err)
	assert.Equal(t, ServiceParameters{}, sp)
}

func TestParseServiceParameters_Invalid(t *testing.T) {
	for _, doc := range []string{
		"/** @temperature hot */",
		"/** @temperature -1 */",
		"/** @maxTokens 0 */",
		"/** @maxTokens many */",
	} {
		_, err := ParseServiceParameters(doc)
		require.ErrorIs(t, err, ErrInvalidContract, doc)
	}
}

func TestServiceParameters_MergeAndResolve(t *testing.T) {
	zero := 0.0
	base := ServiceParameters{Model: "davinci-002", MaxTokens: 10}
	merged := base.Merge(ServiceParameters{Temperature: &zero})
	assert.Equal(t, "davinci-002", merged.Model)
	assert.Equal(t, 10, merged.MaxTokens)
	require.NotNil(t, merged.Temperature)

	cfg := DefaultConfig()
	cfg.Legacy.Temperature = 0.9
	r := merged.resolve(cfg)
	assert.Equal(t, FamilyLegacy, r.Family)
	assert.Equal(t, 10, r.MaxTokens)
	assert.InDelta(t, 0.0, r.Temperature, 0)

	r = ServiceParameters{}.resolve(cfg)
	assert.Equal(t, "gpt-4o-mini", r.Model)
	assert.Equal(t, FamilyChat, r.Family)
	assert.Equal(t, 1024, r.MaxTokens)
}

func TestFamilyOf(t *testing.T) {
	for model, want := range map[string]Family{
		"text-davinci-003": FamilyLegacy,
		"davinci-002":      FamilyLegacy,
		"babbage-002":      FamilyLegacy,
		"code-cushman-001": FamilyLegacy,
		"text-ada-001":     FamilyLegacy,
		"gpt-4o":           FamilyChat,
		"gemini-2.5-flash": FamilyChat,
		"":                 FamilyChat,
	} {
		assert.Equal(t, want, FamilyOf(model), model)
	}
}
