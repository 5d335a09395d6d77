package promptfn

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FamilyDefaults are the request settings used for a model family when the contract
// does not override them.
type FamilyDefaults struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Config is built once at startup and read-only afterwards.
type Config struct {
	// Model is the default model. Empty falls back to Chat.Model, then Legacy.Model.
	Model  string         `yaml:"model"`
	Chat   FamilyDefaults `yaml:"chat"`
	Legacy FamilyDefaults `yaml:"legacy"`
	// Reasoning asks chat models to think step by step before the fenced answer.
	Reasoning bool `yaml:"reasoning"`
	// LogPrompts logs every prompt and completion at debug level.
	LogPrompts bool `yaml:"log_prompts"`
	// Timeout bounds one provider attempt. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryOptions  `yaml:"retry"`

	ProjectKey    string        `yaml:"project_key"`
	ReportURL     string        `yaml:"report_url"`
	ReportTimeout time.Duration `yaml:"report_timeout"`

	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Chat:          FamilyDefaults{Model: "gpt-4o-mini", MaxTokens: 1024, Temperature: 0},
		Legacy:        FamilyDefaults{Model: "davinci-002", MaxTokens: 512, Temperature: 0},
		Timeout:       60 * time.Second,
		Retry:         DefaultRetryOptions(),
		ReportTimeout: 5 * time.Second,
		BaseURL:       "https://api.openai.com/v1",
	}
}

// DefaultModel resolves the model used when a call names none.
func (c Config) DefaultModel() string {
	switch {
	case c.Model != "":
		return c.Model
	case c.Chat.Model != "":
		return c.Chat.Model
	}
	return c.Legacy.Model
}

// Defaults returns the family settings for f.
func (c Config) Defaults(f Family) FamilyDefaults {
	if f == FamilyLegacy {
		return c.Legacy
	}
	return c.Chat
}

// ConfigFromEnv returns DefaultConfig overlaid with the environment.
// lookup defaults to os.LookupEnv.
func ConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	return DefaultConfig().WithEnv(lookup)
}

// WithEnv overlays environment variables onto c:
//
//	PROMPTFN_MODEL, PROMPTFN_MAX_TOKENS, PROMPTFN_TEMPERATURE, PROMPTFN_REASONING,
//	PROMPTFN_LOG_PROMPTS, PROMPTFN_TIMEOUT, PROMPTFN_RETRIES, PROMPTFN_PROJECT_KEY,
//	PROMPTFN_REPORT_URL, PROMPTFN_BASE_URL, OPENAI_API_KEY, GEMINI_API_KEY
//
// PROMPTFN_MAX_TOKENS and PROMPTFN_TEMPERATURE apply to both families.
func (c Config) WithEnv(lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	parse := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	str("PROMPTFN_MODEL", &c.Model)
	str("PROMPTFN_PROJECT_KEY", &c.ProjectKey)
	str("PROMPTFN_REPORT_URL", &c.ReportURL)
	str("PROMPTFN_BASE_URL", &c.BaseURL)
	str("OPENAI_API_KEY", &c.APIKey)
	str("GEMINI_API_KEY", &c.GeminiAPIKey)
	parse("PROMPTFN_MAX_TOKENS", func(v string) error {
		n, err := strconv.Atoi(v)
		c.Chat.MaxTokens, c.Legacy.MaxTokens = n, n
		return err
	})
	parse("PROMPTFN_TEMPERATURE", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		c.Chat.Temperature, c.Legacy.Temperature = f, f
		return err
	})
	parse("PROMPTFN_REASONING", func(v string) (err error) {
		c.Reasoning, err = strconv.ParseBool(v)
		return err
	})
	parse("PROMPTFN_LOG_PROMPTS", func(v string) (err error) {
		c.LogPrompts, err = strconv.ParseBool(v)
		return err
	})
	parse("PROMPTFN_TIMEOUT", func(v string) (err error) {
		c.Timeout, err = time.ParseDuration(v)
		return err
	})
	parse("PROMPTFN_RETRIES", func(v string) (err error) {
		c.Retry.Retries, err = strconv.Atoi(v)
		return err
	})
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config from env: %w", errors.Join(errs...))
	}
	return c, nil
}

// LoadConfigFile reads a YAML file over DefaultConfig. Unknown keys are an error.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return DefaultConfig().WithYAML(data)
}

// WithYAML overlays a YAML document onto c. Keys that are absent keep their value.
func (c Config) WithYAML(data []byte) (Config, error) {
	policy := c.Retry.ShouldRetry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	c.Retry.ShouldRetry = policy
	return c, nil
}
