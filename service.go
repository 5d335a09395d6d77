package promptfn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ServiceParameters override the family defaults for one function.
type ServiceParameters struct {
	Model       string   `json:"model,omitempty" yaml:"model"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature"`
	MaxTokens   int      `json:"maxTokens,omitempty" yaml:"max_tokens"`
}

var serviceTagPattern = regexp.MustCompile(`@(model|temperature|maxTokens|max_tokens)[ \t]+([^\s*]+)`)

// ParseServiceParameters extracts @model, @temperature and @maxTokens (or @max_tokens)
// tags from a doc comment. A repeated tag keeps the last value.
func ParseServiceParameters(doc string) (ServiceParameters, error) {
	var sp ServiceParameters
	for _, m := range serviceTagPattern.FindAllStringSubmatch(doc, -1) {
		tag, val := m[1], strings.TrimSpace(m[2])
		switch tag {
		case "model":
			sp.Model = val
		case "temperature":
			t, err := strconv.ParseFloat(val, 64)
			if err != nil || t < 0 {
				return ServiceParameters{}, fmt.Errorf("%w: @temperature %q", ErrInvalidContract, val)
			}
			sp.Temperature = &t
		default:
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return ServiceParameters{}, fmt.Errorf("%w: @%s %q", ErrInvalidContract, tag, val)
			}
			sp.MaxTokens = n
		}
	}
	return sp, nil
}

// Merge returns s with every field that over sets replaced.
func (s ServiceParameters) Merge(over ServiceParameters) ServiceParameters {
	if over.Model != "" {
		s.Model = over.Model
	}
	if over.Temperature != nil {
		t := *over.Temperature
		s.Temperature = &t
	}
	if over.MaxTokens > 0 {
		s.MaxTokens = over.MaxTokens
	}
	return s
}

// resolved is the model and settings one call is sent with.
type resolved struct {
	Model       string
	Family      Family
	MaxTokens   int
	Temperature float64
}

// resolve applies s over the configured defaults. The model is chosen first; its family
// then selects which defaults fill the remaining fields.
func (s ServiceParameters) resolve(cfg Config) resolved {
	model := s.Model
	if model == "" {
		model = cfg.DefaultModel()
	}
	fam := FamilyOf(model)
	def := cfg.Defaults(fam)
	r := resolved{Model: model, Family: fam, MaxTokens: def.MaxTokens, Temperature: def.Temperature}
	if s.MaxTokens > 0 {
		r.MaxTokens = s.MaxTokens
	}
	if s.Temperature != nil {
		r.Temperature = *s.Temperature
	}
	return r
}
