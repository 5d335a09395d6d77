package template

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Trim selects which ends of a text have whitespace removed.
type Trim int

const (
	TrimNone Trim = iota
	TrimStart
	TrimEnd
	TrimBoth
)

var trimNames = map[Trim]string{TrimNone: "none", TrimStart: "start", TrimEnd: "end", TrimBoth: "both"}

func (t Trim) String() string {
	if s, ok := trimNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Trim(%d)", int(t))
}

// ParseTrim accepts none, start, end and both. The empty string is none.
func ParseTrim(s string) (Trim, error) {
	if s == "" {
		return TrimNone, nil
	}
	for t, name := range trimNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return TrimNone, fmt.Errorf("template: unknown trim mode %q", s)
}

// UnmarshalText lets Trim be read from YAML and flags.
func (t *Trim) UnmarshalText(text []byte) error {
	v, err := ParseTrim(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t Trim) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t Trim) start() bool { return t == TrimStart || t == TrimBoth }
func (t Trim) end() bool   { return t == TrimEnd || t == TrimBoth }

// Apply trims s according to t.
func (t Trim) Apply(s string) string {
	if t.start() {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
	}
	if t.end() {
		s = strings.TrimRightFunc(s, unicode.IsSpace)
	}
	return s
}

// Prompt is a template plus the whitespace and acceptance rules for one call.
type Prompt struct {
	Text           string
	TrimPrompt     Trim
	TrimCompletion Trim
	// Validate, when set, must match the trimmed completion.
	Validate *regexp.Regexp
}

// Render substitutes params and trims the outer ends of the rendered text.
// With a suffix, the end trim applies to the suffix.
func (p Prompt) Render(params map[string]any) (Result, error) {
	res, err := Substitute(p.Text, params)
	if err != nil {
		return Result{}, err
	}
	if p.TrimPrompt.start() {
		res.Prompt = TrimStart.Apply(res.Prompt)
	}
	if p.TrimPrompt.end() {
		if res.HasSuffix {
			res.Suffix = TrimEnd.Apply(res.Suffix)
		} else {
			res.Prompt = TrimEnd.Apply(res.Prompt)
		}
	}
	return res, nil
}

// Accept trims completion and checks it against Validate.
func (p Prompt) Accept(completion string) (string, error) {
	out := p.TrimCompletion.Apply(completion)
	if p.Validate != nil && !p.Validate.MatchString(out) {
		return "", fmt.Errorf("%w: does not match %s", ErrCompletionRejected, p.Validate)
	}
	return out, nil
}
