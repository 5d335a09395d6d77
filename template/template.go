// Package template fills {{name}} variables in prompt text and splits the result at
// the reserved {{completion}} marker for fill-in-the-middle providers.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// CompletionMarker is the reserved variable that separates prompt from suffix.
const CompletionMarker = "{{completion}}"

const completionName = "completion"

var variablePattern = regexp.MustCompile(`\{\{([A-Za-z_$][A-Za-z0-9_$]*)\}\}`)

// Result is a rendered template. Suffix is set only when the text held {{completion}}.
type Result struct {
	Prompt    string
	Suffix    string
	HasSuffix bool
}

// Variables returns the distinct variable names in text in order of first use,
// excluding the completion marker.
func Variables(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if name == completionName || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Substitute replaces every {{name}} in text with the JSON encoding of params[name]
// and splits the text at {{completion}}. The split is located in text itself, so a
// value containing the marker is substituted verbatim and never splits.
func Substitute(text string, params map[string]any) (Result, error) {
	matches := variablePattern.FindAllStringSubmatchIndex(text, -1)
	markers := 0
	for _, m := range matches {
		if text[m[2]:m[3]] == completionName {
			markers++
		}
	}
	if markers > 1 {
		return Result{}, ErrTooManyCompletionMarkers
	}

	encoded := make(map[string]string)
	for _, name := range Variables(text) {
		v, ok := params[name]
		if !ok {
			return Result{}, &MissingParameterError{Name: name}
		}
		s, err := Encode(v)
		if err != nil {
			return Result{}, fmt.Errorf("template: encode %q: %w", name, err)
		}
		encoded[name] = s
	}

	var res Result
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]
		name := text[m[2]:m[3]]
		if name == completionName {
			res.Prompt = b.String()
			res.HasSuffix = true
			b.Reset()
			continue
		}
		b.WriteString(encoded[name])
	}
	b.WriteString(text[last:])
	if res.HasSuffix {
		res.Suffix = b.String()
	} else {
		res.Prompt = b.String()
	}
	return res, nil
}

// Encode returns the JSON text for v without HTML escaping.
func Encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
