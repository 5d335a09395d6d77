package promptfn

import (
	"errors"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CheckAnnotation verifies the doc comment envelope: once trimmed it must start with
// "/**", end with "*/" and have nothing after the first closing "*/".
func CheckAnnotation(function, doc string) error {
	d := strings.TrimSpace(doc)
	switch {
	case !strings.HasPrefix(d, "/**"):
		return &AnnotationError{Function: function, Reason: `doc comment must start with "/**"`}
	case len(d) < len("/**/") || !strings.HasSuffix(d, "*/"):
		return &AnnotationError{Function: function, Reason: `doc comment must end with "*/"`}
	case strings.Index(d[3:], "*/")+3 != len(d)-2:
		return &AnnotationError{Function: function, Reason: `content after the closing "*/"`}
	}
	return nil
}

var messagePrinter = message.NewPrinter(language.English)

// validationMessages flattens a schema validation error into one "/path: message"
// line per leaf violation.
func validationMessages(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, "/"+strings.Join(e.InstanceLocation, "/")+": "+e.ErrorKind.LocalizedString(messagePrinter))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	slices.Sort(out)
	return slices.Compact(out)
}
