package heal

import "github.com/skosovsky/promptfn/typeexpr"

// Prefix returns the opening tokens a completion-style model is primed with for schema:
//
//	object              {
//	array of objects    [{
//	array               [
//	string              {"value":"
//	number/boolean/null {"value":
//
// Chat models are instructed instead of primed and get no prefix.
func Prefix(schema *typeexpr.Schema) (string, error) {
	kind, err := typeexpr.CanonicalKind(schema)
	if err != nil {
		return "", err
	}
	switch kind {
	case typeexpr.ShapeObject:
		return "{", nil
	case typeexpr.ShapeArray:
		if schema.Items != nil {
			if item, err := typeexpr.CanonicalKind(schema.Items); err == nil && item == typeexpr.ShapeObject {
				return "[{", nil
			}
		}
		return "[", nil
	case typeexpr.ShapeString:
		return `{"value":"`, nil
	default:
		return `{"value":`, nil
	}
}
