package promptfn

import (
	"fmt"

	"github.com/skosovsky/promptfn/heal"
	"github.com/skosovsky/promptfn/typeexpr"
)

// Extraction is the result of decoding and validating one completion.
type Extraction struct {
	// Value is the decoded value, nil when decoding failed.
	Value any
	// Valid is true when Value decoded and satisfied the schema.
	Valid bool
	// Errors holds the decode error or the validation messages.
	Errors []string
	// Err is the decode (ErrDecodeFailure) or validation (*ValidationError) failure.
	Err error
}

// Extractor turns raw completion text into a schema-checked value. It can be used
// outside an Engine, for example on recorded completions.
type Extractor struct {
	schema     *typeexpr.Schema
	prefix     string
	decoder    heal.Decoder
	validators *validatorCache
}

// NewExtractor prepares an Extractor for values of schema.
func NewExtractor(schema *typeexpr.Schema, decoder heal.Decoder) (*Extractor, error) {
	prefix, err := heal.Prefix(schema)
	if err != nil {
		return nil, err
	}
	vc, err := newValidatorCache(1)
	if err != nil {
		return nil, err
	}
	return &Extractor{schema: schema, prefix: prefix, decoder: decoder, validators: vc}, nil
}

// ExtractorFor returns an Extractor for the return type of c.
func ExtractorFor(c *Contract) (*Extractor, error) {
	return NewExtractor(c.schema, heal.Decoder{})
}

// Prefix returns the priming prefix for family; chat models get none.
func (x *Extractor) Prefix(f Family) string {
	if f == FamilyLegacy {
		return x.prefix
	}
	return ""
}

// Extract decodes raw as produced by a model of family f and validates the result.
// Chat output has its fenced block extracted first; legacy output is primed.
func (x *Extractor) Extract(raw string, f Family) Extraction {
	text := raw
	if f != FamilyLegacy {
		text = heal.ExtractFenced(raw)
	}
	v, err := x.decoder.Decode(x.Prefix(f)+text, x.schema)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrDecodeFailure, err)
		return Extraction{Errors: []string{err.Error()}, Err: err}
	}
	msgs, err := x.validators.validate(x.schema, v)
	if err != nil {
		return Extraction{Value: v, Errors: []string{err.Error()}, Err: err}
	}
	if len(msgs) > 0 {
		return Extraction{Value: v, Errors: msgs, Err: &ValidationError{Messages: msgs}}
	}
	return Extraction{Value: v, Valid: true}
}
