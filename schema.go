package promptfn

import (
	"bytes"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/skosovsky/promptfn/typeexpr"
)

// DefaultSchemaCacheSize is the number of compiled return schemas kept per Engine.
const DefaultSchemaCacheSize = 256

const schemaResource = "promptfn-return.json"

// validatorCache compiles return schemas once, keyed by their canonical JSON text.
type validatorCache struct {
	compiled *lru.Cache[string, *jsonschema.Schema]
}

func newValidatorCache(size int) (*validatorCache, error) {
	if size <= 0 {
		size = DefaultSchemaCacheSize
	}
	c, err := lru.New[string, *jsonschema.Schema](size)
	if err != nil {
		return nil, err
	}
	return &validatorCache{compiled: c}, nil
}

func (c *validatorCache) get(s *typeexpr.Schema) (*jsonschema.Schema, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	key := string(data)
	if sch, ok := c.compiled.Get(key); ok {
		return sch, nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	comp := jsonschema.NewCompiler()
	if err := comp.AddResource(schemaResource, doc); err != nil {
		return nil, err
	}
	sch, err := comp.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("compile return schema: %w", err)
	}
	c.compiled.Add(key, sch)
	return sch, nil
}

// validate checks v against s and returns one message per violation.
// v is round-tripped through JSON so numbers reach the validator in its own form.
func (c *validatorCache) validate(s *typeexpr.Schema, v any) ([]string, error) {
	sch, err := c.get(s)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []string{"/: value is not JSON: " + err.Error()}, nil
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(inst); err != nil {
		return validationMessages(err), nil
	}
	return nil, nil
}
