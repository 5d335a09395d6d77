package promptfn

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/skosovsky/promptfn/heal"
	"github.com/skosovsky/promptfn/typeexpr"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Param is one declared parameter. A nil Type is rendered as "any" and not checked.
type Param struct {
	Name string
	Type typeexpr.Type
}

// ParamOf declares a parameter whose type is reflected from T. It panics when T has
// no Type Expression, like regexp.MustCompile; use it for package-level contracts.
func ParamOf[T any](name string) Param {
	return Param{Name: name, Type: typeexpr.MustReflect[T]()}
}

// Contract is an immutable function declaration: name, doc comment, parameters,
// return type and service overrides. The return schema, its type hint, canonical kind
// and priming prefix are derived once by NewContract.
type Contract struct {
	name    string
	doc     string
	params  []Param
	returns typeexpr.Type
	service ServiceParameters

	schema     *typeexpr.Schema
	hint       string
	kind       typeexpr.Shape
	prefix     string
	paramHints []string
}

// NewContract validates and freezes a declaration. Service parameters are read from
// the doc comment tags and then overridden by service. Types are normalized, so
// unrepresentable or ambiguous return types fail here rather than at call time.
func NewContract(name, doc string, params []Param, returns typeexpr.Type, service ServiceParameters) (*Contract, error) {
	if !identPattern.MatchString(name) {
		return nil, fmt.Errorf("%w: function name %q is not an identifier", ErrInvalidContract, name)
	}
	c := &Contract{name: name, doc: doc}
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if !identPattern.MatchString(p.Name) {
			return nil, fmt.Errorf("%w: %s: parameter name %q is not an identifier", ErrInvalidContract, name, p.Name)
		}
		if p.Name == "completion" {
			return nil, fmt.Errorf("%w: %s: parameter name %q is reserved", ErrInvalidContract, name, p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: %s: duplicate parameter %q", ErrInvalidContract, name, p.Name)
		}
		seen[p.Name] = true
		hint := "any"
		if p.Type != nil {
			t, err := typeexpr.Normalize(p.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: parameter %q: %w", name, p.Name, err)
			}
			p.Type = t
			hint = typeexpr.Format(t)
		}
		c.params = append(c.params, p)
		c.paramHints = append(c.paramHints, hint)
	}
	ret, err := typeexpr.Normalize(returns)
	if err != nil {
		return nil, fmt.Errorf("%s: return type: %w", name, err)
	}
	c.returns = ret
	c.schema = typeexpr.ToJSONSchema(ret)
	c.hint = typeexpr.TypeHint(c.schema)
	if c.kind, err = typeexpr.CanonicalKind(c.schema); err != nil {
		return nil, fmt.Errorf("%s: return type %s: %w", name, c.hint, err)
	}
	if c.prefix, err = heal.Prefix(c.schema); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tags, err := ParseServiceParameters(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	c.service = tags.Merge(service)
	return c, nil
}

// MustContract is like NewContract but panics on error.
func MustContract(name, doc string, params []Param, returns typeexpr.Type, service ServiceParameters) *Contract {
	c, err := NewContract(name, doc, params, returns, service)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Contract) Name() string               { return c.name }
func (c *Contract) Doc() string                { return c.doc }
func (c *Contract) Params() []Param            { return slices.Clone(c.params) }
func (c *Contract) Returns() typeexpr.Type     { return c.returns }
func (c *Contract) Service() ServiceParameters { return c.service }
func (c *Contract) ReturnHint() string         { return c.hint }
func (c *Contract) Kind() typeexpr.Shape       { return c.kind }
func (c *Contract) Prefix() string             { return c.prefix }

// Schema returns the return-value schema. It is shared; callers must not modify it.
func (c *Contract) Schema() *typeexpr.Schema { return c.schema }

// CanBeNull reports whether null is an acceptable answer: the return type is null,
// or it is an object or array whose absence the caller already handles.
func (c *Contract) CanBeNull() bool {
	return c.kind == typeexpr.ShapeNull || !c.kind.Wrapped()
}

// Signature renders "name(a: T, b: U): R".
func (c *Contract) Signature() string {
	var b strings.Builder
	b.WriteString(c.name)
	b.WriteByte('(')
	for i, p := range c.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(c.paramHints[i])
	}
	b.WriteString("): ")
	b.WriteString(c.hint)
	return b.String()
}

type contractParamJSON struct {
	Name string           `json:"name"`
	Type *typeexpr.Schema `json:"type,omitempty"`
}

type contractJSON struct {
	Name              string              `json:"name"`
	DocComment        string              `json:"docComment"`
	Parameters        []contractParamJSON `json:"parameters"`
	ReturnType        *typeexpr.Schema    `json:"returnType"`
	ServiceParameters ServiceParameters   `json:"serviceParameters"`
}

// MarshalJSON encodes the contract with its types as JSON Schema, the form sent in
// prompt events.
func (c *Contract) MarshalJSON() ([]byte, error) {
	out := contractJSON{
		Name:              c.name,
		DocComment:        c.doc,
		Parameters:        make([]contractParamJSON, 0, len(c.params)),
		ReturnType:        c.schema,
		ServiceParameters: c.service,
	}
	for _, p := range c.params {
		pj := contractParamJSON{Name: p.Name}
		if p.Type != nil {
			pj.Type = typeexpr.ToJSONSchema(p.Type)
		}
		out.Parameters = append(out.Parameters, pj)
	}
	return json.Marshal(out)
}
