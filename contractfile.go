package promptfn

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skosovsky/promptfn/typeexpr"
)

type contractFile struct {
	Functions []contractEntry `yaml:"functions"`
}

type contractEntry struct {
	Name    string            `yaml:"name"`
	Doc     string            `yaml:"doc"`
	Params  []paramEntry      `yaml:"params"`
	Returns string            `yaml:"returns"`
	Service ServiceParameters `yaml:"service"`
}

type paramEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadContracts reads contract declarations from YAML. Types are written as type hints:
//
//	functions:
//	  - name: classify
//	    doc: |
//	      /** Classify the sentiment of a review. @temperature 0 */
//	    params:
//	      - {name: review, type: string}
//	    returns: '"positive" | "negative" | "neutral"'
//
// A parameter without a type accepts any value.
func LoadContracts(r io.Reader) ([]*Contract, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f contractFile
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContract, err)
	}
	out := make([]*Contract, 0, len(f.Functions))
	for i, e := range f.Functions {
		c, err := e.contract()
		if err != nil {
			return nil, fmt.Errorf("functions[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// LoadContractFile is LoadContracts on the named file.
func LoadContractFile(path string) ([]*Contract, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadContracts(f)
}

func (e contractEntry) contract() (*Contract, error) {
	if e.Returns == "" {
		return nil, fmt.Errorf("%w: %s: missing return type", ErrInvalidContract, e.Name)
	}
	returns, err := typeexpr.ParseHint(e.Returns)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: returns: %w", ErrInvalidContract, e.Name, err)
	}
	params := make([]Param, 0, len(e.Params))
	for _, p := range e.Params {
		var t typeexpr.Type
		if p.Type != "" {
			if t, err = typeexpr.ParseHint(p.Type); err != nil {
				return nil, fmt.Errorf("%w: %s: parameter %s: %w", ErrInvalidContract, e.Name, p.Name, err)
			}
		}
		params = append(params, Param{Name: p.Name, Type: t})
	}
	return NewContract(e.Name, e.Doc, params, returns, e.Service)
}
