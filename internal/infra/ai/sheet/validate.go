// Package sheet validates the model's decision-sheet JSON before it is trusted.
package sheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/bryanwahyu/grantsheet/internal/domain/grants"
	"github.com/bryanwahyu/grantsheet/internal/infra/ai/prompt"
)

var errNotObject = errors.New("top-level value is not a JSON object")

type Validator struct {
	strict   bool
	sections map[string]*jsonschema.Schema
}

// New compiles the per-section schemas once. strict adds enum enforcement.
func New(strict bool) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiled := make(map[string]*jsonschema.Schema, len(prompt.RequiredFields))
	for name, schemaMap := range sectionSchemas(strict) {
		b, err := json.Marshal(schemaMap)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", name, err)
		}
		url := name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		s, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		compiled[name] = s
	}
	return &Validator{strict: strict, sections: compiled}, nil
}

func (v *Validator) Strict() bool { return v.strict }

// Validate parses raw, checks the six top-level fields in contract order,
// then each section's nested structure. Failures are *grants.SheetError.
func (v *Validator) Validate(raw string) (*grants.DecisionSheet, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &grants.SheetError{Kind: grants.ErrMalformedJSON, Err: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &grants.SheetError{Kind: grants.ErrMalformedJSON, Err: errNotObject}
	}

	for _, field := range prompt.RequiredFields {
		if _, ok := obj[field]; !ok {
			return nil, &grants.SheetError{Kind: grants.ErrMissingField, Field: field}
		}
	}
	for _, field := range prompt.RequiredFields {
		if err := v.sections[field].Validate(obj[field]); err != nil {
			return nil, &grants.SheetError{Kind: grants.ErrInvalidStructure, Field: field, Err: err}
		}
	}

	var sheet grants.DecisionSheet
	if err := json.Unmarshal([]byte(raw), &sheet); err != nil {
		return nil, &grants.SheetError{Kind: grants.ErrMalformedJSON, Err: err}
	}
	return &sheet, nil
}
