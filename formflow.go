// Package formflow is the entry point for callers that want to evaluate a
// dynamic form without wiring the packages by hand. Forms are described by
// pkg/schema, filled in through pkg/session, and can be imported from OpenAPI
// request bodies with pkg/openapi.
package formflow

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
)

// Result aliases session.Result for callers of Check.
type Result = session.Result

// NewSession exposes the session constructor from the top-level module.
func NewSession(options ...session.Option) *session.Session {
	return session.New(options...)
}

// LoadForm reads a JSON or YAML form document from src.
func LoadForm(ctx context.Context, src schema.Source) (schema.Form, error) {
	return schema.Load(ctx, nil, src)
}

// ParseValues decodes a flat JSON or YAML object of field values. Strings,
// numbers, booleans and string lists are accepted.
func ParseValues(data []byte) (schema.Values, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("formflow: parse values: %w", err)
	}
	values := make(schema.Values, len(raw))
	for id, item := range raw {
		value, err := schema.FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("formflow: value %q: %w", id, err)
		}
		values[id] = value
	}
	return values, nil
}

// Check loads form with values as the initial value-set and submits it once.
// Derived fields are recomputed before validation, so the result carries
// their values too.
func Check(form schema.Form, values schema.Values, options ...session.Option) (Result, error) {
	s := session.New(options...)
	if err := s.Load(form, values); err != nil {
		return Result{}, err
	}
	return s.Submit()
}

// ImportOpenAPI converts the request body of an OpenAPI operation into a form.
func ImportOpenAPI(ctx context.Context, data []byte, operationID string, options ...openapi.Option) (schema.Form, error) {
	return openapi.New(options...).Import(ctx, data, operationID)
}
