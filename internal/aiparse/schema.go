package aiparse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "listing.schema.json"

var numberOrNull = map[string]any{"type": []any{"number", "null"}}

// responseSchema is the contract a model response must satisfy before it is decoded.
var responseSchema = map[string]any{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []any{"classification", "confidence"},
	"properties": map[string]any{
		"classification":     map[string]any{"type": "string", "enum": []any{"listing", "other"}},
		"confidence":         map[string]any{"type": "string", "enum": []any{"high", "medium", "low"}},
		"full_address":       map[string]any{"type": []any{"string", "null"}},
		"asking_price":       numberOrNull,
		"total_units":        numberOrNull,
		"residential_units":  numberOrNull,
		"vacant_residential": numberOrNull,
		"commercial_units":   numberOrNull,
		"vacant_commercial":  numberOrNull,
		"is_vacant_lot":      map[string]any{"type": []any{"boolean", "null"}},
		"details": map[string]any{
			"type": []any{"object", "null"},
			"properties": map[string]any{
				"address_breakdown": map[string]any{"type": []any{"object", "null"}},
				"seller_info":       map[string]any{"type": []any{"object", "null"}},
				"financial_info":    map[string]any{"type": []any{"object", "null"}},
				"summary":           map[string]any{"type": []any{"string", "null"}},
			},
		},
	},
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validate checks data against the compiled response schema.
func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}
