package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hydrohub/ledger/pkg/ledger"
)

// Per-kind payload schemas. The schema contract evolves additively only:
// additionalProperties stays open so old verifiers accept new fields.
var payloadSchemas = map[ledger.Kind]string{
	ledger.KindSale: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["gallons", "unit_price_centavos", "total_centavos", "payment_type"],
		"properties": {
			"customer_name": {"type": "string"},
			"gallons": {"type": "integer", "minimum": 0},
			"unit_price_centavos": {"type": "integer", "minimum": 0},
			"total_centavos": {"type": "integer", "minimum": 0},
			"payment_type": {"enum": ["Cash", "GCash", "PayMaya", "Bank Transfer", "On-account"]},
			"staff_id": {"type": "string"}
		}
	}`,
	ledger.KindExpense: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["category", "amount_centavos"],
		"properties": {
			"category": {"type": "string", "minLength": 1},
			"amount_centavos": {"type": "integer", "minimum": 0},
			"vendor": {"type": "string"},
			"note": {"type": "string"},
			"staff_id": {"type": "string"}
		}
	}`,
	ledger.KindInventoryAdjustment: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["item_id", "change_type", "quantity_delta"],
		"properties": {
			"item_id": {"type": "string", "minLength": 1},
			"item_name": {"type": "string"},
			"change_type": {"enum": ["restock", "consume", "stock_count", "damage"]},
			"quantity_delta": {"type": "integer"},
			"staff_id": {"type": "string"}
		}
	}`,
	ledger.KindCorrection: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["corrects_entry_id", "corrects_sequence", "reason"],
		"properties": {
			"corrects_entry_id": {"type": "string", "minLength": 1},
			"corrects_sequence": {"type": "integer", "minimum": 0},
			"reason": {"type": "string", "minLength": 1},
			"staff_id": {"type": "string"}
		}
	}`,
	ledger.KindCheckpoint: `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"required": ["through_sequence", "through_hash"],
		"properties": {
			"through_sequence": {"type": "integer", "minimum": 0},
			"through_hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"}
		}
	}`,
}

// Validator compiles the payload schemas once and checks payloads against the
// schema for their event kind. It satisfies ledger.Validator.
type Validator struct {
	schemas map[ledger.Kind]*jsonschema.Schema
}

// NewValidator compiles all payload schemas.
func NewValidator() (*Validator, error) {
	compiled := make(map[ledger.Kind]*jsonschema.Schema, len(payloadSchemas))
	for kind, raw := range payloadSchemas {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		url := fmt.Sprintf("https://hydrohub.schemas.local/ledger/%s.schema.json", kind)
		if err := c.AddResource(url, strings.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("events: schema load for %s: %w", kind, err)
		}
		schema, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("events: schema compile for %s: %w", kind, err)
		}
		compiled[kind] = schema
	}
	return &Validator{schemas: compiled}, nil
}

// Validate checks payload against the schema for kind.
func (v *Validator) Validate(kind ledger.Kind, payload []byte) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return &ledger.ValidationError{Kind: kind, Reason: "unknown event kind"}
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &ledger.ValidationError{Kind: kind, Reason: "payload is not valid JSON", Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &ledger.ValidationError{Kind: kind, Reason: err.Error(), Err: err}
	}
	return nil
}
