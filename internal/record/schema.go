package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The persistence client validates serialized records
// against it before sending, which pins down the stable key names the
// downstream table mapping relies on.
func BuildRecordJSONSchema() map[string]any {
	props := map[string]any{
		"received_at": map[string]any{"type": "string"},
		"created_at":  map[string]any{"type": "string"},
		"status":      map[string]any{"type": "string", "minLength": 1},

		"event_name":       map[string]any{"type": "string", "minLength": 1},
		"event_start_date": isoDateProp(),
		"event_end_date":   isoDateProp(),
		"event_time":       map[string]any{"type": "string"},
		"event_venue":      map[string]any{"type": "string"},
		"event_url":        map[string]any{"type": "string"},

		"desired_date": isoDateProp(),
		"desired_time": map[string]any{"type": "string"},

		"customer_name":     map[string]any{"type": "string", "minLength": 1},
		"customer_furigana": map[string]any{"type": "string"},
		"customer_email":    map[string]any{"type": "string", "pattern": `^[^@\s]+@[^@\s]+\.[^@\s]+$`},
		"customer_phone":    map[string]any{"type": "string"},
		"customer_age":      map[string]any{"type": "integer", "exclusiveMinimum": 0, "exclusiveMaximum": 120},
		"monthly_rent":      map[string]any{"type": "integer", "minimum": 0},
		"monthly_payment":   map[string]any{"type": "integer", "minimum": 0},
		"postal_code":       map[string]any{"type": "string"},
		"address":           map[string]any{"type": "string"},
		"comments":          map[string]any{"type": "string"},
		"lead_source":       map[string]any{"type": "string"},

		"housing_type":         map[string]any{"type": "string"},
		"consideration_period": map[string]any{"type": "string"},

		"store_name":     map[string]any{"type": "string"},
		"store_address":  map[string]any{"type": "string"},
		"business_hours": map[string]any{"type": "string"},
		"closed_days":    map[string]any{"type": "string"},
	}
	required := []string{"received_at", "created_at", "status", "event_name", "customer_name", "customer_email"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func isoDateProp() map[string]any {
	return map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
