package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema for the portable export document. Shape errors reject the whole
// document before any state mutates.
var exportDocumentSchema = map[string]any{
	"type":     "object",
	"required": []string{"version", "mode", "config"},
	"properties": map[string]any{
		"version": map[string]any{"type": "string"},
		"mode":    map[string]any{"type": "string", "enum": []string{"standard", "advanced"}},
		"config": map[string]any{
			"type":     "object",
			"required": []string{"widget_settings"},
			"properties": map[string]any{
				"grid_layout": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"row"},
						"properties": map[string]any{
							"row": map[string]any{
								"type":     "array",
								"items":    map[string]any{"type": "string"},
								"minItems": 1,
								"maxItems": 2,
							},
						},
					},
				},
				"section_order": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"widget_settings": map[string]any{"type": "object"},
				"quick_actions": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"maxItems":    MaxQuickActions,
					"uniqueItems": true,
				},
				"favorite_cols": map[string]any{"type": "integer", "minimum": 2, "maximum": 6},
				"my_apps_rows":  map[string]any{"type": "integer", "minimum": 0, "maximum": 5},
			},
		},
	},
}

// DocumentValidator validates JSON documents against named schemas, caching
// compiled schemas.
type DocumentValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewDocumentValidator builds a validator backed by jsonschema v5.
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// ValidateExport checks a decoded export document against the portable
// document schema.
func (v *DocumentValidator) ValidateExport(payload map[string]any) error {
	schema, err := v.schemaFor("export", exportDocumentSchema)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("layout: export document failed validation: %w", err)
	}
	return nil
}

func (v *DocumentValidator) schemaFor(name string, raw map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("layout: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("layout: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("layout: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}
