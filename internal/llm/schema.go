package llm

// testProperties is the shared JSON Schema property set for one
// normalized test record.
func testProperties() map[string]any {
	return map[string]any{
		"name":   map[string]any{"type": "string", "minLength": 1},
		"value":  map[string]any{"type": "number"},
		"unit":   map[string]any{"type": "string"},
		"status": map[string]any{"type": "string"},
		"ref_range": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"low":  map[string]any{"type": "number"},
				"high": map[string]any{"type": "number"},
			},
			"required": []string{"low", "high"},
		},
	}
}

// BuildTestSchema returns the JSON Schema for one per-string normalize
// response. All five fields must be present: a per-test call that
// cannot produce a complete record is expected to answer null, and a
// partial object is dropped rather than padded with zero values.
func BuildTestSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": testProperties(),
		"required":   []string{"name", "value", "unit", "status", "ref_range"},
	}
}

// BuildCombinedSchema returns the JSON Schema (draft 2020-12 subset) for
// the combined-mode payload as a generic map. It is validated locally
// before decoding; status is deliberately a plain string so that an
// unrecognized status degrades to "normal" instead of failing the
// whole payload.
func BuildCombinedSchema() map[string]any {
	validationProps := map[string]any{
		"is_valid":         map[string]any{"type": "boolean"},
		"confidence_score": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"issues_found":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"explanation":      map[string]any{"type": "string"},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"normalized_tests": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": testProperties(),
					"required":   []string{"name", "value", "unit"},
				},
			},
			"validation": map[string]any{
				"type":       "object",
				"properties": validationProps,
				"required":   []string{"is_valid", "confidence_score"},
			},
			"summary":      map[string]any{"type": "string"},
			"explanations": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"normalized_tests", "validation", "summary"},
	}
}
