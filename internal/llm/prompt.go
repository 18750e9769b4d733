package llm

import (
	"fmt"
	"strings"

	"github.com/medview/labreport/internal/report"
)

// BuildRepairPrompt asks the model to re-segment noisy report text into
// canonical "Name Value Unit (Status)" strings.
func BuildRepairPrompt(combined string) string {
	parts := []string{
		"You are a medical expert. Extract and clean medical test results from the following text.",
		"Return ONLY a JSON array of individual test strings.",
		"",
		"Rules:",
		"1. Each test must use the format: TestName Value Unit (Status)",
		`2. Remove headers like "CBC:", "Complete Blood Count:", etc.`,
		"3. Fix common OCR errors and typos",
		"4. Standardize numbers (remove commas: 11,200 -> 11200)",
		`5. Fix minor typos in test names (e.g., "Hemoglogin" -> "Hemoglobin")`,
		"",
		"Example:",
		`Input: "CBC: Hemoglobin 10.2 g/dL (Low), WBC 11,200 /uL (High)"`,
		`Output: ["Hemoglobin 10.2 g/dL (Low)", "WBC 11200 /uL (High)"]`,
		"",
		fmt.Sprintf("Input: %q", combined),
		"",
		"Output:",
	}
	return strings.Join(parts, "\n")
}

// BuildNormalizePrompt asks for a single structured record for one
// repaired test string, or the literal null when it is not a test.
func BuildNormalizePrompt(testString string) string {
	parts := []string{
		"You are a medical AI assistant. Parse this medical test result and return ONLY a JSON object with the normalized information.",
		"",
		fmt.Sprintf("Input: %q", testString),
		"",
		"Return a JSON object with this exact structure:",
		`{"name": "standardized_test_name", "value": numeric_value, "unit": "standard_unit", "status": "normal|low|high|critical", "ref_range": {"low": numeric_low, "high": numeric_high}}`,
		"",
		"Rules:",
		`1. Standardize test names (e.g., "Hgb" -> "Hemoglobin", "WBC" -> "White Blood Cell Count")`,
		"2. Convert units to standard format (g/dL, /uL, mg/dL, etc.)",
		"3. Use standard reference ranges for adults",
		"4. Status must follow from the reference range",
		"5. Return ONLY the JSON object, no other text",
		"6. If you cannot parse the test, return null",
	}
	return strings.Join(parts, "\n")
}

// BuildValidationPrompt asks the model to compare the original text with
// the rendered normalized results and flag fabrications.
func BuildValidationPrompt(originalText string, tests []report.NormalizedTest) string {
	rendered := make([]string, 0, len(tests))
	for _, t := range tests {
		rendered = append(rendered, t.Describe())
	}
	parts := []string{
		"You are a medical expert validator. Compare the original medical test data with the normalized results to detect hallucinations or fabricated information.",
		"",
		"ORIGINAL TEXT:",
		originalText,
		"",
		"NORMALIZED RESULTS:",
		strings.Join(rendered, ", "),
		"",
		"Your task:",
		"1. Check that every normalized test name corresponds to a test mentioned in the original text",
		"2. Verify that values and units in the normalized results match the original data",
		"3. Ensure no completely new tests were invented",
		`4. Allow reasonable standardization (e.g., "Hgb" -> "Hemoglobin", unit-format normalization)`,
		"",
		"Respond with ONLY a JSON object:",
		`{"is_valid": true/false, "confidence_score": 0.0-1.0, "issues_found": ["list of specific issues if any"], "explanation": "brief explanation of validation result"}`,
		"",
		"If the normalized results accurately represent the original data (allowing for medical standardization), return is_valid: true.",
		"If there are fabricated tests, wrong values, or significant discrepancies, return is_valid: false.",
	}
	return strings.Join(parts, "\n")
}

// BuildSummaryPrompt produces the constrained non-diagnostic summary
// instruction. The response uses a two-section line format that
// ParseSummaryResponse understands.
func BuildSummaryPrompt(tests []report.NormalizedTest) string {
	lines := make([]string, 0, len(tests))
	for _, t := range tests {
		if t.Status.Abnormal() {
			lines = append(lines, fmt.Sprintf("- %s: %s (%g %s)", t.Name, t.Status, t.Value, t.Unit))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: normal", t.Name))
		}
	}
	parts := []string{
		"You are a medical assistant helping patients understand their lab results.",
		"Analyze the following test results and provide a patient-friendly explanation.",
		"",
		"IMPORTANT RULES:",
		"1. Do NOT diagnose or suggest medical conditions",
		"2. Only explain what the tests show, not what they might mean medically",
		"3. Use simple, non-technical language",
		"4. Be reassuring but factual",
		"5. Always recommend consulting with a healthcare provider",
		"6. Do NOT add any test results that are not listed below",
		"7. Give one brief (1-2 sentence), general explanation for every abnormal (low/high/critical) result",
		"",
		"Test Results:",
		strings.Join(lines, "\n"),
		"",
		"Format your response exactly as follows:",
		"SUMMARY: [brief overall summary, 1-2 sentences]",
		"EXPLANATIONS:",
		"- [explanation for abnormal result 1]",
		"- [explanation for abnormal result 2]",
	}
	return strings.Join(parts, "\n")
}

// BuildCombinedPrompt asks for normalization, validation, and the
// patient summary in one JSON payload, keeping validation grounded in
// the exact text the model already saw.
func BuildCombinedPrompt(tests []string) string {
	quoted := make([]string, 0, len(tests))
	for _, t := range tests {
		quoted = append(quoted, fmt.Sprintf("%q", t))
	}
	parts := []string{
		"You are a medical AI assistant. You receive cleaned lab test strings from a patient's report.",
		"Normalize them, validate your own output against the input, and write a patient-friendly summary, all in ONE JSON object.",
		"",
		"INPUT TESTS:",
		"[" + strings.Join(quoted, ", ") + "]",
		"",
		"Return ONLY a JSON object with this exact structure:",
		`{`,
		`  "normalized_tests": [{"name": "standardized_test_name", "value": numeric_value, "unit": "standard_unit", "status": "normal|low|high|critical", "ref_range": {"low": numeric_low, "high": numeric_high}}],`,
		`  "validation": {"is_valid": true/false, "confidence_score": 0.0-1.0, "issues_found": ["specific issues if any"], "explanation": "brief explanation"},`,
		`  "summary": "1-2 sentence plain-language overview",`,
		`  "explanations": ["one brief, general explanation per abnormal result"]`,
		`}`,
		"",
		"Rules:",
		`1. Standardize test names (e.g., "Hgb" -> "Hemoglobin", "WBC" -> "White Blood Cell Count")`,
		"2. Use standard adult reference ranges and derive status from them",
		"3. Do NOT invent tests that are not in the input; validation must flag any mismatch between input and normalized_tests",
		"4. The summary must not diagnose conditions and must recommend consulting a healthcare provider",
		"5. Skip input strings that are not lab tests; if none are, return an empty normalized_tests array",
	}
	return strings.Join(parts, "\n")
}
