package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medview/labreport/internal/llm"
	"github.com/medview/labreport/internal/report"
)

// combinedPayload is the wire shape of the single-call response:
// normalization, validation, and summary from one model invocation.
type combinedPayload struct {
	NormalizedTests []testPayload `json:"normalized_tests"`
	Validation      struct {
		IsValid     bool     `json:"is_valid"`
		Confidence  float32  `json:"confidence_score"`
		Issues      []string `json:"issues_found"`
		Explanation string   `json:"explanation"`
	} `json:"validation"`
	Summary      string   `json:"summary"`
	Explanations []string `json:"explanations"`
}

// CombinedResult carries all three stage outputs of the combined call.
type CombinedResult struct {
	Tests   []report.NormalizedTest
	Verdict report.ValidationVerdict
	Summary report.PatientSummary
}

// CombinedStage issues one model call per request for normalization,
// validation, and summarization together: round-tripping the input once
// is materially cheaper and keeps validation grounded in the exact text
// the model already saw. Any failure here makes the orchestrator fall
// back to the decomposed path.
type CombinedStage struct {
	gen         llm.Generator
	logger      *slog.Logger
	temperature float32
	maxTokens   int32
}

func NewCombinedStage(gen llm.Generator, logger *slog.Logger, temperature float32) *CombinedStage {
	if logger == nil {
		logger = slog.Default()
	}
	if temperature <= 0 {
		temperature = 0.1
	}
	return &CombinedStage{gen: gen, logger: logger, temperature: temperature, maxTokens: 1000}
}

// Run sends the full repaired-string list and decodes the combined
// payload, validating it against the schema before trusting any field.
func (s *CombinedStage) Run(ctx context.Context, raw []string) (CombinedResult, error) {
	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:          llm.BuildCombinedPrompt(raw),
		Temperature:     s.temperature,
		MaxOutputTokens: s.maxTokens,
	})
	if err != nil {
		return CombinedResult{}, fmt.Errorf("combined call: %w", err)
	}

	recovered := llm.RecoverJSON([]byte(out))
	if len(recovered) == 0 {
		return CombinedResult{}, fmt.Errorf("combined call: no JSON in response")
	}
	if err := llm.ValidateJSONAgainstSchema(llm.BuildCombinedSchema(), recovered); err != nil {
		s.logger.Warn("pipeline.combined.schema_mismatch", "error", err)
		return CombinedResult{}, fmt.Errorf("combined call: %w", err)
	}

	payload, err := llm.DecodeJSON[combinedPayload](recovered)
	if err != nil {
		return CombinedResult{}, fmt.Errorf("combined call: %w", err)
	}

	tests := convertTests(payload.NormalizedTests)
	s.logger.Info("pipeline.combined.ok",
		"raw_count", len(raw),
		"accepted_count", len(tests),
		"is_valid", payload.Validation.IsValid,
		"confidence", payload.Validation.Confidence,
	)
	return CombinedResult{
		Tests: tests,
		Verdict: report.ValidationVerdict{
			IsValid:     payload.Validation.IsValid,
			Confidence:  payload.Validation.Confidence,
			Issues:      payload.Validation.Issues,
			Explanation: payload.Validation.Explanation,
		},
		Summary: report.PatientSummary{
			Summary:      payload.Summary,
			Explanations: payload.Explanations,
		},
	}, nil
}
