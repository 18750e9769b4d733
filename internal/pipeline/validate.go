package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medview/labreport/internal/llm"
	"github.com/medview/labreport/internal/report"
)

// NoDataReason is the fixed rejection for an empty input on either side
// of the comparison. It never reaches the model.
const NoDataReason = "no data to validate"

// ValidateStage is the decomposed-mode integrity validator: a dedicated
// model call comparing the original repaired strings against a rendering
// of the normalized records. Validation has no safe fallback; backend
// and parse failures propagate.
type ValidateStage struct {
	gen         llm.Generator
	logger      *slog.Logger
	temperature float32 // low, validation must be consistent
	maxTokens   int32
}

func NewValidateStage(gen llm.Generator, logger *slog.Logger, temperature float32) *ValidateStage {
	if logger == nil {
		logger = slog.Default()
	}
	if temperature <= 0 {
		temperature = 0.1
	}
	return &ValidateStage{gen: gen, logger: logger, temperature: temperature, maxTokens: 400}
}

// Run produces the verdict for one request. The verdict is computed
// once and never mutated; acceptance is the caller's decision via
// ValidationVerdict.Accept.
func (s *ValidateStage) Run(ctx context.Context, original []string, tests []report.NormalizedTest) (report.ValidationVerdict, error) {
	if len(original) == 0 || len(tests) == 0 {
		return report.ValidationVerdict{IsValid: false, Explanation: NoDataReason}, nil
	}

	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:          llm.BuildValidationPrompt(strings.Join(original, " "), tests),
		Temperature:     s.temperature,
		MaxOutputTokens: s.maxTokens,
	})
	if err != nil {
		return report.ValidationVerdict{}, fmt.Errorf("validate call: %w", err)
	}

	verdict, err := llm.DecodeJSON[report.ValidationVerdict]([]byte(out))
	if err != nil {
		s.logger.Error("pipeline.validate.unparseable", "error", err)
		return report.ValidationVerdict{}, fmt.Errorf("validate call: %w", err)
	}

	s.logger.Info("pipeline.validate.ok",
		"is_valid", verdict.IsValid,
		"confidence", verdict.Confidence,
		"issues", len(verdict.Issues),
	)
	return verdict, nil
}

// rejectionReason renders a failed verdict into a short, debuggable
// reason without leaking model chain-of-thought.
func rejectionReason(v report.ValidationVerdict, threshold float32) string {
	if v.IsValid && v.Confidence < threshold {
		return fmt.Sprintf("low confidence validation (%.2f): %s", v.Confidence, v.Explanation)
	}
	if len(v.Issues) > 0 {
		return "validation failed: " + strings.Join(v.Issues, "; ")
	}
	if v.Explanation != "" {
		return "validation failed: " + v.Explanation
	}
	return "validation failed"
}
