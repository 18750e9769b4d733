package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/medview/labreport/constants"
	"github.com/medview/labreport/internal/llm"
	"github.com/medview/labreport/internal/report"
)

// testPayload is the wire shape of one normalized test in a model
// response, for both the per-test and the combined call.
type testPayload struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Status   string  `json:"status"`
	RefRange struct {
		Low  float64 `json:"low"`
		High float64 `json:"high"`
	} `json:"ref_range"`
}

// convertTests applies the post-processing invariants shared by both
// call modes: drop records missing a required field, map unrecognized
// statuses to normal, and collapse duplicates on
// (name-lowercased, value, unit-lowercased).
func convertTests(payloads []testPayload) []report.NormalizedTest {
	seen := make(map[string]struct{}, len(payloads))
	out := make([]report.NormalizedTest, 0, len(payloads))
	for _, p := range payloads {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Unit) == "" {
			continue
		}
		t := report.NormalizedTest{
			Name:   strings.TrimSpace(p.Name),
			Value:  p.Value,
			Unit:   strings.TrimSpace(p.Unit),
			Status: constants.ParseTestStatus(p.Status),
			RefRange: report.RefRange{
				Low:  p.RefRange.Low,
				High: p.RefRange.High,
			},
		}
		key := t.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// checkPlausibility returns a non-empty reason when any record violates
// a category sanity bound. A violation is treated as likely fabrication
// and surfaces as an integrity failure, not a parse failure.
func checkPlausibility(tests []report.NormalizedTest) string {
	for _, t := range tests {
		if reason := constants.ImplausibleValue(t.Name, t.Value); reason != "" {
			return reason
		}
	}
	return ""
}

// NormalizationResult is the decomposed-mode stage output.
type NormalizationResult struct {
	Tests      []report.NormalizedTest
	Confidence float32
}

// NormalizeStage converts repaired test strings into structured records
// one model call per string (the decomposed path). Normalization has no
// safe fallback: a missing backend propagates as an error.
type NormalizeStage struct {
	gen         llm.Generator
	logger      *slog.Logger
	temperature float32
	maxTokens   int32
}

func NewNormalizeStage(gen llm.Generator, logger *slog.Logger) *NormalizeStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &NormalizeStage{gen: gen, logger: logger, temperature: 0.3, maxTokens: 300}
}

// Run normalizes each repaired string individually. Strings the model
// rejects (literal null) or that fail to parse are skipped; the
// confidence heuristic rewards completeness without ever claiming
// near-certainty.
func (s *NormalizeStage) Run(ctx context.Context, raw []string) (NormalizationResult, error) {
	if len(raw) == 0 {
		return NormalizationResult{}, nil
	}

	payloads := make([]testPayload, 0, len(raw))
	for _, testString := range raw {
		p, ok, err := s.normalizeOne(ctx, testString)
		if err != nil {
			return NormalizationResult{}, err
		}
		if ok {
			payloads = append(payloads, p)
		}
	}

	tests := convertTests(payloads)
	conf := normalizationConfidence(len(raw), len(tests))
	s.logger.Info("pipeline.normalize.ok",
		"raw_count", len(raw),
		"accepted_count", len(tests),
		"confidence", conf,
	)
	return NormalizationResult{Tests: tests, Confidence: conf}, nil
}

func (s *NormalizeStage) normalizeOne(ctx context.Context, testString string) (testPayload, bool, error) {
	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:          llm.BuildNormalizePrompt(testString),
		Temperature:     s.temperature,
		MaxOutputTokens: s.maxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			return testPayload{}, false, fmt.Errorf("normalize %q: %w", testString, err)
		}
		s.logger.Warn("pipeline.normalize.call_failed", "test", testString, "error", err)
		return testPayload{}, false, nil
	}
	if strings.EqualFold(strings.TrimSpace(out), "null") {
		return testPayload{}, false, nil
	}
	recovered := llm.RecoverJSON([]byte(out))
	if len(recovered) == 0 {
		s.logger.Warn("pipeline.normalize.unparseable", "test", testString)
		return testPayload{}, false, nil
	}
	// All five fields must be present; a partial object is dropped, not
	// padded with zero values.
	if err := llm.ValidateJSONAgainstSchema(llm.BuildTestSchema(), recovered); err != nil {
		s.logger.Warn("pipeline.normalize.incomplete", "test", testString, "error", err)
		return testPayload{}, false, nil
	}
	p, err := llm.DecodeJSON[testPayload](recovered)
	if err != nil {
		s.logger.Warn("pipeline.normalize.unparseable", "test", testString, "error", err)
		return testPayload{}, false, nil
	}
	return p, true, nil
}

// normalizationConfidence is 0.85 + 0.10 * accepted/raw, capped at 0.95.
func normalizationConfidence(rawCount, acceptedCount int) float32 {
	if rawCount == 0 {
		return 0
	}
	conf := 0.85 + 0.10*(float32(acceptedCount)/float32(rawCount))
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}
