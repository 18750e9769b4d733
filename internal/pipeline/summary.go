package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/medview/labreport/internal/llm"
	"github.com/medview/labreport/internal/report"
)

// Fixed strings for the summary stage's short circuits.
const (
	noResultsSummary   = "No test results found to analyze."
	fallbackSummary    = "Unable to generate summary at this time."
	defaultSummary     = "Test results have been analyzed."
	defaultExplanation = "No explanations available."
)

// SummaryStage produces the plain-language overview plus one short
// explanation per abnormal test. Summary generation is presentation,
// not a gate: if the backend is unavailable or fails, it degrades to a
// fixed placeholder instead of failing the pipeline.
type SummaryStage struct {
	gen         llm.Generator
	logger      *slog.Logger
	temperature float32
	maxTokens   int32
}

func NewSummaryStage(gen llm.Generator, logger *slog.Logger, temperature float32) *SummaryStage {
	if logger == nil {
		logger = slog.Default()
	}
	if temperature <= 0 {
		temperature = 0.1
	}
	return &SummaryStage{gen: gen, logger: logger, temperature: temperature, maxTokens: 800}
}

// Run generates the patient summary for the validated tests. Zero tests
// short-circuit without invoking the model.
func (s *SummaryStage) Run(ctx context.Context, tests []report.NormalizedTest) report.PatientSummary {
	if len(tests) == 0 {
		return report.PatientSummary{Summary: noResultsSummary, Explanations: []string{}}
	}

	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:          llm.BuildSummaryPrompt(tests),
		Temperature:     s.temperature,
		MaxOutputTokens: s.maxTokens,
	})
	if err != nil {
		s.logger.Warn("pipeline.summary.degraded", "error", err)
		return report.PatientSummary{Summary: fallbackSummary, Explanations: []string{}}
	}

	sum := ParseSummaryResponse(out)
	s.logger.Info("pipeline.summary.ok", "explanations", len(sum.Explanations))
	return sum
}

// ParseSummaryResponse scans the two-section response line by line: the
// SUMMARY line carries the overview, every non-empty line after the
// EXPLANATIONS marker is one explanation entry, stripped of a single
// leading bullet character.
func ParseSummaryResponse(text string) report.PatientSummary {
	var summary string
	var explanations []string

	section := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, "SUMMARY"):
			section = "summary"
			if idx := strings.Index(line, ":"); idx != -1 {
				summary = strings.TrimSpace(line[idx+1:])
			}
		case strings.Contains(line, "EXPLANATIONS"):
			section = "explanations"
		case section == "explanations" && line != "":
			explanations = append(explanations, stripBullet(line))
		}
	}

	if summary == "" {
		summary = defaultSummary
	}
	if len(explanations) == 0 {
		explanations = []string{defaultExplanation}
	}
	return report.PatientSummary{Summary: summary, Explanations: explanations}
}

func stripBullet(line string) string {
	for _, prefix := range []string{"- ", "* ", "• ", "-", "*", "•"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return line
}
