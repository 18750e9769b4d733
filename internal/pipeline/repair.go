package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/medview/labreport/internal/llm"
)

// RepairStage asks the model to re-segment raw text blocks into
// canonical "Name Value Unit (Status)" strings, fixing transcription
// noise. It is best-effort and never load-bearing: any backend or parse
// failure returns the input unchanged.
type RepairStage struct {
	gen         llm.Generator
	logger      *slog.Logger
	temperature float32
	maxTokens   int32
}

func NewRepairStage(gen llm.Generator, logger *slog.Logger) *RepairStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepairStage{gen: gen, logger: logger, temperature: 0.3, maxTokens: 500}
}

// Run joins the raw blocks into one text and returns the cleaned test
// strings. The output may be shorter, longer, or identical to the
// input: the model may split or merge blocks.
func (s *RepairStage) Run(ctx context.Context, blocks []string) []string {
	if len(blocks) == 0 {
		return blocks
	}

	combined := strings.Join(blocks, " ")
	out, err := s.gen.Generate(ctx, llm.Request{
		Prompt:          llm.BuildRepairPrompt(combined),
		Temperature:     s.temperature,
		MaxOutputTokens: s.maxTokens,
	})
	if err != nil {
		s.logger.Warn("pipeline.repair.skipped", "error", err)
		return blocks
	}

	cleaned, err := llm.DecodeJSON[[]string]([]byte(out))
	if err != nil {
		s.logger.Warn("pipeline.repair.unparseable", "error", err)
		return blocks
	}
	if len(cleaned) == 0 {
		s.logger.Warn("pipeline.repair.empty_result")
		return blocks
	}

	s.logger.Info("pipeline.repair.ok", "in_blocks", len(blocks), "out_tests", len(cleaned))
	return cleaned
}
