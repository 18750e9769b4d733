package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medview/labreport/internal/report"
)

// Direct text is trusted almost fully; an empty string still yields a
// block but with no downstream processability.
const (
	textConfidence      = 0.95
	emptyTextConfidence = 0.5
)

// SourceAdapter turns a raw input (typed text or a report file) into a
// RawExtraction. It owns the only RawExtraction created per request.
type SourceAdapter struct {
	extractor TextExtractor
	logger    *slog.Logger
}

func NewSourceAdapter(extractor TextExtractor, logger *slog.Logger) *SourceAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceAdapter{extractor: extractor, logger: logger}
}

// FromText wraps direct text input as a single raw block.
func (a *SourceAdapter) FromText(text string) report.RawExtraction {
	conf := float32(textConfidence)
	if text == "" {
		conf = emptyTextConfidence
	}
	return report.RawExtraction{RawBlocks: []string{text}, Confidence: conf}
}

// FromFile runs the text-extraction engine over a report file. If no
// token survives extraction, the result has no blocks and confidence 0.
// Engine failures are reported, not retried.
func (a *SourceAdapter) FromFile(ctx context.Context, path string) (report.RawExtraction, error) {
	res, err := a.extractor.Extract(ctx, path)
	if err != nil {
		return report.RawExtraction{}, fmt.Errorf("extract text: %w", err)
	}
	if res.Text == "" {
		a.logger.Warn("extract.empty", "path", path, "warnings", res.Warnings)
		return report.RawExtraction{Confidence: 0}, nil
	}
	a.logger.Info("extract.ok",
		"path", path,
		"method", res.Method,
		"tokens", res.Tokens,
		"confidence", res.Confidence,
	)
	return report.RawExtraction{RawBlocks: []string{res.Text}, Confidence: res.Confidence}, nil
}
