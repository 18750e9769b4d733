package extract

import (
	"context"
	"time"
)

// TextExtractor is the opaque text-extraction engine boundary:
// file -> text plus an extraction-quality score.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Tokens     int
	SourceType string // "PDF" | "IMAGE"
	Method     string // "pdf-text" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}
