package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/medview/labreport/constants"
)

// extractPDF reads the embedded text layer. A text layer is treated
// like direct text input: confidence 0.95 when non-empty. Scanned PDFs
// without a layer come back empty and fail the downstream empty-check.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return ExtractionResult{SourceType: constants.PDF, Warnings: []string{string(errb)}},
			fmt.Errorf("pdftotext: %w", err)
	}

	text := strings.TrimSpace(string(out))
	res := ExtractionResult{
		Text:       text,
		SourceType: constants.PDF,
		Method:     "pdf-text",
	}
	if text == "" {
		res.Warnings = append(res.Warnings, "pdf has no text layer")
		return res, nil
	}
	res.Confidence = 0.95
	return res, nil
}
