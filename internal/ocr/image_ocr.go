package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/medview/labreport/constants"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (ExtractionResult, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	// TSV output: per-token text plus per-token confidence in one pass
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return ExtractionResult{SourceType: constants.IMAGE, Warnings: []string{string(errb)}},
			fmt.Errorf("tesseract: %w", err)
	}

	text, tokens, conf := parseTSV(string(out))
	return ExtractionResult{
		Text:       text,
		Tokens:     tokens,
		SourceType: constants.IMAGE,
		Method:     "image-ocr",
		Language:   e.cfg.TesseractLang,
		Confidence: conf,
	}, nil
}

// parseTSV keeps tokens whose confidence is > 0, joins them with single
// spaces, and returns the mean token confidence scaled to [0,1]. An
// output with no surviving tokens yields ("", 0, 0).
func parseTSV(out string) (string, int, float32) {
	lines := strings.Split(out, "\n")
	var words []string
	var sum float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue // defensive
		}
		conf, err := strconv.ParseFloat(cols[len(cols)-2], 64)
		if err != nil || conf <= 0 {
			continue
		}
		word := strings.TrimSpace(cols[len(cols)-1])
		if word == "" {
			continue
		}
		words = append(words, word)
		sum += conf
	}
	if len(words) == 0 {
		return "", 0, 0
	}
	mean := sum / float64(len(words)) // 0..100
	return strings.Join(words, " "), len(words), float32(mean / 100.0)
}
