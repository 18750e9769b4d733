package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/medview/labreport/internal/extract"
	"github.com/medview/labreport/internal/llm"
)

// Prompt fingerprints used to route fake responses to the right stage.
const (
	repairMarker    = "Extract and clean medical test results"
	normalizeMarker = "Parse this medical test result"
	validateMarker  = "medical expert validator"
	summaryMarker   = "helping patients understand"
	combinedMarker  = "validate your own output"
)

// fakeGen scripts the generative backend per stage. normalizeFn
// receives the full normalize prompt so responses can key off the
// embedded test string.
type fakeGen struct {
	t *testing.T

	repairResp   string
	repairErr    error
	combinedResp string
	combinedErr  error
	validateResp string
	validateErr  error
	summaryResp  string
	summaryErr   error
	normalizeFn  func(prompt string) (string, error)

	calls []string
}

func (f *fakeGen) Generate(_ context.Context, req llm.Request) (string, error) {
	switch {
	case strings.Contains(req.Prompt, repairMarker):
		f.calls = append(f.calls, "repair")
		return f.repairResp, f.repairErr
	case strings.Contains(req.Prompt, combinedMarker):
		f.calls = append(f.calls, "combined")
		return f.combinedResp, f.combinedErr
	case strings.Contains(req.Prompt, normalizeMarker):
		f.calls = append(f.calls, "normalize")
		if f.normalizeFn == nil {
			return "null", nil
		}
		return f.normalizeFn(req.Prompt)
	case strings.Contains(req.Prompt, validateMarker):
		f.calls = append(f.calls, "validate")
		return f.validateResp, f.validateErr
	case strings.Contains(req.Prompt, summaryMarker):
		f.calls = append(f.calls, "summary")
		return f.summaryResp, f.summaryErr
	default:
		f.t.Fatalf("unexpected prompt: %.80s", req.Prompt)
		return "", nil
	}
}

func (f *fakeGen) called(stage string) bool {
	for _, c := range f.calls {
		if c == stage {
			return true
		}
	}
	return false
}

// unavailableGen models a backend with no configured credential.
type unavailableGen struct {
	calls int
}

func (g *unavailableGen) Generate(context.Context, llm.Request) (string, error) {
	g.calls++
	return "", llm.ErrUnavailable
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestOrchestrator(gen llm.Generator, mode Mode, threshold float32) *Orchestrator {
	logger := discardLogger()
	source := extract.NewSourceAdapter(nil, logger)
	return NewOrchestrator(
		logger,
		source,
		NewRepairStage(gen, logger),
		NewCombinedStage(gen, logger, 0),
		NewNormalizeStage(gen, logger),
		NewValidateStage(gen, logger, 0),
		NewSummaryStage(gen, logger, 0),
		threshold,
		mode,
	)
}
