package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/medview/labreport/internal/extract"
	"github.com/medview/labreport/internal/report"
)

// Mode selects the call strategy: one combined model invocation per
// request (default) or one call per stage.
type Mode string

const (
	ModeCombined   Mode = "combined"
	ModeDecomposed Mode = "decomposed"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCombined, ModeDecomposed:
		return Mode(s), nil
	case "":
		return ModeCombined, nil
	default:
		return "", fmt.Errorf("unknown pipeline mode: %q", s)
	}
}

// Reasons crossing the pipeline boundary. Internal fault detail stays in
// the logs.
const (
	noTestsReason         = "no tests found in input"
	noStructuredReason    = "no tests could be structured from input"
	processingErrorReason = "internal processing error"
)

// DefaultValidationThreshold is the verdict acceptance floor.
const DefaultValidationThreshold = 0.7

// Orchestrator sequences the pipeline stages over one request:
// extract -> repair -> normalize -> validate -> summarize. It
// short-circuits on empty extraction or a failed verdict and assembles
// the final outcome. All collaborators are injected; the orchestrator
// holds no mutable request state, so concurrent requests are
// independent.
type Orchestrator struct {
	logger    *slog.Logger
	source    *extract.SourceAdapter
	repair    *RepairStage
	combined  *CombinedStage
	normalize *NormalizeStage
	validate  *ValidateStage
	summary   *SummaryStage
	threshold float32
	mode      Mode
}

func NewOrchestrator(
	logger *slog.Logger,
	source *extract.SourceAdapter,
	repair *RepairStage,
	combined *CombinedStage,
	normalize *NormalizeStage,
	validate *ValidateStage,
	summary *SummaryStage,
	threshold float32,
	mode Mode,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = DefaultValidationThreshold
	}
	if mode == "" {
		mode = ModeCombined
	}
	return &Orchestrator{
		logger:    logger,
		source:    source,
		repair:    repair,
		combined:  combined,
		normalize: normalize,
		validate:  validate,
		summary:   summary,
		threshold: threshold,
		mode:      mode,
	}
}

// ProcessText runs the pipeline over direct text input.
func (o *Orchestrator) ProcessText(ctx context.Context, text string) report.Outcome {
	rid := uuid.New().String()
	return o.run(ctx, rid, o.source.FromText(text))
}

// ProcessFile runs the pipeline over a report file via the
// text-extraction engine.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) report.Outcome {
	rid := uuid.New().String()
	raw, err := o.source.FromFile(ctx, path)
	if err != nil {
		o.logger.Error("pipeline.extract.failed", "req_id", rid, "error", err)
		return report.Errored(report.StageExtracted, processingErrorReason)
	}
	return o.run(ctx, rid, raw)
}

// run is one sequential traversal of the state machine. Each stage owns
// its output and passes it by value to the next; nothing is cached or
// reused across runs.
func (o *Orchestrator) run(ctx context.Context, rid string, raw report.RawExtraction) report.Outcome {
	o.logger.Info("pipeline.started",
		"req_id", rid,
		"mode", string(o.mode),
		"blocks", len(raw.RawBlocks),
		"extraction_confidence", raw.Confidence,
	)

	if raw.Empty() {
		o.logger.Warn("pipeline.rejected", "req_id", rid, "stage", report.StageExtracted)
		return report.Rejected(report.StageExtracted, noTestsReason)
	}

	// Repair is best-effort and cannot itself reject.
	repaired := o.repair.Run(ctx, raw.RawBlocks)

	var (
		tests      []report.NormalizedTest
		verdict    report.ValidationVerdict
		sum        report.PatientSummary
		combinedOK bool
	)
	if o.mode == ModeCombined {
		res, err := o.combined.Run(ctx, repaired)
		if err != nil {
			o.logger.Warn("pipeline.combined.fallback", "req_id", rid, "error", err)
		} else {
			tests, verdict, sum = res.Tests, res.Verdict, res.Summary
			combinedOK = true
		}
	}
	if !combinedOK {
		nres, err := o.normalize.Run(ctx, repaired)
		if err != nil {
			o.logger.Error("pipeline.normalize.failed", "req_id", rid, "error", err)
			return report.Errored(report.StageNormalized, processingErrorReason)
		}
		tests = nres.Tests
	}

	if len(tests) == 0 {
		o.logger.Warn("pipeline.rejected", "req_id", rid, "stage", report.StageNormalized)
		return report.Rejected(report.StageNormalized, noStructuredReason)
	}
	if reason := checkPlausibility(tests); reason != "" {
		// Caught before the validator, surfaced as an integrity failure.
		o.logger.Warn("pipeline.rejected", "req_id", rid, "stage", report.StageValidated, "reason", reason)
		return report.Rejected(report.StageValidated, reason)
	}

	if !combinedOK {
		var err error
		verdict, err = o.validate.Run(ctx, repaired, tests)
		if err != nil {
			o.logger.Error("pipeline.validate.failed", "req_id", rid, "error", err)
			return report.Errored(report.StageValidated, processingErrorReason)
		}
	}
	if !verdict.Accept(o.threshold) {
		reason := rejectionReason(verdict, o.threshold)
		o.logger.Warn("pipeline.rejected", "req_id", rid, "stage", report.StageValidated, "reason", reason)
		return report.Rejected(report.StageValidated, reason)
	}

	if !combinedOK {
		sum = o.summary.Run(ctx, tests)
	}

	o.logger.Info("pipeline.succeeded",
		"req_id", rid,
		"tests", len(tests),
		"explanations", len(sum.Explanations),
	)
	return report.Success(tests, sum.Summary, sum.Explanations)
}

// DebugTrace captures the output of every stage of one traversal.
type DebugTrace struct {
	Extraction              report.RawExtraction     `json:"extraction"`
	Repaired                []string                 `json:"repaired_tests"`
	Normalized              []report.NormalizedTest  `json:"normalized_tests"`
	NormalizationConfidence float32                  `json:"normalization_confidence"`
	Verdict                 report.ValidationVerdict `json:"validation"`
	Summary                 report.PatientSummary    `json:"summary"`
}

// DebugRun runs every stage in sequence regardless of intermediate
// emptiness, recording what each stage produced. It never rejects; it
// only reports.
func (o *Orchestrator) DebugRun(ctx context.Context, text string) DebugTrace {
	rid := uuid.New().String()
	o.logger.Info("pipeline.debug.started", "req_id", rid)

	var trace DebugTrace
	trace.Extraction = o.source.FromText(text)
	trace.Repaired = o.repair.Run(ctx, trace.Extraction.RawBlocks)

	if nres, err := o.normalize.Run(ctx, trace.Repaired); err != nil {
		o.logger.Warn("pipeline.debug.normalize_failed", "req_id", rid, "error", err)
	} else {
		trace.Normalized = nres.Tests
		trace.NormalizationConfidence = nres.Confidence
	}

	if verdict, err := o.validate.Run(ctx, trace.Repaired, trace.Normalized); err != nil {
		o.logger.Warn("pipeline.debug.validate_failed", "req_id", rid, "error", err)
	} else {
		trace.Verdict = verdict
	}

	trace.Summary = o.summary.Run(ctx, trace.Normalized)
	return trace
}
