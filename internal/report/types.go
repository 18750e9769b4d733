package report

import (
	"fmt"
	"strings"

	"github.com/medview/labreport/constants"
)

// RawExtraction is the output of the text source adapter: zero or more
// unstructured text blocks plus an extraction-quality score in [0,1].
// Immutable after creation.
type RawExtraction struct {
	RawBlocks  []string `json:"raw_blocks"`
	Confidence float32  `json:"confidence"`
}

// Empty reports whether no usable text was obtained.
func (r RawExtraction) Empty() bool {
	for _, b := range r.RawBlocks {
		if strings.TrimSpace(b) != "" {
			return false
		}
	}
	return true
}

// RefRange is the adult reference range for a test.
type RefRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// NormalizedTest is one structured lab test record.
type NormalizedTest struct {
	Name     string               `json:"name"`
	Value    float64              `json:"value"`
	Unit     string               `json:"unit"`
	Status   constants.TestStatus `json:"status"`
	RefRange RefRange             `json:"ref_range"`
}

// DedupKey identifies a test for duplicate collapsing: name and unit
// case-insensitive, value exact.
func (t NormalizedTest) DedupKey() string {
	return fmt.Sprintf("%s|%g|%s", strings.ToLower(t.Name), t.Value, strings.ToLower(t.Unit))
}

// Describe renders the test the way the validator prompt expects it.
func (t NormalizedTest) Describe() string {
	return fmt.Sprintf("%s: %g %s (%s)", t.Name, t.Value, t.Unit, t.Status)
}

// ValidationVerdict is the integrity validator's decision. Computed once
// per request and never mutated.
type ValidationVerdict struct {
	IsValid     bool     `json:"is_valid"`
	Confidence  float32  `json:"confidence_score"`
	Issues      []string `json:"issues_found,omitempty"`
	Explanation string   `json:"explanation"`
}

// Accept applies the acceptance rule: valid AND confident enough.
func (v ValidationVerdict) Accept(threshold float32) bool {
	return v.IsValid && v.Confidence >= threshold
}

// PatientSummary is the plain-language overview plus one short
// explanation per abnormal test.
type PatientSummary struct {
	Summary      string   `json:"summary"`
	Explanations []string `json:"explanations"`
}

// Stage names the pipeline state that produced an outcome.
type Stage string

const (
	StageStarted    Stage = "started"
	StageExtracted  Stage = "extracted"
	StageRepaired   Stage = "repaired"
	StageNormalized Stage = "normalized"
	StageValidated  Stage = "validated"
	StageSummarized Stage = "summarized"
)

// Outcome is the only externally visible result of a pipeline run.
// Exactly one of the three constructors applies: Success carries tests
// and a summary, Rejected and Errored carry a stage-tagged reason.
type Outcome struct {
	Status       constants.ProcessingStatus `json:"status"`
	Tests        []NormalizedTest           `json:"tests,omitempty"`
	Summary      string                     `json:"summary,omitempty"`
	Explanations []string                   `json:"explanations,omitempty"`
	Reason       string                     `json:"reason,omitempty"`
	Stage        Stage                      `json:"stage,omitempty"`
}

// Success builds the accepted outcome.
func Success(tests []NormalizedTest, summary string, explanations []string) Outcome {
	return Outcome{
		Status:       constants.ProcessingOK,
		Tests:        tests,
		Summary:      summary,
		Explanations: explanations,
	}
}

// Rejected builds the outcome for input the pipeline declined to accept.
func Rejected(stage Stage, reason string) Outcome {
	return Outcome{
		Status: constants.ProcessingUnprocessed,
		Reason: reason,
		Stage:  stage,
	}
}

// Errored builds the outcome for an unexpected fault. The reason is a
// short generic string; internal error detail stays in the logs.
func Errored(stage Stage, reason string) Outcome {
	return Outcome{
		Status: constants.ProcessingError,
		Reason: reason,
		Stage:  stage,
	}
}

// IsSuccess reports whether the run was accepted.
func (o Outcome) IsSuccess() bool {
	return o.Status == constants.ProcessingOK
}
