package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medview/labreport/internal/report"
)

func someTests() []report.NormalizedTest {
	return []report.NormalizedTest{
		{Name: "Hemoglobin", Value: 10.2, Unit: "g/dL", Status: "low"},
	}
}

func TestValidateStage_AcceptsGroundedResults(t *testing.T) {
	gen := &fakeGen{
		t:            t,
		validateResp: `{"is_valid": true, "confidence_score": 0.92, "issues_found": [], "explanation": "all tests present in source"}`,
	}
	stage := NewValidateStage(gen, discardLogger(), 0)

	verdict, err := stage.Run(context.Background(), []string{"Hemoglobin 10.2 g/dL (Low)"}, someTests())

	require.NoError(t, err)
	assert.True(t, verdict.Accept(DefaultValidationThreshold))
	assert.Empty(t, verdict.Issues)
}

func TestValidateStage_FlagsFabrication(t *testing.T) {
	gen := &fakeGen{
		t:            t,
		validateResp: `{"is_valid": false, "confidence_score": 0.95, "issues_found": ["Total Cholesterol does not appear in the original text"], "explanation": "fabricated test"}`,
	}
	stage := NewValidateStage(gen, discardLogger(), 0)

	verdict, err := stage.Run(context.Background(), []string{"Hemoglobin 10.2 g/dL"}, someTests())

	require.NoError(t, err)
	assert.False(t, verdict.Accept(DefaultValidationThreshold))
	require.Len(t, verdict.Issues, 1)
}

func TestValidateStage_EmptyInputFailsWithoutModelCall(t *testing.T) {
	gen := &fakeGen{t: t}
	stage := NewValidateStage(gen, discardLogger(), 0)

	verdict, err := stage.Run(context.Background(), nil, someTests())
	require.NoError(t, err)
	assert.False(t, verdict.IsValid)
	assert.Equal(t, NoDataReason, verdict.Explanation)

	verdict, err = stage.Run(context.Background(), []string{"Hemoglobin 10.2"}, nil)
	require.NoError(t, err)
	assert.False(t, verdict.IsValid)
	assert.Equal(t, NoDataReason, verdict.Explanation)

	assert.Empty(t, gen.calls)
}

func TestValidateStage_UnparseableResponsePropagates(t *testing.T) {
	gen := &fakeGen{t: t, validateResp: "the results look fine to me"}
	stage := NewValidateStage(gen, discardLogger(), 0)

	_, err := stage.Run(context.Background(), []string{"x"}, someTests())

	assert.Error(t, err)
}

func TestValidateStage_BackendUnavailablePropagates(t *testing.T) {
	stage := NewValidateStage(&unavailableGen{}, discardLogger(), 0)

	_, err := stage.Run(context.Background(), []string{"x"}, someTests())

	assert.Error(t, err)
}

func TestVerdictAccept(t *testing.T) {
	tests := []struct {
		name    string
		verdict report.ValidationVerdict
		want    bool
	}{
		{"valid and confident", report.ValidationVerdict{IsValid: true, Confidence: 0.9}, true},
		{"exactly at threshold", report.ValidationVerdict{IsValid: true, Confidence: 0.7}, true},
		{"valid but unconfident", report.ValidationVerdict{IsValid: true, Confidence: 0.65}, false},
		{"invalid despite confidence", report.ValidationVerdict{IsValid: false, Confidence: 0.99}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.verdict.Accept(0.7))
		})
	}
}

func TestRejectionReason(t *testing.T) {
	lowConf := report.ValidationVerdict{IsValid: true, Confidence: 0.65, Explanation: "partially grounded"}
	assert.Equal(t, "low confidence validation (0.65): partially grounded", rejectionReason(lowConf, 0.7))

	withIssues := report.ValidationVerdict{Issues: []string{"extra test", "wrong unit"}}
	assert.Equal(t, "validation failed: extra test; wrong unit", rejectionReason(withIssues, 0.7))

	explanationOnly := report.ValidationVerdict{Explanation: "mismatch"}
	assert.Equal(t, "validation failed: mismatch", rejectionReason(explanationOnly, 0.7))

	assert.Equal(t, "validation failed", rejectionReason(report.ValidationVerdict{}, 0.7))
}
