package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medview/labreport/internal/report"
)

func TestSummaryStage_ParsesSections(t *testing.T) {
	gen := &fakeGen{
		t: t,
		summaryResp: "SUMMARY: Your hemoglobin is a bit low.\n" +
			"EXPLANATIONS:\n" +
			"- Low hemoglobin may indicate anemia.\n" +
			"- High white blood cell counts can occur with infections.\n",
	}
	stage := NewSummaryStage(gen, discardLogger(), 0)

	sum := stage.Run(context.Background(), someTests())

	assert.Equal(t, "Your hemoglobin is a bit low.", sum.Summary)
	require.Len(t, sum.Explanations, 2)
	assert.Equal(t, "Low hemoglobin may indicate anemia.", sum.Explanations[0])
}

func TestSummaryStage_NoTestsSkipsModel(t *testing.T) {
	gen := &fakeGen{t: t}
	stage := NewSummaryStage(gen, discardLogger(), 0)

	sum := stage.Run(context.Background(), nil)

	assert.Equal(t, noResultsSummary, sum.Summary)
	assert.Empty(t, sum.Explanations)
	assert.Empty(t, gen.calls)
}

func TestSummaryStage_BackendUnavailableDegrades(t *testing.T) {
	stage := NewSummaryStage(&unavailableGen{}, discardLogger(), 0)

	sum := stage.Run(context.Background(), someTests())

	assert.Equal(t, fallbackSummary, sum.Summary)
	assert.Empty(t, sum.Explanations)
}

func TestParseSummaryResponse(t *testing.T) {
	tests := []struct {
		name             string
		in               string
		wantSummary      string
		wantExplanations []string
	}{
		{
			name:             "well formed",
			in:               "SUMMARY: All results are in range.\nEXPLANATIONS:\n- Nothing unusual was found.",
			wantSummary:      "All results are in range.",
			wantExplanations: []string{"Nothing unusual was found."},
		},
		{
			name:             "asterisk and unicode bullets",
			in:               "SUMMARY: Two values stand out.\nEXPLANATIONS:\n* First point\n• Second point",
			wantSummary:      "Two values stand out.",
			wantExplanations: []string{"First point", "Second point"},
		},
		{
			name:             "missing summary line falls back",
			in:               "EXPLANATIONS:\n- Only an explanation.",
			wantSummary:      defaultSummary,
			wantExplanations: []string{"Only an explanation."},
		},
		{
			name:             "missing explanations fall back",
			in:               "SUMMARY: Everything looks fine.",
			wantSummary:      "Everything looks fine.",
			wantExplanations: []string{defaultExplanation},
		},
		{
			name:             "free text falls back entirely",
			in:               "The patient results were reviewed.",
			wantSummary:      defaultSummary,
			wantExplanations: []string{defaultExplanation},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSummaryResponse(tt.in)
			assert.Equal(t, report.PatientSummary{
				Summary:      tt.wantSummary,
				Explanations: tt.wantExplanations,
			}, got)
		})
	}
}
