package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medview/labreport/constants"
)

func TestRawExtractionEmpty(t *testing.T) {
	assert.True(t, RawExtraction{}.Empty())
	assert.True(t, RawExtraction{RawBlocks: []string{"", "  \n"}}.Empty())
	assert.False(t, RawExtraction{RawBlocks: []string{"", "Hemoglobin 10.2"}}.Empty())
}

func TestNormalizedTestDedupKey(t *testing.T) {
	a := NormalizedTest{Name: "Hemoglobin", Value: 10.2, Unit: "g/dL"}
	b := NormalizedTest{Name: "HEMOGLOBIN", Value: 10.2, Unit: "G/DL"}
	c := NormalizedTest{Name: "Hemoglobin", Value: 10.3, Unit: "g/dL"}

	assert.Equal(t, a.DedupKey(), b.DedupKey())
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())
}

func TestNormalizedTestDescribe(t *testing.T) {
	test := NormalizedTest{Name: "Hemoglobin", Value: 10.2, Unit: "g/dL", Status: constants.StatusLow}
	assert.Equal(t, "Hemoglobin: 10.2 g/dL (low)", test.Describe())
}

func TestOutcomeConstructors(t *testing.T) {
	ok := Success([]NormalizedTest{{Name: "Glucose"}}, "fine", []string{"x"})
	assert.True(t, ok.IsSuccess())
	assert.Equal(t, constants.ProcessingOK, ok.Status)
	assert.Empty(t, ok.Reason)

	rej := Rejected(StageValidated, "validation failed")
	assert.False(t, rej.IsSuccess())
	assert.Equal(t, constants.ProcessingUnprocessed, rej.Status)
	assert.Equal(t, StageValidated, rej.Stage)

	errd := Errored(StageNormalized, "internal processing error")
	assert.Equal(t, constants.ProcessingError, errd.Status)
	assert.Equal(t, StageNormalized, errd.Stage)
}
