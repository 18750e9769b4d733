package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTestStatus(t *testing.T) {
	assert.Equal(t, StatusLow, ParseTestStatus("low"))
	assert.Equal(t, StatusHigh, ParseTestStatus(" HIGH "))
	assert.Equal(t, StatusCritical, ParseTestStatus("Critical"))
	assert.Equal(t, StatusNormal, ParseTestStatus("normal"))
	// unrecognized statuses degrade rather than reject the record
	assert.Equal(t, StatusNormal, ParseTestStatus("borderline"))
	assert.Equal(t, StatusNormal, ParseTestStatus(""))
}

func TestTestStatusAbnormal(t *testing.T) {
	assert.False(t, StatusNormal.Abnormal())
	assert.True(t, StatusLow.Abnormal())
	assert.True(t, StatusHigh.Abnormal())
	assert.True(t, StatusCritical.Abnormal())
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "jpeg", NormalizeExt("jpeg"))
	assert.Equal(t, "", NormalizeExt("."))
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".pdf"))
	assert.Equal(t, IMAGE, MapExtToFormat("png"))
	assert.Equal(t, IMAGE, MapExtToFormat(".JPG"))
	assert.Equal(t, TEXT, MapExtToFormat("txt"))
	assert.Equal(t, "", MapExtToFormat("docx"))
}

func TestImplausibleValue(t *testing.T) {
	tests := []struct {
		name       string
		test       string
		value      float64
		wantReason bool
	}{
		{"hemoglobin in range", "Hemoglobin", 14.2, false},
		{"hemoglobin absurdly high", "Hemoglobin", 300, true},
		{"hemoglobin below floor", "hemoglobin A", 0.5, true},
		{"wbc in range", "WBC Count", 7200, false},
		{"white blood spelled out", "White Blood Cell Count", 500000, true},
		{"glucose in range", "Fasting Glucose", 95, false},
		{"glucose too high", "Glucose", 5000, true},
		{"negative always fails", "Platelets", -1, true},
		{"unknown category passes any value", "Platelets", 9e9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := ImplausibleValue(tt.test, tt.value)
			if tt.wantReason {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}
