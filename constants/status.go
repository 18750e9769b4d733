package constants

import "strings"

// TestStatus is the canonical flag on a normalized lab test result.
type TestStatus string

// Stable values (these exact strings appear in API responses).
const (
	StatusNormal   TestStatus = "normal"
	StatusLow      TestStatus = "low"
	StatusHigh     TestStatus = "high"
	StatusCritical TestStatus = "critical"
)

// ParseTestStatus maps a free-form status string from the model to a
// TestStatus. Unrecognized strings map to normal instead of rejecting
// the whole record.
func ParseTestStatus(s string) TestStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return StatusLow
	case "high":
		return StatusHigh
	case "critical":
		return StatusCritical
	default:
		return StatusNormal
	}
}

// Abnormal reports whether the status warrants a per-test explanation.
func (s TestStatus) Abnormal() bool {
	return s != StatusNormal
}

// ProcessingStatus is the outcome tag on a pipeline response.
type ProcessingStatus string

const (
	ProcessingOK          ProcessingStatus = "ok"
	ProcessingError       ProcessingStatus = "error"
	ProcessingUnprocessed ProcessingStatus = "unprocessed"
)
