package constants

import (
	"fmt"
	"strings"
)

// plausibilityBounds are hard sanity ranges for known test categories.
// Values outside these ranges are treated as likely fabrications no
// matter what confidence the model reports.
var plausibilityBounds = []struct {
	keywords []string
	min, max float64
}{
	{keywords: []string{"hemoglobin"}, min: 1, max: 30},
	{keywords: []string{"wbc", "white blood"}, min: 50, max: 200000},
	{keywords: []string{"glucose"}, min: 10, max: 1000},
}

// ImplausibleValue returns a non-empty reason when the value is negative
// or outside the sanity range for a recognized test category. An empty
// string means the value passed the gate.
func ImplausibleValue(name string, value float64) string {
	if value < 0 {
		return fmt.Sprintf("invalid negative value for %s", name)
	}
	lower := strings.ToLower(name)
	for _, b := range plausibilityBounds {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				if value < b.min || value > b.max {
					return fmt.Sprintf("unrealistic %s value: %g", name, value)
				}
				return ""
			}
		}
	}
	return ""
}
