package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBand(t *testing.T) {
	tests := []struct {
		name     string
		pct      *float64
		expected Severity
	}{
		{name: "nil pct", pct: nil, expected: SeverityNone},
		{name: "negative gap is ahead", pct: f(-8.33), expected: SeverityAhead},
		{name: "zero is ahead", pct: f(0), expected: SeverityAhead},
		{name: "under 15", pct: f(14.99), expected: SeverityGood},
		{name: "exactly 15", pct: f(15), expected: SeverityWarning},
		{name: "under 30", pct: f(29.9), expected: SeverityWarning},
		{name: "exactly 30", pct: f(30), expected: SeverityElevated},
		{name: "under 50", pct: f(49.9), expected: SeverityElevated},
		{name: "exactly 50", pct: f(50), expected: SeverityCritical},
		{name: "over 100", pct: f(180), expected: SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Band(tt.pct))
		})
	}
}
