package gap

// Severity bands a cell's gap percentage for the heatmap. The thresholds are
// a presentation contract shared with the dashboard and must not drift.
type Severity string

const (
	SeverityNone     Severity = "none" // no gap percentage (expected was zero or missing)
	SeverityAhead    Severity = "ahead"
	SeverityGood     Severity = "good"
	SeverityWarning  Severity = "warning"
	SeverityElevated Severity = "elevated"
	SeverityCritical Severity = "critical"
)

// Band classifies a gap percentage into its severity band.
func Band(pct *float64) Severity {
	if pct == nil {
		return SeverityNone
	}
	switch {
	case *pct <= 0:
		return SeverityAhead
	case *pct < 15:
		return SeverityGood
	case *pct < 30:
		return SeverityWarning
	case *pct < 50:
		return SeverityElevated
	default:
		return SeverityCritical
	}
}
