package report

import "strconv"

// Ct thresholds: lower cycle-threshold readings indicate higher analyte
// concentration, so a low minimum Ct is a high-risk signal.
const (
	ctHighBelow    = 20.0
	ctModerateUpTo = 30.0
)

// Classify maps a report's available signals to a canonical risk level.
//
// Different producers populate different fields, and a single report must not
// be classified two different ways in two different views, so the precedence
// is fixed: the embedded suggestion's level wins, then the top-level
// risk_level field, then the Ct panel, then Unknown. Pure and total;
// malformed input degrades to Unknown.
func Classify(r Report) RiskLevel {
	if r.Suggestion != nil {
		if level, ok := ParseRiskLevel(r.Suggestion.RiskLevel); ok {
			return level
		}
	}

	if level, ok := ParseRiskLevel(r.RiskLevelField); ok {
		return level
	}

	if min, ok := minCt(r.CtValues); ok {
		switch {
		case min < ctHighBelow:
			return RiskHigh
		case min <= ctModerateUpTo:
			return RiskModerate
		default:
			return RiskLow
		}
	}

	return RiskUnknown
}

// minCt returns the minimum numeric reading in the panel. Non-numeric entries
// are discarded; an empty or fully non-numeric panel yields no signal.
func minCt(panel CtPanel) (float64, bool) {
	var min float64
	found := false
	for _, raw := range panel {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	return min, found
}
