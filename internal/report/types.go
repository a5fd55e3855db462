// Package report holds the canonical report model: the wire shapes the portal
// service returns, the risk classifier, and the normalizer that reconciles the
// patient-facing and doctor-facing payloads into one view model.
package report

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// RiskLevel is the canonical risk taxonomy. Unknown means no usable signal
// existed, which is distinct from low risk.
type RiskLevel int

const (
	RiskUnknown RiskLevel = iota
	RiskLow
	RiskModerate
	RiskHigh
)

// String returns the display form of the level.
func (l RiskLevel) String() string {
	switch l {
	case RiskHigh:
		return "High"
	case RiskModerate:
		return "Moderate"
	case RiskLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// ParseRiskLevel maps a service-supplied risk string onto the taxonomy.
// Matching is case-insensitive; anything outside {High, Moderate, Low} is
// reported as not usable rather than as Unknown, so callers can fall through
// to the next signal.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return RiskHigh, true
	case "moderate":
		return RiskModerate, true
	case "low":
		return RiskLow, true
	}
	return RiskUnknown, false
}

// Suggestion is the embedded AI suggestion object. The service spells its keys
// as display labels.
type Suggestion struct {
	RiskLevel       string   `json:"Risk Level"`
	RiskProbability float64  `json:"Risk Probability"`
	Recommendations []string `json:"AI Suggestion"`
	Reasoning       []string `json:"Reasoning"`
}

// CtPanel maps a gene or target name to its cycle-threshold reading. Readings
// are kept as the raw strings the service sent; non-numeric entries are
// discarded at classification time, not at decode time.
type CtPanel map[string]string

// UnmarshalJSON tolerates the three shapes the service emits for ct_values:
// an object with string or numeric values, the literal string "N/A" when the
// panel is empty, or null. Anything else decodes to an empty panel.
func (p *CtPanel) UnmarshalJSON(data []byte) error {
	*p = nil

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object ("N/A", null, or junk). An empty panel is the total
		// degradation the classifier expects.
		return nil
	}

	panel := make(CtPanel, len(raw))
	for gene, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			panel[gene] = s
			continue
		}
		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			panel[gene] = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	*p = panel
	return nil
}

// Timestamp decodes the service's created_at field, which arrives either as
// RFC 3339 or as Flask's RFC 1123 rendering. Unparseable values degrade to the
// zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123,
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Report is a single lab report or symptom prediction. Raw signal fields
// (Suggestion, RiskLevelField, CtValues) are kept as received; Risk is the
// derived level attached by the normalizer and never overwrites them.
type Report struct {
	ID              string      `json:"_id"`
	OwnerID         string      `json:"user_id"`
	Disease         string      `json:"disease"`
	Result          string      `json:"result"`
	CtValues        CtPanel     `json:"ct_values,omitempty"`
	Suggestion      *Suggestion `json:"suggestion,omitempty"`
	RiskLevelField  string      `json:"risk_level,omitempty"`
	MatchedSymptoms []string    `json:"matched_symptoms,omitempty"`
	LLMSuggestion   string      `json:"llm_suggestion,omitempty"`
	Source          string      `json:"source"`
	CreatedAt       Timestamp   `json:"created_at"`

	// Risk is derived by Classify and attached during normalization.
	Risk RiskLevel `json:"-"`
}

// OwnerGroup is the doctor-facing aggregation unit: one patient and their
// reports in server-given order.
type OwnerGroup struct {
	OwnerID     string   `json:"user_id"`
	DisplayName string   `json:"username"`
	Reports     []Report `json:"reports"`
}
