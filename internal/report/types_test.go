package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportDecodesServiceShape(t *testing.T) {
	raw := `{
		"_id": "66b1",
		"user_id": "p1",
		"disease": "Dengue",
		"result": "Positive",
		"ct_values": {"NS1 gene": "18.5", "E gene": 27},
		"suggestion": {
			"Risk Level": "High",
			"Risk Probability": 0.92,
			"AI Suggestion": ["Seek medical attention"],
			"Reasoning": ["Risk classified as High (92.0%) via XGBoost model."]
		},
		"source": "upload",
		"created_at": "2026-03-01T10:00:00Z"
	}`

	var r Report
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, "66b1", r.ID)
	assert.Equal(t, "p1", r.OwnerID)
	assert.Equal(t, "Dengue", r.Disease)
	assert.Equal(t, CtPanel{"NS1 gene": "18.5", "E gene": "27"}, r.CtValues)
	require.NotNil(t, r.Suggestion)
	assert.Equal(t, "High", r.Suggestion.RiskLevel)
	assert.InDelta(t, 0.92, r.Suggestion.RiskProbability, 1e-9)
	assert.Equal(t, []string{"Seek medical attention"}, r.Suggestion.Recommendations)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), r.CreatedAt.Time)
}

func TestCtPanelDegradesGracefully(t *testing.T) {
	// The service emits ct_values as an object, as the literal "N/A", or not
	// at all. None of these may fail decoding.
	var r Report
	require.NoError(t, json.Unmarshal([]byte(`{"ct_values": "N/A"}`), &r))
	assert.Empty(t, r.CtValues)

	require.NoError(t, json.Unmarshal([]byte(`{"ct_values": null}`), &r))
	assert.Empty(t, r.CtValues)

	require.NoError(t, json.Unmarshal([]byte(`{"ct_values": {"A": true, "B": "22"}}`), &r))
	assert.Equal(t, CtPanel{"B": "22"}, r.CtValues, "unusable entries dropped, usable kept")
}

func TestTimestampLayouts(t *testing.T) {
	var r Report

	require.NoError(t, json.Unmarshal([]byte(`{"created_at": "Sun, 01 Mar 2026 10:00:00 GMT"}`), &r))
	assert.Equal(t, 2026, r.CreatedAt.Year(), "Flask RFC 1123 rendering")

	require.NoError(t, json.Unmarshal([]byte(`{"created_at": "not a date"}`), &r))
	assert.True(t, r.CreatedAt.IsZero(), "unparseable degrades to zero time")
}

func TestOwnerGroupDecodes(t *testing.T) {
	raw := `{"user_id": "p2", "username": "Pat Two", "reports": [{"_id": "r1"}]}`

	var g OwnerGroup
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	assert.Equal(t, "p2", g.OwnerID)
	assert.Equal(t, "Pat Two", g.DisplayName)
	require.Len(t, g.Reports, 1)
}
