package evidence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func richLead() Lead {
	return Lead{
		"company":        "Acme Robotics",
		"title":          "VP Engineering",
		"industry":       "industrial automation",
		"employee_count": "250",
		"hiring_signal":  "hiring 12 platform engineers",
		"personalization_hooks": []interface{}{
			"migrating workloads to kubernetes",
			"opened a Berlin office",
		},
		"engagement_content": "podcast on warehouse automation",
		"source_name":        "linkedin",
	}
}

func TestExtractAllSignalsRichLead(t *testing.T) {
	merged := ExtractAllSignals(richLead())

	assert.NotEmpty(t, merged.TraceID)
	assert.True(t, merged.MeetsMinimumEvidence)
	assert.GreaterOrEqual(t, merged.CompanySpecificCount, 3)
	assert.Equal(t, 1, merged.RoleImpactCount)
	assert.Greater(t, merged.OverallConfidence, 0.6)
	assert.Len(t, merged.Trace, 5, "every sub-extractor leaves a trace entry")

	require.NotNil(t, merged.RecommendedOpenerSignal)
	assert.True(t, merged.RecommendedOpenerSignal.UsableInOpener)
	assert.Equal(t, SignalHiring, merged.RecommendedOpenerSignal.Type)
}

func TestExtractAllSignalsEmptyLead(t *testing.T) {
	merged := ExtractAllSignals(Lead{})

	assert.Empty(t, merged.Signals)
	assert.Zero(t, merged.CompanySpecificCount)
	assert.Zero(t, merged.RoleImpactCount)
	assert.Zero(t, merged.OverallConfidence)
	assert.Nil(t, merged.RecommendedOpenerSignal)
	assert.False(t, merged.MeetsMinimumEvidence)
	assert.Len(t, merged.Trace, 5)
}

func TestMissingRoleFailsMinimum(t *testing.T) {
	lead := richLead()
	delete(lead, "title")

	merged := ExtractAllSignals(lead)
	assert.Zero(t, merged.RoleImpactCount)
	assert.False(t, merged.MeetsMinimumEvidence)
}

func TestMistypedKeysTolerated(t *testing.T) {
	merged := ExtractAllSignals(Lead{
		"company":               42,
		"title":                 []string{"VP"},
		"personalization_hooks": "not-a-list",
		"hiring_signal":         nil,
	})
	assert.Empty(t, merged.Signals)
	for _, entry := range merged.Trace {
		assert.False(t, strings.HasPrefix(entry, "ERROR"), "mistyped keys are absorbed, not errors: %s", entry)
	}
}

func TestSubExtractorPanicIsolated(t *testing.T) {
	broken := subExtractor{"broken", func(Lead) []Signal { panic("boom") }}

	signals, err := runIsolated(broken, Lead{})
	assert.Nil(t, signals)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRolePainPointLookup(t *testing.T) {
	tests := []struct {
		title     string
		painPoint string
	}{
		{"VP of Engineering", "shipping velocity and on-call load"},
		{"Chief Revenue Officer", "pipeline coverage and quota attainment"},
		{"Head of Growth Marketing", "lead quality and attribution"},
		{"Recruiting Lead", "hiring funnel throughput"},
		{"Astronaut", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			signals := extractRolePainPoints(Lead{"title": tt.title})
			if tt.painPoint == "" {
				assert.Empty(t, signals)
				return
			}
			require.Len(t, signals, 1)
			assert.Equal(t, SignalRoleImpact, signals[0].Type)
			assert.Equal(t, tt.painPoint, signals[0].Value)
		})
	}
}

func TestTopConfidenceMean(t *testing.T) {
	signals := []Signal{
		{Confidence: 0.9}, {Confidence: 0.8}, {Confidence: 0.7},
		{Confidence: 0.6}, {Confidence: 0.5}, {Confidence: 0.1},
	}
	// Mean of the top five only; the 0.1 outlier is excluded.
	assert.InDelta(t, 0.7, topConfidenceMean(signals, 5), 1e-9)
	assert.Zero(t, topConfidenceMean(nil, 5))
}
