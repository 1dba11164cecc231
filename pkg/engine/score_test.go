package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want Tier
	}{
		{100, TierGood},
		{90, TierGood},
		{89.9, TierFair},
		{70, TierFair},
		{69.99, TierPoor},
		{0, TierPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.pct), "percentage %v", tt.pct)
	}
}

func TestTierColor(t *testing.T) {
	assert.Equal(t, "#28a745", TierGood.Color())
	assert.Equal(t, "#ffc107", TierFair.Color())
	assert.Equal(t, "#dc3545", TierPoor.Color())
}

func TestScoreOf_PublicBucketExample(t *testing.T) {
	fw := cisFramework()
	m := NewMapper(NewCatalog(fw), quietLogger())
	agg := Aggregate(fw, m.Annotate(sampleFindings(), ""))

	s, ok := ScoreOf(agg)

	require.True(t, ok)
	assert.Equal(t, "CIS", s.Framework)
	assert.Equal(t, 3, s.TotalControls)
	assert.Equal(t, 1, s.AffectedControls)
	assert.InDelta(t, 66.7, s.Percentage, 0.05)
	assert.Equal(t, TierPoor, s.Tier)
	assert.InDelta(t, 33.3, s.AffectedPercentage(), 0.05)
}

func TestScoreOf_NoFindingsIsFullyCompliant(t *testing.T) {
	fw := cisFramework()
	s, ok := ScoreOf(Aggregate(fw, nil))

	require.True(t, ok)
	assert.Equal(t, 100.0, s.Percentage)
	assert.Equal(t, TierGood, s.Tier)
}

func TestScoreOf_NoControls(t *testing.T) {
	fw := Framework{Name: "Empty", Mappings: []Mapping{{FindingType: "X"}}}

	s, ok := ScoreOf(Aggregate(fw, nil))

	assert.False(t, ok)
	assert.Equal(t, 0.0, s.Percentage)
	assert.Equal(t, 0, s.TotalControls)
}

func TestScoreOf_Bounds(t *testing.T) {
	fw := Framework{
		Name: "CIS",
		Mappings: []Mapping{
			{FindingType: "A", Controls: []Control{{ID: "1"}, {ID: "2"}}},
			{FindingType: "B", Controls: []Control{{ID: "3"}}},
		},
	}
	m := NewMapper(NewCatalog(fw), quietLogger())
	batches := [][]Finding{
		nil,
		{{FindingType: "A"}},
		{{FindingType: "B"}},
		{{FindingType: "A"}, {FindingType: "B"}, {FindingType: "A"}},
	}
	for _, batch := range batches {
		s, ok := ScoreOf(Aggregate(fw, m.Annotate(batch, "")))
		require.True(t, ok)
		assert.LessOrEqual(t, s.AffectedControls, s.TotalControls)
		assert.GreaterOrEqual(t, s.Percentage, 0.0)
		assert.LessOrEqual(t, s.Percentage, 100.0)
	}
}
