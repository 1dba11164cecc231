package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/cloudcomply/pkg/engine"
)

func TestScoreSummary(t *testing.T) {
	out := ScoreSummary([]engine.Score{
		{Framework: "CIS", TotalControls: 3, AffectedControls: 1, Percentage: 66.67, Tier: engine.TierPoor},
		{Framework: "PCI DSS", TotalControls: 4, AffectedControls: 0, Percentage: 100, Tier: engine.TierGood},
	})

	assert.Contains(t, out, "Compliance Scores")
	assert.Contains(t, out, "66.7%")
	assert.Contains(t, out, "Poor")
	assert.Contains(t, out, "(1/3 controls affected)")
	assert.Contains(t, out, "100.0%")
	assert.Len(t, strings.Split(out, "\n"), 3)
}

func TestScoreSummary_Empty(t *testing.T) {
	assert.Contains(t, ScoreSummary(nil), "no frameworks to score")
}

func TestControlsTable(t *testing.T) {
	out := ControlsTable([]engine.ControlRecord{
		{ID: "1.1", Name: "Restrict public access", Findings: []engine.Finding{
			{Remediation: "Modify bucket ACLs"}, {Remediation: "ignored"},
		}},
		{ID: "1.2", Name: "Encrypt disks", Findings: []engine.Finding{{}}},
	})

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "CONTROL")
	assert.Contains(t, lines[1], "Restrict public access")
	assert.Contains(t, lines[1], "Modify bucket ACLs")
	assert.NotContains(t, out, "ignored")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
}
