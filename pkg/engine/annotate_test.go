package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cisFramework() Framework {
	return Framework{
		Name:    "CIS",
		Version: "1.3.0",
		Mappings: []Mapping{
			{
				FindingType: "Public Storage Bucket",
				Controls:    []Control{{ID: "1.1", Name: "Restrict public access"}},
			},
			{
				FindingType: "Unencrypted Disk",
				Controls:    []Control{{ID: "1.2", Name: "Encrypt disks"}},
			},
			{
				FindingType: "Legacy Authentication Enabled",
				Controls:    []Control{{ID: "1.3", Name: "Disable legacy auth"}},
			},
		},
	}
}

func sampleFindings() []Finding {
	return []Finding{
		{FindingType: "Public Storage Bucket", ResourceName: "bucket-1", ProjectID: "project-a", Severity: SeverityHigh},
		{FindingType: "Default Service Account", ResourceName: "instance-1", ProjectID: "project-b", Severity: SeverityMedium},
		{FindingType: "Open Firewall", ResourceName: "fw-1", ProjectID: "project-c", Severity: SeverityHigh},
	}
}

func TestAnnotate_LabelsMatchedFindings(t *testing.T) {
	m := NewMapper(NewCatalog(cisFramework()), quietLogger())

	got := m.Annotate(sampleFindings(), "")

	require.Len(t, got, 3)
	assert.Equal(t, "1.1 (Restrict public access)", got[0].ControlsLabel("CIS"))
	assert.Equal(t, "", got[1].ControlsLabel("CIS"))
	assert.Equal(t, "", got[2].ControlsLabel("CIS"))
	assert.True(t, got[0].Annotation("CIS").Matched)
	assert.False(t, got[1].Annotation("CIS").Matched)
}

func TestAnnotate_FirstMatchWins(t *testing.T) {
	fw := Framework{
		Name: "CIS",
		Mappings: []Mapping{
			{FindingType: "X", Controls: []Control{{ID: "1", Name: "first"}}},
			{FindingType: "X", Controls: []Control{{ID: "2", Name: "second"}, {ID: "3", Name: "third"}}},
		},
	}
	m := NewMapper(NewCatalog(fw), quietLogger())

	got := m.Annotate([]Finding{{FindingType: "X"}}, "CIS")

	assert.Equal(t, []string{"1"}, got[0].Annotation("CIS").ControlIDs())
	assert.Equal(t, "1 (first)", got[0].ControlsLabel("CIS"))
}

func TestAnnotate_MatchedMappingWithoutControls(t *testing.T) {
	fw := Framework{
		Name: "CIS",
		Mappings: []Mapping{
			{FindingType: "X"},
			{FindingType: "X", Controls: []Control{{ID: "2", Name: "second"}}},
		},
	}
	m := NewMapper(NewCatalog(fw), quietLogger())

	got := m.Annotate([]Finding{{FindingType: "X"}}, "")

	ann := got[0].Annotation("CIS")
	assert.True(t, ann.Matched)
	assert.Empty(t, ann.Controls)
	assert.Equal(t, "", ann.Label())
}

func TestAnnotate_PreservesControlOrder(t *testing.T) {
	fw := Framework{
		Name: "SOC2",
		Mappings: []Mapping{
			{FindingType: "Open Firewall", Controls: []Control{
				{ID: "CC6.6", Name: "Boundary protection"},
				{ID: "CC6.1", Name: "Logical access"},
			}},
		},
	}
	m := NewMapper(NewCatalog(fw), quietLogger())

	got := m.Annotate([]Finding{{FindingType: "Open Firewall"}}, "SOC2")

	assert.Equal(t, "CC6.6 (Boundary protection), CC6.1 (Logical access)", got[0].ControlsLabel("SOC2"))
}

func TestAnnotate_UnknownFrameworkLeavesBatchUnannotated(t *testing.T) {
	m := NewMapper(NewCatalog(cisFramework()), quietLogger())
	in := sampleFindings()

	got := m.Annotate(in, "HIPAA")

	require.Len(t, got, len(in))
	for i, af := range got {
		assert.Equal(t, in[i], af.Finding)
		assert.Empty(t, af.Annotations)
	}
}

func TestAnnotate_EmptyCatalogPassesThrough(t *testing.T) {
	m := NewMapper(NewCatalog(), quietLogger())

	got := m.Annotate(sampleFindings(), "")

	require.Len(t, got, 3)
	assert.Empty(t, got[0].Annotations)
}

func TestAnnotate_FindingWithoutTypeIsSkipped(t *testing.T) {
	m := NewMapper(NewCatalog(cisFramework()), quietLogger())

	got := m.Annotate([]Finding{{ResourceName: "orphan"}}, "")

	_, ok := got[0].Annotations["CIS"]
	assert.False(t, ok)
}

func TestAnnotate_EmptyBatch(t *testing.T) {
	m := NewMapper(NewCatalog(cisFramework()), quietLogger())
	assert.Empty(t, m.Annotate(nil, ""))
}

func TestAnnotate_DoesNotShareControlSlices(t *testing.T) {
	fw := cisFramework()
	m := NewMapper(NewCatalog(fw), quietLogger())

	got := m.Annotate(sampleFindings(), "CIS")
	got[0].Annotations["CIS"].Controls[0].Name = "changed"

	again, _ := m.Catalog().Get("CIS")
	assert.Equal(t, "Restrict public access", again.Mappings[0].Controls[0].Name)
}

func TestFramework_Controls_DeduplicatesByID(t *testing.T) {
	fw := Framework{
		Name: "CIS",
		Mappings: []Mapping{
			{FindingType: "A", Controls: []Control{{ID: "1", Name: "first name"}, {ID: "2", Name: "two"}}},
			{FindingType: "B", Controls: []Control{{ID: "1", Name: "second name"}, {ID: "3", Name: "three"}}},
		},
	}

	controls := fw.Controls()

	require.Len(t, controls, 3)
	assert.Equal(t, "first name", controls[0].Name)
	assert.Equal(t, []string{"1", "2", "3"}, []string{controls[0].ID, controls[1].ID, controls[2].ID})
}
