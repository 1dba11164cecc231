package engine

import "strings"

// Severity labels used by the upstream security queries
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Finding is a single misconfiguration reported for a cloud resource.
// FindingType is required for compliance mapping; every other field is
// optional and defaults to the empty string.
type Finding struct {
	FindingType  string   `json:"finding_type"`
	ResourceName string   `json:"resource_name"`
	ResourceType string   `json:"resource_type,omitempty"`
	ProjectID    string   `json:"project_id"`
	Location     string   `json:"location,omitempty"`
	Severity     Severity `json:"severity"`
	Description  string   `json:"description"`
	Remediation  string   `json:"remediation,omitempty"`
}

// Annotation records which controls of one framework a finding maps to.
// Matched is true when a mapping for the finding type exists, even if that
// mapping declares no controls.
type Annotation struct {
	Matched  bool
	Controls []Control
}

// Label renders the controls as "<id> (<name>), <id> (<name>)".
func (a Annotation) Label() string {
	parts := make([]string, 0, len(a.Controls))
	for _, c := range a.Controls {
		parts = append(parts, c.ID+" ("+c.Name+")")
	}
	return strings.Join(parts, ", ")
}

// ControlIDs returns the matched control IDs in declaration order.
func (a Annotation) ControlIDs() []string {
	ids := make([]string, 0, len(a.Controls))
	for _, c := range a.Controls {
		ids = append(ids, c.ID)
	}
	return ids
}

// AnnotatedFinding is a Finding plus its per-framework annotations
type AnnotatedFinding struct {
	Finding     Finding
	Annotations map[string]Annotation
}

// Annotation returns the annotation for a framework. The zero Annotation is
// returned when the finding was not annotated for it.
func (a AnnotatedFinding) Annotation(framework string) Annotation {
	return a.Annotations[framework]
}

// ControlsLabel returns the display label for a framework, or "" when no
// control matched.
func (a AnnotatedFinding) ControlsLabel(framework string) string {
	return a.Annotations[framework].Label()
}
