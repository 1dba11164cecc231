package engine

import "sort"

// ControlRecord is a control together with the findings attributed to it
type ControlRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Findings    []Finding `json:"findings"`
}

// Remediation is the remediation of the control's first finding. It stands
// in for the whole control; remediations of later findings are not merged.
func (r ControlRecord) Remediation() string {
	if len(r.Findings) == 0 {
		return ""
	}
	return r.Findings[0].Remediation
}

// Aggregation groups one framework's annotated findings by control.
// Records holds every declared control, affected or not, in declaration order.
type Aggregation struct {
	Framework Framework
	Records   []ControlRecord
	index     map[string]int
}

// Aggregate builds a record per control of fw and attributes each finding to
// every control in its annotation for fw.
func Aggregate(fw Framework, annotated []AnnotatedFinding) *Aggregation {
	universe := fw.Controls()
	agg := &Aggregation{
		Framework: fw,
		Records:   make([]ControlRecord, len(universe)),
		index:     make(map[string]int, len(universe)),
	}
	for i, c := range universe {
		agg.Records[i] = ControlRecord{ID: c.ID, Name: c.Name, Description: c.Description}
		agg.index[c.ID] = i
	}

	for _, af := range annotated {
		ann, ok := af.Annotations[fw.Name]
		if !ok {
			continue
		}
		for _, c := range ann.Controls {
			i, ok := agg.index[c.ID]
			if !ok {
				continue
			}
			agg.Records[i].Findings = append(agg.Records[i].Findings, af.Finding)
		}
	}
	return agg
}

// Lookup returns the record for a control ID.
func (a *Aggregation) Lookup(id string) (ControlRecord, bool) {
	i, ok := a.index[id]
	if !ok {
		return ControlRecord{}, false
	}
	return a.Records[i], true
}

// Affected returns the records with at least one finding, in declaration order.
func (a *Aggregation) Affected() []ControlRecord {
	var out []ControlRecord
	for _, r := range a.Records {
		if len(r.Findings) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Ranked returns the affected records by descending finding count; ties keep
// declaration order.
func (a *Aggregation) Ranked() []ControlRecord {
	out := a.Affected()
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Findings) > len(out[j].Findings)
	})
	return out
}

// TotalControls is the number of distinct controls the framework declares.
func (a *Aggregation) TotalControls() int {
	return len(a.Records)
}

// AffectedControls is the number of controls with at least one finding.
func (a *Aggregation) AffectedControls() int {
	n := 0
	for _, r := range a.Records {
		if len(r.Findings) > 0 {
			n++
		}
	}
	return n
}

// Empty reports whether no finding was attributed to any control.
func (a *Aggregation) Empty() bool {
	return a.AffectedControls() == 0
}

// MappedFindings counts the findings attributed to at least one control of
// the framework.
func MappedFindings(framework string, annotated []AnnotatedFinding) int {
	n := 0
	for _, af := range annotated {
		if len(af.Annotations[framework].Controls) > 0 {
			n++
		}
	}
	return n
}
