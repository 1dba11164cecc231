// Package report renders aggregated compliance results: a structured JSON
// document, a browsable HTML page, an annotated CSV table and an optional
// Prometheus textfile. Every exporter renders fully in memory and writes its
// file in one step; a framework that fails to render is logged and left out.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/user/cloudcomply/pkg/engine"
)

// TimestampLayout is the layout of the timestamp embedded in report file names
const TimestampLayout = "2006-01-02_15-04-05"

// Section is one framework's aggregation and score
type Section struct {
	Framework   engine.Framework
	Aggregation *engine.Aggregation
	Score       engine.Score
	// Scored is false when the framework declares no controls
	Scored bool
}

// Renderable reports whether the section has anything to show. Frameworks
// with no affected control are skipped by the JSON and HTML exporters.
func (s Section) Renderable() bool {
	return s.Aggregation != nil && !s.Aggregation.Empty()
}

// Summary holds batch-wide counters shown at the top of the HTML report.
type Summary struct {
	TotalFindings    int
	ProjectsAffected int
	High             int
	Medium           int
	Low              int
	Frameworks       []string
}

// Result is everything the exporters need for one run.
type Result struct {
	GeneratedAt time.Time
	Findings    []engine.AnnotatedFinding
	Sections    []Section
	Summary     Summary
}

// Build aggregates and scores the annotated batch for every framework in the
// catalog, in catalog order.
func Build(catalog *engine.Catalog, annotated []engine.AnnotatedFinding, now time.Time) *Result {
	r := &Result{GeneratedAt: now, Findings: annotated}
	for _, fw := range catalog.Frameworks() {
		agg := engine.Aggregate(fw, annotated)
		score, ok := engine.ScoreOf(agg)
		r.Sections = append(r.Sections, Section{
			Framework:   fw,
			Aggregation: agg,
			Score:       score,
			Scored:      ok,
		})
	}
	r.Summary = summarize(annotated, catalog.ListFrameworks())
	return r
}

// Section returns the section of a framework by exact name.
func (r *Result) Section(framework string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Framework.Name == framework {
			return s, true
		}
	}
	return Section{}, false
}

// Scores returns the scores of every framework that declares controls.
func (r *Result) Scores() []engine.Score {
	var out []engine.Score
	for _, s := range r.Sections {
		if s.Scored {
			out = append(out, s.Score)
		}
	}
	return out
}

// Timestamp renders GeneratedAt for file names.
func (r *Result) Timestamp() string {
	return r.GeneratedAt.Format(TimestampLayout)
}

// Empty reports whether the run had no findings at all.
func (r *Result) Empty() bool {
	return len(r.Findings) == 0
}

func summarize(annotated []engine.AnnotatedFinding, frameworks []string) Summary {
	s := Summary{TotalFindings: len(annotated), Frameworks: frameworks}
	projects := make(map[string]struct{})
	for _, af := range annotated {
		if af.Finding.ProjectID != "" {
			projects[af.Finding.ProjectID] = struct{}{}
		}
		switch af.Finding.Severity {
		case engine.SeverityHigh:
			s.High++
		case engine.SeverityMedium:
			s.Medium++
		case engine.SeverityLow:
			s.Low++
		}
	}
	s.ProjectsAffected = len(projects)
	return s
}

// writeFile creates dir when missing and writes a rendered report into it.
func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
