package engine

import "log/slog"

// Mapper associates findings with the controls of a catalog's frameworks
type Mapper struct {
	catalog *Catalog
	log     *slog.Logger
}

// NewMapper creates a mapper over an already loaded catalog
func NewMapper(catalog *Catalog, logger *slog.Logger) *Mapper {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Mapper{catalog: catalog, log: orDefault(logger)}
}

// Catalog returns the catalog the mapper reads from.
func (m *Mapper) Catalog() *Catalog {
	return m.catalog
}

// Annotate maps every finding to the controls of one framework, or of every
// loaded framework when framework is "". The input findings are not modified.
// An unknown framework name or an empty catalog returns the batch unannotated.
func (m *Mapper) Annotate(findings []Finding, framework string) []AnnotatedFinding {
	out := make([]AnnotatedFinding, len(findings))
	for i, f := range findings {
		out[i] = AnnotatedFinding{Finding: f, Annotations: make(map[string]Annotation)}
	}
	if len(findings) == 0 {
		return out
	}

	if m.catalog.Len() == 0 {
		m.log.Warn("no compliance frameworks loaded, findings left unannotated")
		return out
	}

	var frameworks []Framework
	if framework == "" {
		frameworks = m.catalog.Frameworks()
	} else {
		fw, ok := m.catalog.Get(framework)
		if !ok {
			m.log.Warn("framework not found, findings left unannotated", "framework", framework)
			return out
		}
		frameworks = []Framework{fw}
	}

	skipped := 0
	for i, f := range findings {
		if f.FindingType == "" {
			skipped++
			continue
		}
		for _, fw := range frameworks {
			out[i].Annotations[fw.Name] = annotate(fw, f)
		}
	}
	if skipped > 0 {
		m.log.Warn("findings without finding_type left unannotated", "count", skipped)
	}
	return out
}

func annotate(fw Framework, f Finding) Annotation {
	mapping, ok := fw.MatchMapping(f.FindingType)
	if !ok {
		return Annotation{}
	}
	controls := make([]Control, len(mapping.Controls))
	copy(controls, mapping.Controls)
	return Annotation{Matched: true, Controls: controls}
}
