package engine

// Control is a single requirement within a compliance framework
type Control struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Mapping associates one finding type with the controls it violates
type Mapping struct {
	FindingType string    `json:"finding_type" yaml:"finding_type"`
	Controls    []Control `json:"controls" yaml:"controls"`
}

// Framework is a compliance standard (e.g., CIS, PCI DSS) and its mappings.
// Frameworks are read-only once loaded into a Catalog.
type Framework struct {
	Name        string    `json:"framework" yaml:"framework"`
	Version     string    `json:"version" yaml:"version"`
	Description string    `json:"description" yaml:"description"`
	URL         string    `json:"url" yaml:"url"`
	Mappings    []Mapping `json:"mappings" yaml:"mappings"`
}

// MatchMapping returns the first mapping declared for findingType.
// Later mappings with the same finding type are never consulted, even when
// they list different controls.
func (f Framework) MatchMapping(findingType string) (Mapping, bool) {
	if findingType == "" {
		return Mapping{}, false
	}
	for _, m := range f.Mappings {
		if m.FindingType == findingType {
			return m, true
		}
	}
	return Mapping{}, false
}

// Controls returns the framework's control universe: every control declared
// in any mapping, deduplicated by ID in declaration order. The first
// declaration of an ID supplies its name and description.
func (f Framework) Controls() []Control {
	seen := make(map[string]bool)
	var controls []Control
	for _, m := range f.Mappings {
		for _, c := range m.Controls {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			controls = append(controls, c)
		}
	}
	return controls
}

func (f Framework) validate() error {
	if f.Name == "" {
		return errMissingFramework
	}
	if len(f.Mappings) == 0 {
		return errMissingMappings
	}
	return nil
}

// clone copies f including its mappings and their control lists.
func (f Framework) clone() Framework {
	out := f
	if f.Mappings == nil {
		return out
	}
	out.Mappings = make([]Mapping, len(f.Mappings))
	for i, m := range f.Mappings {
		out.Mappings[i] = Mapping{FindingType: m.FindingType}
		if m.Controls != nil {
			out.Mappings[i].Controls = append([]Control(nil), m.Controls...)
		}
	}
	return out
}
