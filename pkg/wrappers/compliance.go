package wrappers

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/cloudcomply/pkg/adk"
	"github.com/user/cloudcomply/pkg/engine"
	"github.com/user/cloudcomply/pkg/report"
)

// ComplianceState is what the assistant's tools read: the loaded catalog and
// the result of the current run. Result may be nil when no findings were given.
type ComplianceState struct {
	Catalog *engine.Catalog
	Result  *report.Result
}

// lookup resolves a framework name, case-insensitively.
func (s *ComplianceState) lookup(name string) (engine.Framework, string, bool) {
	fw, ok := s.Catalog.Lookup(name)
	if !ok {
		return engine.Framework{}, fmt.Sprintf("Framework '%s' not found. Available: %s", name, strings.Join(s.Catalog.ListFrameworks(), ", ")), false
	}
	return fw, "", true
}

// ListFrameworksWrapper lists the loaded frameworks
type ListFrameworksWrapper struct {
	State *ComplianceState
}

func (c *ListFrameworksWrapper) Name() string {
	return "ListFrameworks"
}

func (c *ListFrameworksWrapper) Description() string {
	return "Lists the loaded compliance frameworks (CIS, PCI DSS, SOC 2, ...) with their version, number of mappings and number of declared controls."
}

func (c *ListFrameworksWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (c *ListFrameworksWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if c.State == nil || c.State.Catalog == nil || c.State.Catalog.Len() == 0 {
		return "No compliance frameworks are loaded.", nil
	}
	var sb strings.Builder
	sb.WriteString("Loaded Compliance Frameworks:\n")
	for _, fw := range c.State.Catalog.Frameworks() {
		version := fw.Version
		if version == "" {
			version = "N/A"
		}
		sb.WriteString(fmt.Sprintf("- %s (version %s): %d mappings, %d controls\n", fw.Name, version, len(fw.Mappings), len(fw.Controls())))
	}
	return sb.String(), nil
}

// ComplianceScoreWrapper reports framework scores from the current run
type ComplianceScoreWrapper struct {
	State *ComplianceState
}

func (c *ComplianceScoreWrapper) Name() string {
	return "ShowComplianceScore"
}

func (c *ComplianceScoreWrapper) Description() string {
	return "Shows the compliance score of a framework for the current findings: controls affected, percentage of controls without findings, and tier (Good, Fair, Poor). Omit the framework to show every framework."
}

func (c *ComplianceScoreWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"framework": map[string]interface{}{
				"type":        "string",
				"description": "The framework name (e.g., 'CIS', 'PCI DSS'). If omitted, shows all frameworks.",
			},
		},
	}
}

func (c *ComplianceScoreWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if c.State == nil || c.State.Result == nil {
		return "No findings have been evaluated. Run the assistant with --findings to load a batch.", nil
	}
	framework, _ := args["framework"].(string)

	sections := c.State.Result.Sections
	if framework != "" {
		fw, msg, ok := c.State.lookup(framework)
		if !ok {
			return msg, nil
		}
		s, ok := c.State.Result.Section(fw.Name)
		if !ok {
			return fmt.Sprintf("Framework '%s' was not part of this run.", fw.Name), nil
		}
		sections = []report.Section{s}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Compliance Scores (%d findings):\n\n", len(c.State.Result.Findings)))
	for _, s := range sections {
		if !s.Scored {
			sb.WriteString(fmt.Sprintf("%s: declares no controls, not scored\n", s.Framework.Name))
			continue
		}
		sc := s.Score
		sb.WriteString(fmt.Sprintf("%s: %.1f%% (%s), %d of %d controls affected (%.1f%%)\n",
			sc.Framework, sc.Percentage, sc.Tier, sc.AffectedControls, sc.TotalControls, sc.AffectedPercentage()))
	}
	return sb.String(), nil
}

// ControlFindingsWrapper shows the findings behind the controls of a framework
type ControlFindingsWrapper struct {
	State *ComplianceState
}

func (c *ControlFindingsWrapper) Name() string {
	return "ShowControlFindings"
}

func (c *ControlFindingsWrapper) Description() string {
	return "Shows the findings attributed to a control of a framework, with resource, project, severity and remediation. Omit control_id to list the affected controls ranked by number of findings."
}

func (c *ControlFindingsWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"framework": map[string]interface{}{
				"type":        "string",
				"description": "The framework name (e.g., 'CIS').",
			},
			"control_id": map[string]interface{}{
				"type":        "string",
				"description": "Specific control ID (e.g., '5.1'). If omitted, lists affected controls.",
			},
		},
		"required": []string{"framework"},
	}
}

func (c *ControlFindingsWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if c.State == nil || c.State.Result == nil {
		return "No findings have been evaluated. Run the assistant with --findings to load a batch.", nil
	}
	framework, _ := args["framework"].(string)
	controlID, _ := args["control_id"].(string)
	if framework == "" {
		return "A framework name is required.", nil
	}

	fw, msg, ok := c.State.lookup(framework)
	if !ok {
		return msg, nil
	}
	s, ok := c.State.Result.Section(fw.Name)
	if !ok || s.Aggregation == nil {
		return fmt.Sprintf("Framework '%s' was not part of this run.", fw.Name), nil
	}

	var sb strings.Builder
	if controlID == "" {
		ranked := s.Aggregation.Ranked()
		if len(ranked) == 0 {
			return fmt.Sprintf("No controls of %s are affected by the current findings.", fw.Name), nil
		}
		sb.WriteString(fmt.Sprintf("Affected Controls for %s:\n\n", fw.Name))
		for _, r := range ranked {
			sb.WriteString(fmt.Sprintf("[%d findings] %s: %s\n", len(r.Findings), r.ID, r.Name))
		}
		return sb.String(), nil
	}

	rec, ok := s.Aggregation.Lookup(controlID)
	if !ok {
		return fmt.Sprintf("No control with ID '%s' in framework '%s'.", controlID, fw.Name), nil
	}
	sb.WriteString(fmt.Sprintf("%s %s: %s\n", fw.Name, rec.ID, rec.Name))
	if rec.Description != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", rec.Description))
	}
	if len(rec.Findings) == 0 {
		sb.WriteString("\nNo findings are attributed to this control.")
		return sb.String(), nil
	}
	sb.WriteString("\n")
	for _, f := range rec.Findings {
		sb.WriteString(fmt.Sprintf("[%s] %s (project %s): %s\n", f.Severity, f.ResourceName, f.ProjectID, f.FindingType))
	}
	sb.WriteString(fmt.Sprintf("\nRemediation: %s", rec.Remediation()))
	return sb.String(), nil
}

// ComplianceTools returns every assistant tool bound to state.
func ComplianceTools(state *ComplianceState) []adk.Tool {
	return []adk.Tool{
		&ListFrameworksWrapper{State: state},
		&ComplianceScoreWrapper{State: state},
		&ControlFindingsWrapper{State: state},
	}
}
