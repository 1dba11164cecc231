package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/Masterminds/sprig/v3"

	"github.com/user/cloudcomply/pkg/engine"
)

//go:embed templates/compliance_report.html
var templatesFS embed.FS

const pageTemplate = "compliance_report.html"

var htmlTemplates = template.Must(
	template.New(pageTemplate).Funcs(htmlFuncs()).ParseFS(templatesFS, "templates/"+pageTemplate),
)

func htmlFuncs() template.FuncMap {
	funcs := sprig.HtmlFuncMap()
	funcs["anchor"] = anchor
	funcs["severityClass"] = severityClass
	return funcs
}

// anchor turns a framework name into its HTML section id.
func anchor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// severityClass is the CSS class of a severity cell; only the three known
// severities are styled.
func severityClass(s engine.Severity) string {
	switch s {
	case engine.SeverityHigh, engine.SeverityMedium, engine.SeverityLow:
		return "severity-" + strings.ToLower(string(s))
	default:
		return ""
	}
}

type renderedSection struct {
	Name   string
	Anchor string
	Body   template.HTML
}

type pageData struct {
	Generated string
	Summary   Summary
	Sections  []renderedSection
}

// RenderHTML renders the human readable report. Each framework section is
// rendered on its own; a section that fails is logged and omitted along with
// its navigation entry.
func RenderHTML(r *Result, logger *slog.Logger) ([]byte, error) {
	logger = orDefault(logger)

	page := pageData{
		Generated: strings.Replace(r.Timestamp(), "_", " ", 1),
		Summary:   r.Summary,
	}
	for _, s := range r.Sections {
		if !s.Renderable() {
			continue
		}
		var buf bytes.Buffer
		if err := htmlTemplates.ExecuteTemplate(&buf, "framework", s); err != nil {
			logger.Error("failed to render framework", "framework", s.Framework.Name, "format", "html", "error", err)
			continue
		}
		page.Sections = append(page.Sections, renderedSection{
			Name:   s.Framework.Name,
			Anchor: anchor(s.Framework.Name),
			Body:   template.HTML(buf.String()),
		})
	}

	var out bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&out, pageTemplate, page); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteHTML writes compliance_report_<timestamp>.html into dir. An empty
// batch writes nothing and returns "".
func WriteHTML(dir string, r *Result, logger *slog.Logger) (string, error) {
	logger = orDefault(logger)
	if r.Empty() {
		logger.Warn("no findings to map to compliance frameworks")
		return "", nil
	}
	data, err := RenderHTML(r, logger)
	if err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	path, err := writeFile(dir, "compliance_report_"+r.Timestamp()+".html", data)
	if err != nil {
		return "", err
	}
	logger.Info("HTML compliance report generated", "path", path)
	return path, nil
}
