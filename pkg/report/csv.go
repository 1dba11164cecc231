package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/user/cloudcomply/pkg/engine"
)

var findingColumns = []string{
	"finding_type", "resource_name", "resource_type", "project_id",
	"location", "severity", "description", "remediation",
}

// ControlsColumn is the CSV column holding a framework's control labels.
func ControlsColumn(framework string) string {
	return framework + "_controls"
}

// EncodeCSV writes the annotated findings as a table with one
// <framework>_controls column per framework.
func EncodeCSV(w io.Writer, annotated []engine.AnnotatedFinding, frameworks []string) error {
	cw := csv.NewWriter(w)

	header := append([]string(nil), findingColumns...)
	for _, name := range frameworks {
		header = append(header, ControlsColumn(name))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, af := range annotated {
		f := af.Finding
		row := []string{
			f.FindingType, f.ResourceName, f.ResourceType, f.ProjectID,
			f.Location, string(f.Severity), f.Description, f.Remediation,
		}
		for _, name := range frameworks {
			row = append(row, af.ControlsLabel(name))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes annotated_findings_<timestamp>.csv into dir. An empty
// batch writes nothing and returns "".
func WriteCSV(dir string, r *Result, logger *slog.Logger) (string, error) {
	logger = orDefault(logger)
	if r.Empty() {
		return "", nil
	}
	frameworks := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		frameworks = append(frameworks, s.Framework.Name)
	}

	var buf bytes.Buffer
	if err := EncodeCSV(&buf, r.Findings, frameworks); err != nil {
		return "", fmt.Errorf("render annotated findings: %w", err)
	}
	path, err := writeFile(dir, "annotated_findings_"+r.Timestamp()+".csv", buf.Bytes())
	if err != nil {
		return "", err
	}
	logger.Info("annotated findings written", "path", path)
	return path, nil
}
