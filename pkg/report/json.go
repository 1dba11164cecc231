package report

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/user/cloudcomply/pkg/engine"
)

type frameworkDoc struct {
	Version     string                 `json:"version"`
	Description string                 `json:"description"`
	URL         string                 `json:"url"`
	Controls    []engine.ControlRecord `json:"controls"`
}

// MarshalJSON renders the structured report: one object keyed by framework
// name, in catalog order, listing only affected controls. Invalid UTF-8 in
// finding text is written as U+FFFD.
func MarshalJSON(r *Result, logger *slog.Logger) ([]byte, error) {
	logger = orDefault(logger)

	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.WithIndent("  "), jsontext.AllowInvalidUTF8(true))
	if err := enc.WriteToken(jsontext.ObjectStart); err != nil {
		return nil, err
	}
	for _, s := range r.Sections {
		if !s.Renderable() {
			continue
		}
		doc, err := json.Marshal(frameworkDoc{
			Version:     s.Framework.Version,
			Description: s.Framework.Description,
			URL:         s.Framework.URL,
			Controls:    s.Aggregation.Affected(),
		}, jsontext.AllowInvalidUTF8(true))
		if err != nil {
			logger.Error("failed to render framework", "framework", s.Framework.Name, "format", "json", "error", err)
			continue
		}
		if err := enc.WriteToken(jsontext.String(s.Framework.Name)); err != nil {
			return nil, err
		}
		if err := enc.WriteValue(jsontext.Value(doc)); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteToken(jsontext.ObjectEnd); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes compliance_report_<timestamp>.json into dir. An empty
// batch writes nothing and returns "".
func WriteJSON(dir string, r *Result, logger *slog.Logger) (string, error) {
	logger = orDefault(logger)
	if r.Empty() {
		logger.Warn("no findings to map to compliance frameworks")
		return "", nil
	}
	data, err := MarshalJSON(r, logger)
	if err != nil {
		return "", fmt.Errorf("render json report: %w", err)
	}
	path, err := writeFile(dir, "compliance_report_"+r.Timestamp()+".json", data)
	if err != nil {
		return "", err
	}
	logger.Info("compliance report generated", "path", path)
	return path, nil
}
