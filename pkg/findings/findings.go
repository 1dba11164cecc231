// Package findings reads security findings batches produced by upstream
// security queries. Batches are JSON arrays of objects or CSV tables with a
// header row; both are reduced to rows of column name to value before being
// typed into engine.Finding.
package findings

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/user/cloudcomply/pkg/engine"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported findings format")

// Column aliases emitted by the security queries. When a row carries
// several aliases of one column, the earlier entry wins.
var aliases = []struct{ alias, canon string }{
	{"finding", "finding_type"},
	{"name", "resource_name"},
	{"resource", "resource_name"},
	{"project", "project_id"},
	{"region", "location"},
}

var titleCaser = cases.Title(language.English)

// Load reads a findings file, choosing the decoder from its extension.
func Load(path string) ([]engine.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read findings %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(data)
	case ".csv":
		return ReadCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseJSON decodes a JSON array of finding objects. Numbers and booleans
// keep their literal JSON text (project numbers stay 123456789012); null
// becomes "".
func ParseJSON(data []byte) ([]engine.Finding, error) {
	var rows []map[string]jsontext.Value
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	out := make([]engine.Finding, 0, len(rows))
	for i, row := range rows {
		flat := make(map[string]string, len(row))
		for k, v := range row {
			switch v.Kind() {
			case 'n':
				flat[k] = ""
			case '"':
				var str string
				if err := json.Unmarshal(v, &str); err != nil {
					return nil, fmt.Errorf("decode findings: element %d, %s: %w", i, k, err)
				}
				flat[k] = str
			default:
				v.Compact()
				flat[k] = string(v)
			}
		}
		out = append(out, FromRow(flat))
	}
	return out, nil
}

// ReadCSV decodes a CSV table whose first row names the columns.
func ReadCSV(r io.Reader) ([]engine.Finding, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []engine.Finding{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read findings header: %w", err)
	}

	var out []engine.Finding
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read findings line %d: %w", line, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		out = append(out, FromRow(row))
	}
	if out == nil {
		out = []engine.Finding{}
	}
	return out, nil
}

// FromRow types a single row. Column names are matched case-insensitively
// and known aliases are folded onto their canonical name; a canonical column
// takes precedence over its aliases, and aliases resolve in table order.
// Columns differing only in case resolve by sorted name.
func FromRow(row map[string]string) engine.Finding {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	norm := make(map[string]string, len(row))
	for _, k := range keys {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, set := norm[key]; !set {
			norm[key] = strings.TrimSpace(row[k])
		}
	}
	for _, a := range aliases {
		v, ok := norm[a.alias]
		if !ok {
			continue
		}
		if _, set := norm[a.canon]; !set {
			norm[a.canon] = v
		}
	}

	return engine.Finding{
		FindingType:  norm["finding_type"],
		ResourceName: norm["resource_name"],
		ResourceType: norm["resource_type"],
		ProjectID:    norm["project_id"],
		Location:     norm["location"],
		Severity:     NormalizeSeverity(norm["severity"]),
		Description:  norm["description"],
		Remediation:  norm["remediation"],
	}
}

// NormalizeSeverity title-cases a severity label so "HIGH" and "high" both
// become engine.SeverityHigh. Unknown labels are kept, title-cased.
func NormalizeSeverity(s string) engine.Severity {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return engine.Severity(titleCaser.String(strings.ToLower(s)))
}
