package findings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cloudcomply/pkg/engine"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`[
		{"finding_type": "Public Storage Bucket", "resource_name": "bucket-1", "project_id": "project-a", "severity": "HIGH", "remediation": "Restrict ACLs"},
		{"finding": "Unencrypted Disk", "name": "disk-1", "project_id": 42, "severity": null}
	]`)

	got, err := ParseJSON(data)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, engine.Finding{
		FindingType:  "Public Storage Bucket",
		ResourceName: "bucket-1",
		ProjectID:    "project-a",
		Severity:     engine.SeverityHigh,
		Remediation:  "Restrict ACLs",
	}, got[0])
	assert.Equal(t, "Unencrypted Disk", got[1].FindingType)
	assert.Equal(t, "disk-1", got[1].ResourceName)
	assert.Equal(t, "42", got[1].ProjectID)
	assert.Equal(t, engine.Severity(""), got[1].Severity)
}

func TestParseJSON_KeepsNumberText(t *testing.T) {
	got, err := ParseJSON([]byte(`[{"finding_type": "Open Firewall", "project_id": 123456789012, "resource_name": 1500000, "location": 1.25, "description": true}]`))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "123456789012", got[0].ProjectID)
	assert.Equal(t, "1500000", got[0].ResourceName)
	assert.Equal(t, "1.25", got[0].Location)
	assert.Equal(t, "true", got[0].Description)
}

func TestParseJSON_Invalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"finding_type": "x"}`))
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	in := `name,project_id,finding,severity,description,remediation
bucket-1,project-a,Public Storage Bucket,High,"Bucket allows public access, exposing data",Modify bucket ACLs
instance-1,project-b,Default Service Account,medium,,
`
	got, err := ReadCSV(strings.NewReader(in))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bucket-1", got[0].ResourceName)
	assert.Equal(t, "Public Storage Bucket", got[0].FindingType)
	assert.Equal(t, "Bucket allows public access, exposing data", got[0].Description)
	assert.Equal(t, engine.SeverityMedium, got[1].Severity)
	assert.Empty(t, got[1].Remediation)
}

func TestReadCSV_Empty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadCSV(strings.NewReader("finding_type,resource_name\n"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadCSV_ShortRows(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("finding_type,resource_name,severity\nOpen Firewall\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Open Firewall", got[0].FindingType)
	assert.Empty(t, got[0].ResourceName)
}

func TestFromRow_CanonicalColumnWinsOverAlias(t *testing.T) {
	f := FromRow(map[string]string{
		"finding":      "alias value",
		"Finding_Type": "canonical value",
	})
	assert.Equal(t, "canonical value", f.FindingType)
}

func TestFromRow_AliasPriority(t *testing.T) {
	row := map[string]string{
		"name":     "from-name",
		"resource": "from-resource",
		"Region":   "us-east1",
	}
	for i := 0; i < 50; i++ {
		f := FromRow(row)
		require.Equal(t, "from-name", f.ResourceName)
		require.Equal(t, "us-east1", f.Location)
	}
}

func TestReadCSV_BothAliasColumns(t *testing.T) {
	in := "resource,name,finding_type\nfrom-resource,from-name,Open Firewall\n"
	for i := 0; i < 20; i++ {
		got, err := ReadCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "from-name", got[0].ResourceName)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Severity
	}{
		{"High", engine.SeverityHigh},
		{"HIGH", engine.SeverityHigh},
		{" medium ", engine.SeverityMedium},
		{"low", engine.SeverityLow},
		{"critical", engine.Severity("Critical")},
		{"", engine.Severity("")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSeverity(tt.in))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "findings.json")
	csvPath := filepath.Join(dir, "findings.CSV")
	txtPath := filepath.Join(dir, "findings.txt")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"finding_type": "Open Firewall"}]`), 0o644))
	require.NoError(t, os.WriteFile(csvPath, []byte("finding_type\nOpen Firewall\n"), 0o644))
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))

	got, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = Load(txtPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
