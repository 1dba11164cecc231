package engine

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const cisJSON = `{
  "framework": "CIS",
  "version": "1.3.0",
  "description": "CIS Google Cloud Platform Foundation Benchmark",
  "url": "https://www.cisecurity.org/benchmark/google_cloud_computing_platform",
  "mappings": [
    {
      "finding_type": "Public Storage Bucket",
      "controls": [
        {"id": "5.1", "name": "Ensure that Cloud Storage bucket is not anonymously or publicly accessible", "description": "IAM policy on buckets"}
      ]
    }
  ]
}`

const pciYAML = `framework: PCI DSS
version: "4.0"
description: Payment Card Industry Data Security Standard
url: https://www.pcisecuritystandards.org
mappings:
  - finding_type: Unencrypted Disk
    controls:
      - id: "3.5"
        name: Protect stored account data
        description: Render PAN unreadable anywhere it is stored
`

func TestLoadCatalog_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cis.json", cisJSON)
	writeFile(t, dir, "pci.yaml", pciYAML)
	writeFile(t, dir, "README.md", "not a framework")

	c := LoadCatalog(dir, quietLogger())

	assert.Equal(t, []string{"CIS", "PCI DSS"}, c.ListFrameworks())
	cis, ok := c.Get("CIS")
	require.True(t, ok)
	assert.Equal(t, "1.3.0", cis.Version)
	require.Len(t, cis.Mappings, 1)
	assert.Equal(t, "5.1", cis.Mappings[0].Controls[0].ID)

	pci, ok := c.Get("PCI DSS")
	require.True(t, ok)
	assert.Equal(t, "Unencrypted Disk", pci.Mappings[0].FindingType)
}

func TestLoadCatalog_SkipsInvalidDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_missing_mappings.json", `{"framework": "SOC2"}`)
	writeFile(t, dir, "b_missing_name.json", `{"mappings": [{"finding_type": "X", "controls": []}]}`)
	writeFile(t, dir, "c_empty_mappings.yml", "framework: NIST\nmappings: []\n")
	writeFile(t, dir, "d_broken.json", `{"framework": "ISO", `)
	writeFile(t, dir, "e_valid.json", cisJSON)

	c := LoadCatalog(dir, quietLogger())

	assert.Equal(t, []string{"CIS"}, c.ListFrameworks())
	_, ok := c.Get("SOC2")
	assert.False(t, ok)
}

func TestLoadCatalog_MissingDirectory(t *testing.T) {
	c := LoadCatalog(filepath.Join(t.TempDir(), "does-not-exist"), quietLogger())
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.ListFrameworks())
}

func TestLoadCatalog_LastDefinitionWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1_cis.json", cisJSON)
	writeFile(t, dir, "2_cis.yaml", `framework: CIS
version: "2.0.0"
mappings:
  - finding_type: Open Firewall
    controls:
      - id: "3.6"
        name: Ensure that SSH access is restricted from the internet
`)

	c := LoadCatalog(dir, quietLogger())

	assert.Equal(t, 1, c.Len())
	cis, ok := c.Get("CIS")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", cis.Version)
}

func TestCatalog_Lookup(t *testing.T) {
	c := NewCatalog(Framework{Name: "PCI DSS"}, Framework{Name: "CIS"})

	f, ok := c.Lookup("pci dss")
	require.True(t, ok)
	assert.Equal(t, "PCI DSS", f.Name)

	_, ok = c.Lookup("hipaa")
	assert.False(t, ok)
}

func TestCatalog_ListFrameworksReturnsCopy(t *testing.T) {
	c := NewCatalog(Framework{Name: "CIS"})
	names := c.ListFrameworks()
	names[0] = "mutated"
	assert.Equal(t, []string{"CIS"}, c.ListFrameworks())
}

func TestCatalog_FrameworksAreCopies(t *testing.T) {
	src := Framework{
		Name: "CIS",
		Mappings: []Mapping{
			{FindingType: "Open Firewall", Controls: []Control{{ID: "3.6", Name: "Restrict SSH"}}},
		},
	}
	c := NewCatalog(src)
	src.Mappings[0].Controls[0].ID = "changed-at-source"

	got, ok := c.Get("CIS")
	require.True(t, ok)
	got.Mappings[0].Controls[0].ID = "changed-via-get"
	got.Mappings[0].FindingType = "changed"

	looked, _ := c.Lookup("cis")
	looked.Mappings[0].Controls[0].Name = "changed-via-lookup"

	all := c.Frameworks()
	all[0].Mappings[0].Controls = nil

	fresh, _ := c.Get("CIS")
	assert.Equal(t, []Mapping{
		{FindingType: "Open Firewall", Controls: []Control{{ID: "3.6", Name: "Restrict SSH"}}},
	}, fresh.Mappings)
}
