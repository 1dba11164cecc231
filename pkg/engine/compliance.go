package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"
)

var (
	errMissingFramework = errors.New("missing framework name")
	errMissingMappings  = errors.New("missing or empty mappings")
)

// Catalog holds the compliance frameworks loaded for one process.
// It is built once and only read afterwards; frameworks go in and come out
// as copies, so callers cannot change what the catalog holds.
type Catalog struct {
	frameworks map[string]Framework
	order      []string
}

// NewCatalog builds a catalog from already constructed frameworks.
// As with LoadCatalog, a later framework replaces an earlier one of the same name.
func NewCatalog(frameworks ...Framework) *Catalog {
	c := &Catalog{frameworks: make(map[string]Framework)}
	for _, f := range frameworks {
		c.add(f)
	}
	return c
}

func (c *Catalog) add(f Framework) (replaced bool) {
	if _, ok := c.frameworks[f.Name]; ok {
		replaced = true
	} else {
		c.order = append(c.order, f.Name)
	}
	c.frameworks[f.Name] = f.clone()
	return replaced
}

// LoadCatalog reads framework definitions (.json, .yaml, .yml) from dir.
// Unreadable or invalid documents are logged and skipped; a missing directory
// yields an empty catalog. Loading never fails.
func LoadCatalog(dir string, logger *slog.Logger) *Catalog {
	log := orDefault(logger)
	c := NewCatalog()

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("compliance directory not readable", "dir", dir, "error", err)
		return c
	}

	log.Info("loading compliance frameworks", "dir", dir)
	for _, entry := range entries {
		if entry.IsDir() || !isFrameworkFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		f, err := loadFramework(path)
		if err != nil {
			log.Warn("skipping framework file", "file", path, "error", err)
			continue
		}
		if c.add(f) {
			log.Warn("framework defined more than once, last definition wins", "framework", f.Name, "file", path)
		}
		log.Debug("loaded framework", "framework", f.Name, "mappings", len(f.Mappings), "file", path)
	}

	if c.Len() == 0 {
		log.Warn("no compliance frameworks loaded, compliance mapping disabled", "dir", dir)
	} else {
		log.Info("loaded compliance frameworks", "count", c.Len())
	}
	return c
}

func isFrameworkFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func loadFramework(path string) (Framework, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Framework{}, err
	}

	var f Framework
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return Framework{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := f.validate(); err != nil {
		return Framework{}, fmt.Errorf("invalid framework file %s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// ListFrameworks returns the names of loaded frameworks in load order
func (c *Catalog) ListFrameworks() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Get retrieves a framework by exact name
func (c *Catalog) Get(name string) (Framework, bool) {
	f, ok := c.frameworks[name]
	if !ok {
		return Framework{}, false
	}
	return f.clone(), true
}

// Lookup is Get with a case-insensitive fallback.
func (c *Catalog) Lookup(name string) (Framework, bool) {
	if f, ok := c.Get(name); ok {
		return f, true
	}
	for _, n := range c.order {
		if strings.EqualFold(n, name) {
			return c.frameworks[n].clone(), true
		}
	}
	return Framework{}, false
}

// Frameworks returns all loaded frameworks in load order.
func (c *Catalog) Frameworks() []Framework {
	out := make([]Framework, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.frameworks[n].clone())
	}
	return out
}

// Len returns the number of loaded frameworks.
func (c *Catalog) Len() int {
	return len(c.order)
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
