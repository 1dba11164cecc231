package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultComplianceDir = "config/compliance"
	DefaultOutputDir     = "reports"
	DefaultProvider      = "gemini"
	DefaultModel         = "gemini-1.5-flash"
)

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

// TelemetryConfig points pipeline traces at an OTLP collector. An empty
// endpoint disables tracing.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
}

type Config struct {
	ComplianceDir    string                    `yaml:"compliance_dir"`
	OutputDir        string                    `yaml:"output_dir"`
	MetricsFile      string                    `yaml:"metrics_file,omitempty"`
	Telemetry        TelemetryConfig           `yaml:"telemetry,omitempty"`
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		ComplianceDir:    DefaultComplianceDir,
		OutputDir:        DefaultOutputDir,
		SelectedProvider: DefaultProvider,
		SelectedModel:    DefaultModel,
		Providers:        make(map[string]ProviderConfig),
	}
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".cloudcomply")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a config file, filling unset fields with defaults. A missing
// file yields Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.ComplianceDir == "" {
		c.ComplianceDir = d.ComplianceDir
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.SelectedProvider == "" {
		c.SelectedProvider = d.SelectedProvider
	}
	if c.SelectedModel == "" {
		c.SelectedModel = d.SelectedModel
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path with owner-only permissions; it may hold API keys.
func SaveFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAPIKey(provider, key string) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

func (c *Config) GetAPIKey(provider string) string {
	return c.Providers[provider].APIKey
}
