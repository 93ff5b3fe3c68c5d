package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DataDirName    = ".cobolscan"
	ConfigFileName = "cobolscan.yaml"
)

// Config holds all configuration for the scanner tool.
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ScanConfig holds file selection and scanner options.
type ScanConfig struct {
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
	Duplicates string   `yaml:"duplicates"` // "last" or "collect"
	EdgeOrder  string   `yaml:"edge_order"` // "pattern" or "document"
	Concurrent bool     `yaml:"concurrent"`
}

// SummarizeConfig holds paragraph summarization configuration.
type SummarizeConfig struct {
	Provider       string  `yaml:"provider"`    // "openai", "azure", "mock"
	Model          string  `yaml:"model"`       // e.g., "gpt-4o"
	APIKeyEnv      string  `yaml:"api_key_env"` // Environment variable for API key
	BaseURL        string  `yaml:"base_url"`
	Deployment     string  `yaml:"deployment"`  // Azure deployment name
	APIVersion     string  `yaml:"api_version"` // Azure API version
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	Concurrency    int     `yaml:"concurrency"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Includes:   []string{"**/*.cbl", "**/*.cob", "**/*.CBL", "**/*.COB", "**/*.cobol"},
			Excludes:   []string{"**/.git/**", "**/" + DataDirName + "/**", "**/build/**", "**/copybooks/**"},
			Duplicates: "last",
			EdgeOrder:  "pattern",
			Concurrent: false,
		},
		Summarize: SummarizeConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			APIKeyEnv:      "OPENAI_API_KEY",
			APIVersion:     "2024-06-01",
			Temperature:    0,
			MaxTokens:      1024,
			Concurrency:    4,
			TimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Scan.Duplicates {
	case "", "last", "collect":
	default:
		return fmt.Errorf("scan.duplicates: unknown policy %q", c.Scan.Duplicates)
	}
	switch c.Scan.EdgeOrder {
	case "", "pattern", "document":
	default:
		return fmt.Errorf("scan.edge_order: unknown order %q", c.Scan.EdgeOrder)
	}
	switch c.Summarize.Provider {
	case "openai", "azure", "mock":
	default:
		return fmt.Errorf("summarize.provider: unsupported provider %q", c.Summarize.Provider)
	}
	if c.Summarize.Concurrency < 0 {
		return fmt.Errorf("summarize.concurrency: must not be negative")
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for cobolscan.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DataDirName, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the program database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, DataDirName, "index.db")
}

// EnsureDataDir ensures the .cobolscan directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DataDirName), 0755)
}
