// Package config loads copyforge configuration from YAML with environment overrides
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Generator GeneratorConfig `yaml:"generator"`
	Export    ExportConfig    `yaml:"export"`
}

type ServerConfig struct {
	GrpcPort    int `yaml:"grpc_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type StorageConfig struct {
	Path string `yaml:"path"` // SQLite file; empty disables persistence
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type GeneratorConfig struct {
	Provider string `yaml:"provider"` // static or gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type ExportConfig struct {
	Width        int           `yaml:"width"`
	StepDelay    time.Duration `yaml:"step_delay"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	OutputDir    string        `yaml:"output_dir"`
	Bucket       string        `yaml:"bucket"` // GCS bucket; overrides OutputDir when set
	Prefix       string        `yaml:"prefix"`
}

// ValidProviders lists the supported generator backends
var ValidProviders = []string{"static", "gemini"}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GrpcPort:    50061,
			MetricsPort: 9091,
		},
		Storage: StorageConfig{
			Path: "copyforge.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Generator: GeneratorConfig{
			Provider: "static",
			Model:    "gemini-2.0-flash",
		},
		Export: ExportConfig{
			Width:        1,
			StepDelay:    250 * time.Millisecond,
			FetchTimeout: 20 * time.Second,
			OutputDir:    "exports",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.GrpcPort = envInt("COPYFORGE_GRPC_PORT", c.Server.GrpcPort)
	c.Server.MetricsPort = envInt("COPYFORGE_METRICS_PORT", c.Server.MetricsPort)
	c.Storage.Path = envString("COPYFORGE_DB", c.Storage.Path)
	c.Log.Level = envString("COPYFORGE_LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = envBool("COPYFORGE_LOG_PRETTY", c.Log.Pretty)
	c.Generator.Provider = envString("COPYFORGE_GENERATOR", c.Generator.Provider)
	c.Generator.Model = envString("COPYFORGE_MODEL", c.Generator.Model)
	c.Export.Width = envInt("COPYFORGE_EXPORT_WIDTH", c.Export.Width)
	c.Export.StepDelay = envDuration("COPYFORGE_EXPORT_STEP_DELAY", c.Export.StepDelay)
	c.Export.FetchTimeout = envDuration("COPYFORGE_EXPORT_FETCH_TIMEOUT", c.Export.FetchTimeout)
	c.Export.OutputDir = envString("COPYFORGE_EXPORT_DIR", c.Export.OutputDir)
	c.Export.Bucket = envString("COPYFORGE_EXPORT_BUCKET", c.Export.Bucket)

	// The generic Gemini key is honoured when no explicit key is set
	if c.Generator.APIKey == "" {
		c.Generator.APIKey = envString("GEMINI_API_KEY", "")
	}
	c.Generator.APIKey = envString("COPYFORGE_API_KEY", c.Generator.APIKey)
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	if !slices.Contains(ValidProviders, c.Generator.Provider) {
		return fmt.Errorf("invalid generator provider: %s (valid: %v)", c.Generator.Provider, ValidProviders)
	}
	if c.Generator.Provider == "gemini" && c.Generator.APIKey == "" {
		return fmt.Errorf("gemini provider requires an API key (set COPYFORGE_API_KEY or GEMINI_API_KEY)")
	}
	if c.Export.Width < 1 {
		return fmt.Errorf("export width must be at least 1, got %d", c.Export.Width)
	}
	if c.Export.StepDelay < 0 {
		return fmt.Errorf("export step delay must not be negative, got %s", c.Export.StepDelay)
	}
	if c.Export.FetchTimeout <= 0 {
		return fmt.Errorf("export fetch timeout must be positive, got %s", c.Export.FetchTimeout)
	}
	if c.Server.GrpcPort <= 0 || c.Server.MetricsPort <= 0 {
		return fmt.Errorf("server ports must be positive")
	}
	return nil
}
