package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides; "__" separates nested keys, so
// GRADEPLAN_PLANNING__TIME_PER_CARD sets planning.time_per_card.
const EnvPrefix = "GRADEPLAN_"

type Config struct {
	Database DatabaseConfig `json:"database"`
	Planning PlanningConfig `json:"planning"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Planning: DefaultPlanning(),
		Logging:  LoggingConfig{Level: "info", Format: "auto"},
	}
}

// Load reads path (YAML or JSON; empty means no file), then applies
// environment overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() error {
	if err := c.Database.SetDefaults(); err != nil {
		return err
	}
	c.Planning.SetDefaults()
	c.Logging.SetDefaults()
	return nil
}

func (c Config) Validate() error {
	if err := c.Planning.Validate(); err != nil {
		return fmt.Errorf("planning: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

type DatabaseConfig struct {
	// Path of the SQLite file. Defaults to ~/.gradeplan/gradeplan.db.
	Path string `json:"path"`
}

func (c *DatabaseConfig) SetDefaults() error {
	if c.Path != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("finding home directory: %w", err)
	}
	c.Path = filepath.Join(home, ".gradeplan", "gradeplan.db")
	return nil
}

// MetricsConfig points at a node-exporter textfile collector file. Empty
// disables the export.
type MetricsConfig struct {
	TextfilePath string `json:"textfile_path"`
}
