package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/gradeplan/internal/logger"
)

// LoggingConfig selects level and output format of the process logger.
type LoggingConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level"`
	// Format is "json", "console" or "auto" (console on a terminal).
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = logger.FormatAuto
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case logger.FormatJSON, logger.FormatConsole, logger.FormatAuto:
		return nil
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
}
