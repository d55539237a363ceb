package config

import (
	"fmt"
	"os"
)

// Validate checks if the configuration is valid for macro processing.
func (c *Config) Validate() error {
	if c.MacrosPath == "" {
		return fmt.Errorf("macro mapping file is required (set 'macros' in sqlshift.yaml or pass --macros)")
	}
	if _, err := os.Stat(c.MacrosPath); os.IsNotExist(err) {
		return fmt.Errorf("macro mapping file does not exist: %s", c.MacrosPath)
	}
	if c.OutputFormat != "text" && c.OutputFormat != "json" {
		return fmt.Errorf("invalid output format %q (want text or json)", c.OutputFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// ValidateTranslation checks the translation service settings needed by the
// run command.
func (c *Config) ValidateTranslation() error {
	if c.Translation == nil || c.Translation.Endpoint == "" {
		return fmt.Errorf("translation endpoint is required (set 'translation.endpoint' or pass --endpoint; use --dry-run to skip translation)")
	}
	return nil
}
