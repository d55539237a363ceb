// Package config provides configuration management for the sqlshift CLI.
//
// Configuration is layered: defaults, then sqlshift.yaml, then SQLSHIFT_*
// environment variables, then CLI flags.
package config

// TranslationConfig holds settings for the remote translation service.
type TranslationConfig struct {
	// Endpoint is the URL of the translation service.
	Endpoint string `koanf:"endpoint"`
	// SourceDialect names the dialect of the input SQL (e.g. teradata).
	SourceDialect string `koanf:"source_dialect"`
	// TargetDialect names the dialect to translate to (e.g. bigquery).
	TargetDialect string `koanf:"target_dialect"`
	// Token is an optional bearer token for the service.
	Token string `koanf:"token"`
	// TimeoutSeconds bounds each translation request.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// Config holds all CLI configuration options.
type Config struct {
	// MacrosPath is the path to the macro mapping YAML file.
	MacrosPath string `koanf:"macros"`
	// InputDir holds the SQL files to process.
	InputDir string `koanf:"input"`
	// OutputDir receives processed files.
	OutputDir string `koanf:"output"`
	// Workers bounds per-file parallelism (0 = number of CPUs).
	Workers int `koanf:"workers"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// OutputFormat selects report rendering: text or json.
	OutputFormat string `koanf:"format"`
	// Translation configures the remote service for the run command.
	Translation *TranslationConfig `koanf:"translation"`
}

// Default configuration values.
const (
	DefaultInputDir  = "input"
	DefaultOutputDir = "output"
	DefaultFormat    = "text"
)
