// Package config loads docpub settings from a YAML file, .env files and
// DOCPUB_* environment variables, in that order of increasing precedence.
package config

import (
	"time"

	"git.home.luguber.info/inful/docpub/internal/build"
	"git.home.luguber.info/inful/docpub/internal/retry"
)

// Config is the complete runtime configuration.
type Config struct {
	// PubDir is the output collection root. Required.
	PubDir string `yaml:"pubdir"`
	// SourceDirs are scanned in order; the first source of a stem wins.
	SourceDirs []string `yaml:"sourcedirs"`
	// BuildDir is a persistent working root. Empty selects an ephemeral
	// hidden directory inside PubDir so publishing renames stay on one device.
	BuildDir string `yaml:"builddir,omitempty"`
	// Mode is build (execute tools) or script (print shell scripts).
	Mode build.Mode `yaml:"mode"`
	// Publish swaps successful builds into PubDir.
	Publish bool `yaml:"publish"`
	// Skip lists stems or doctype names never selected for a build.
	Skip []string `yaml:"skip,omitempty"`
	// StepTimeout bounds each tool invocation; zero disables the limit.
	StepTimeout time.Duration `yaml:"step_timeout,omitempty"`
	// Journal is the SQLite build journal path; empty disables journaling.
	Journal string `yaml:"journal,omitempty"`
	// MetricsTextfile receives Prometheus metrics after each run; empty disables export.
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`
	// Tools overrides executable paths by tool key (e.g. linuxdoc_htmldoc).
	Tools map[string]string `yaml:"tools,omitempty"`

	Logging LoggingConfig `yaml:"logging"`
	Retry   RetryConfig   `yaml:"retry"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// RetryConfig governs retries of transient filesystem operations during publishing.
type RetryConfig struct {
	Backoff    retry.BackoffMode `yaml:"backoff"`
	Initial    time.Duration     `yaml:"initial,omitempty"`
	Max        time.Duration     `yaml:"max,omitempty"`
	MaxRetries int               `yaml:"max_retries"`
}

// Policy converts the settings into a retry policy.
func (r RetryConfig) Policy() retry.Policy {
	return retry.NewPolicy(r.Backoff, r.Initial, r.Max, r.MaxRetries)
}

// Default returns a configuration with every optional field set.
func Default() *Config {
	def := retry.DefaultPolicy()
	return &Config{
		Mode:  build.ModeBuild,
		Tools: map[string]string{},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		Retry: RetryConfig{
			Backoff:    def.Mode,
			Initial:    def.Initial,
			Max:        def.Max,
			MaxRetries: def.MaxRetries,
		},
	}
}
