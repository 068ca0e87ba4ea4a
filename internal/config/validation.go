package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docpub/internal/build"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/foundation/normalization"
	"git.home.luguber.info/inful/docpub/internal/retry"
)

var modes = normalization.NewNormalizer(map[string]build.Mode{
	"build":   build.ModeBuild,
	"execute": build.ModeBuild,
	"script":  build.ModeScript,
	"dry-run": build.ModeScript,
}, build.ModeBuild)

var backoffs = normalization.NewNormalizer(map[string]retry.BackoffMode{
	"fixed":       retry.BackoffFixed,
	"linear":      retry.BackoffLinear,
	"exponential": retry.BackoffExponential,
}, retry.BackoffLinear)

// Normalize case-folds enumerations, cleans paths and lower-cases tool keys.
func (c *Config) Normalize() error {
	mode, err := modes.Parse(string(c.Mode))
	if err != nil {
		return invalid("mode", err)
	}
	c.Mode = mode

	if c.Logging.Level, err = ParseLogLevel(string(c.Logging.Level)); err != nil {
		return invalid("logging.level", err)
	}
	if c.Logging.Format, err = ParseLogFormat(string(c.Logging.Format)); err != nil {
		return invalid("logging.format", err)
	}
	if c.Retry.Backoff, err = backoffs.Parse(string(c.Retry.Backoff)); err != nil {
		return invalid("retry.backoff", err)
	}

	c.PubDir = cleanPath(c.PubDir)
	c.BuildDir = cleanPath(c.BuildDir)
	for i, d := range c.SourceDirs {
		c.SourceDirs[i] = cleanPath(d)
	}

	if len(c.Tools) > 0 {
		tools := make(map[string]string, len(c.Tools))
		for k, v := range c.Tools {
			tools[strings.ToLower(strings.TrimSpace(k))] = v
		}
		c.Tools = tools
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.PubDir == "" {
		return missing("pubdir")
	}
	if len(c.SourceDirs) == 0 {
		return missing("sourcedirs")
	}
	for _, d := range c.SourceDirs {
		if d == "" {
			return missing("sourcedirs entry")
		}
		if d == c.PubDir {
			return ferrors.ConfigError("source directory must differ from pubdir").
				WithContext("path", d).
				Build()
		}
	}
	if !c.Mode.Valid() {
		return ferrors.ConfigError("mode must be build or script").
			WithContext("mode", string(c.Mode)).
			Build()
	}
	if c.StepTimeout < 0 {
		return ferrors.ConfigError("step_timeout must not be negative").
			WithContext("step_timeout", c.StepTimeout.String()).
			Build()
	}
	if err := c.Retry.Policy().Validate(); err != nil {
		return invalid("retry", err)
	}
	for k, v := range c.Tools {
		if k == "" || strings.TrimSpace(v) == "" {
			return ferrors.ConfigError("tool overrides need a key and a path").
				WithContext("tool", k).
				Build()
		}
	}
	return nil
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

func missing(field string) error {
	return ferrors.ConfigError("required setting is missing").
		WithContext("field", field).
		Build()
}

func invalid(field string, err error) error {
	return ferrors.ConfigError("invalid setting").
		WithContext("field", field).
		WithCause(err).
		Build()
}
