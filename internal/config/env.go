package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docpub/internal/build"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
)

// EnvPrefix prefixes every environment variable docpub reads.
const EnvPrefix = "DOCPUB_"

// toolPrefix introduces per-tool overrides, e.g. DOCPUB_TOOL_LINUXDOC_HTMLDOC.
const toolPrefix = EnvPrefix + "TOOL_"

// DefaultEnvFiles are loaded by LoadEnvFiles when called without arguments.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
// It returns the files actually loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = DefaultEnvFiles
	}
	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, ferrors.ConfigError("cannot load environment file").
				WithContext("path", p).
				WithCause(err).
				Build()
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays DOCPUB_* variables onto c.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	list := func(name, sep string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = splitList(v, sep)
		}
	}

	str("PUBDIR", &c.PubDir)
	str("BUILDDIR", &c.BuildDir)
	str("JOURNAL", &c.Journal)
	str("METRICS_TEXTFILE", &c.MetricsTextfile)
	list("SOURCEDIRS", string(filepath.ListSeparator), &c.SourceDirs)
	list("SKIP", ",", &c.Skip)

	if v, ok := lookup(EnvPrefix + "MODE"); ok {
		c.Mode = build.Mode(v)
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.Logging.Level = LogLevel(v)
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		c.Logging.Format = LogFormat(v)
	}
	if v, ok := lookup(EnvPrefix + "PUBLISH"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("PUBLISH", v, err)
		}
		c.Publish = b
	}
	if v, ok := lookup(EnvPrefix + "STEP_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("STEP_TIMEOUT", v, err)
		}
		c.StepTimeout = d
	}
	return nil
}

// ApplyToolEnv copies DOCPUB_TOOL_<KEY>=path entries from environ (as
// returned by os.Environ) into c.Tools, lower-casing the key.
func (c *Config) ApplyToolEnv(environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, toolPrefix) || value == "" {
			continue
		}
		tool := strings.ToLower(strings.TrimPrefix(key, toolPrefix))
		if tool == "" {
			continue
		}
		if c.Tools == nil {
			c.Tools = map[string]string{}
		}
		c.Tools[tool] = value
	}
}

func splitList(v, sep string) []string {
	var out []string
	for _, part := range strings.Split(v, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envError(name, value string, err error) error {
	return ferrors.ConfigError("invalid environment variable").
		WithContext("variable", EnvPrefix+name).
		WithContext("value", value).
		WithCause(err).
		Build()
}
