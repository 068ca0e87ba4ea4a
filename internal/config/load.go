package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
)

// Override adjusts a configuration after the file and environment are applied;
// command-line flags use it to take precedence.
type Override func(*Config)

// Load reads the YAML file at path on top of the defaults, then applies the
// environment and the overrides, and validates. An empty path skips the file.
func Load(path string, overrides ...Override) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.ApplyToolEnv(os.Environ())
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ferrors.ConfigError("configuration file not found").
				WithContext("path", path).
				WithCause(err).
				Build()
		}
		return ferrors.ConfigError("cannot read configuration file").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	return c.decode(path, []byte(os.ExpandEnv(string(data))))
}

func (c *Config) decode(path string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return ferrors.ConfigError("invalid configuration file").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	return nil
}

// Init writes an example configuration file. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Default()
	example.PubDir = "/srv/docs/published"
	example.SourceDirs = []string{"/srv/docs/sources"}
	example.Publish = true
	example.Journal = "/var/lib/docpub/journal.db"
	example.Tools = map[string]string{"linuxdoc_htmldoc": "/usr/bin/htmldoc"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.InternalError("cannot encode example configuration").WithCause(err).Build()
	}
	header := []byte("# docpub configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return ferrors.ConfigError("cannot write configuration file").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	return nil
}
