package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpub/internal/build"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/retry"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docpub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	t.Setenv("DOCS_ROOT", "/srv/docs")
	path := writeConfig(t, `
pubdir: ${DOCS_ROOT}/pub/
sourcedirs:
  - ${DOCS_ROOT}/linuxdoc
  - ${DOCS_ROOT}/docbook
mode: Script
publish: true
skip: [Broken-HOWTO]
step_timeout: 90s
tools:
  Linuxdoc_HTMLDOC: /opt/bin/htmldoc
logging:
  level: WARNING
  format: json
retry:
  backoff: exponential
  initial: 10ms
  max: 200ms
  max_retries: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docs/pub", cfg.PubDir)
	assert.Equal(t, []string{"/srv/docs/linuxdoc", "/srv/docs/docbook"}, cfg.SourceDirs)
	assert.Equal(t, build.ModeScript, cfg.Mode)
	assert.True(t, cfg.Publish)
	assert.Equal(t, []string{"Broken-HOWTO"}, cfg.Skip)
	assert.Equal(t, 90*time.Second, cfg.StepTimeout)
	assert.Equal(t, "/opt/bin/htmldoc", cfg.Tools["linuxdoc_htmldoc"])
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)

	policy := cfg.Retry.Policy()
	assert.Equal(t, retry.BackoffExponential, policy.Mode)
	assert.Equal(t, 10*time.Millisecond, policy.Initial)
	assert.Equal(t, 5, policy.MaxRetries)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, "pubdir: /pub\nsourcedirs: [/src]\nrenderer: {}\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "pubdir: /pub\nsourcedirs: [/src]\n")
	t.Setenv("DOCPUB_PUBDIR", "/elsewhere")
	t.Setenv("DOCPUB_SOURCEDIRS", "/a"+string(filepath.ListSeparator)+"/b")
	t.Setenv("DOCPUB_PUBLISH", "true")
	t.Setenv("DOCPUB_STEP_TIMEOUT", "2m")
	t.Setenv("DOCPUB_SKIP", "Foo, Bar,,")
	t.Setenv("DOCPUB_TOOL_MARKDOWN_PANDOC", "/opt/pandoc")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", cfg.PubDir)
	assert.Equal(t, []string{"/a", "/b"}, cfg.SourceDirs)
	assert.True(t, cfg.Publish)
	assert.Equal(t, 2*time.Minute, cfg.StepTimeout)
	assert.Equal(t, []string{"Foo", "Bar"}, cfg.Skip)
	assert.Equal(t, "/opt/pandoc", cfg.Tools["markdown_pandoc"])
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"DOCPUB_PUBLISH":      "maybe",
		"DOCPUB_STEP_TIMEOUT": "soon",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			})
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		})
	}
}

func TestApplyToolEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyToolEnv([]string{
		"DOCPUB_TOOL_DOCBOOK4XML_XSLTPROC=/usr/local/bin/xsltproc",
		"DOCPUB_TOOL_=/ignored",
		"DOCPUB_TOOL_EMPTY=",
		"PATH=/usr/bin",
	})
	assert.Equal(t, map[string]string{"docbook4xml_xsltproc": "/usr/local/bin/xsltproc"}, cfg.Tools)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.PubDir = "/pub"
		cfg.SourceDirs = []string{"/src"}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing pubdir", func(c *Config) { c.PubDir = "" }},
		{"missing sourcedirs", func(c *Config) { c.SourceDirs = nil }},
		{"source equals pubdir", func(c *Config) { c.SourceDirs = []string{"/pub"} }},
		{"bad mode", func(c *Config) { c.Mode = "compile" }},
		{"negative timeout", func(c *Config) { c.StepTimeout = -time.Second }},
		{"empty tool path", func(c *Config) { c.Tools["linuxdoc_htmldoc"] = " " }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
		})
	}
}

func TestNormalize_RejectsUnknownEnums(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "chatty"
	require.Error(t, cfg.Normalize())

	cfg = Default()
	cfg.Mode = "dry-run"
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, build.ModeScript, cfg.Mode)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DOCPUB_TEST_A=from-file\nDOCPUB_TEST_B=from-file\n"), 0o600))
	t.Setenv("DOCPUB_TEST_B", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("DOCPUB_TEST_A") })

	loaded, err := LoadEnvFiles(envFile, filepath.Join(dir, ".env.local"))
	require.NoError(t, err)
	assert.Equal(t, []string{envFile}, loaded)
	assert.Equal(t, "from-file", os.Getenv("DOCPUB_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("DOCPUB_TEST_B"))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpub.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs/published", cfg.PubDir)
	assert.True(t, cfg.Publish)

	err = Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}

func TestLogLevel_Slog(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.Slog().String())
	assert.Equal(t, "ERROR", LogLevelError.Slog().String())
	assert.Equal(t, "INFO", LogLevel("").Slog().String())
}

func TestLoad_OverridesWin(t *testing.T) {
	path := writeConfig(t, "pubdir: /pub\nsourcedirs: [/src]\nmode: build\n")
	t.Setenv("DOCPUB_PUBDIR", "/from-env")

	cfg, err := Load(path, func(c *Config) {
		c.PubDir = "/from-flag"
		c.Mode = "script"
	})
	require.NoError(t, err)
	assert.Equal(t, "/from-flag", cfg.PubDir)
	assert.Equal(t, build.ModeScript, cfg.Mode)
}

func TestLoad_NoFileNeedsRoots(t *testing.T) {
	t.Setenv("DOCPUB_PUBDIR", "")
	_, err := Load("")
	require.Error(t, err)

	cfg, err := Load("", func(c *Config) {
		c.PubDir = "/pub"
		c.SourceDirs = []string{"/src"}
	})
	require.NoError(t, err)
	assert.Equal(t, build.ModeBuild, cfg.Mode)
}
