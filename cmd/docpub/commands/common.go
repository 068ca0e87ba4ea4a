package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpub/internal/config"
	"git.home.luguber.info/inful/docpub/internal/logfields"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI is the command tree and the flags shared by all commands. Flags take precedence
// over DOCPUB_* environment variables, which take precedence over the config file.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" type:"path" env:"DOCPUB_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging and listings"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	PubDir          string            `name:"pubdir" help:"Publication root" type:"path"`
	SourceDir       []string          `name:"sourcedir" help:"Source directory (repeatable, first wins)" type:"path"`
	BuildDir        string            `name:"builddir" help:"Persistent build root" type:"path"`
	Skip            []string          `name:"skip" help:"Skip a stem or doctype (repeatable)"`
	StepTimeout     time.Duration     `name:"step-timeout" help:"Kill a tool running longer than this"`
	Journal         string            `name:"journal" help:"SQLite build journal path" type:"path"`
	MetricsTextfile string            `name:"metrics-textfile" help:"Write Prometheus metrics to this file" type:"path"`
	Tool            map[string]string `name:"tool" help:"Override a tool path, e.g. --tool linuxdoc_htmldoc=/opt/bin/htmldoc"`

	List     ListCmd     `cmd:"" help:"List documents by status class"`
	Summary  SummaryCmd  `cmd:"" help:"Count documents per status class"`
	Build    BuildCmd    `cmd:"" help:"Build documents (default: new, stale, broken)"`
	Script   ScriptCmd   `cmd:"" help:"Print the build scripts instead of running them"`
	Publish  PublishCmd  `cmd:"" help:"Build documents and publish them atomically"`
	Doctypes DoctypesCmd `cmd:"" help:"List supported document types"`
	History  HistoryCmd  `cmd:"" help:"Show the build history of a document"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing: .env files are loaded and logging is set up once.
func (c *CLI) AfterApply() error {
	loaded, err := config.LoadEnvFiles()
	if err != nil {
		return err
	}
	setupLogging(c.Verbose, config.LogLevel(os.Getenv(config.EnvPrefix+"LOG_LEVEL")),
		config.LogFormat(os.Getenv(config.EnvPrefix+"LOG_FORMAT")))
	for _, f := range loaded {
		slog.Debug("Loaded environment file", logfields.Path(f))
	}
	return nil
}

func setupLogging(verbose bool, level config.LogLevel, format config.LogFormat) {
	lvl := level.Slog()
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if f, _ := config.ParseLogFormat(string(format)); f == config.LogFormatJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// LoadConfig resolves the configuration with the global flags applied last. Extra
// overrides come from the running command.
func (c *CLI) LoadConfig(extra ...config.Override) (*config.Config, error) {
	overrides := append([]config.Override{c.override}, extra...)
	cfg, err := config.Load(c.Config, overrides...)
	if err != nil {
		return nil, err
	}
	setupLogging(c.Verbose, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func (c *CLI) override(cfg *config.Config) {
	if c.PubDir != "" {
		cfg.PubDir = c.PubDir
	}
	if len(c.SourceDir) > 0 {
		cfg.SourceDirs = c.SourceDir
	}
	if c.BuildDir != "" {
		cfg.BuildDir = c.BuildDir
	}
	if len(c.Skip) > 0 {
		cfg.Skip = append(cfg.Skip, c.Skip...)
	}
	if c.StepTimeout > 0 {
		cfg.StepTimeout = c.StepTimeout
	}
	if c.Journal != "" {
		cfg.Journal = c.Journal
	}
	if c.MetricsTextfile != "" {
		cfg.MetricsTextfile = c.MetricsTextfile
	}
	for k, v := range c.Tool {
		if cfg.Tools == nil {
			cfg.Tools = map[string]string{}
		}
		cfg.Tools[k] = v
	}
}
