package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docpub/internal/build"
	"git.home.luguber.info/inful/docpub/internal/config"
	"git.home.luguber.info/inful/docpub/internal/driver"
	"git.home.luguber.info/inful/docpub/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/logfields"
	"git.home.luguber.info/inful/docpub/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Publish   bool     `help:"Publish successful builds (overrides config)"`
	Selectors []string `arg:"" optional:"" help:"Status classes, stems or source paths"`
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runDocuments(ctx, g, root, build.ModeBuild, b.Publish, b.Selectors)
}

// ScriptCmd implements the 'script' command.
type ScriptCmd struct {
	Selectors []string `arg:"" optional:"" help:"Status classes, stems or source paths"`
}

func (s *ScriptCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runDocuments(ctx, g, root, build.ModeScript, false, s.Selectors)
}

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Selectors []string `arg:"" optional:"" help:"Status classes, stems or source paths"`
}

func (p *PublishCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runDocuments(ctx, g, root, build.ModeBuild, true, p.Selectors)
}

func runDocuments(ctx context.Context, g *Global, root *CLI, mode build.Mode, publish bool, selectors []string) error {
	cfg, err := root.LoadConfig(func(c *config.Config) {
		c.Mode = mode
		if publish {
			c.Publish = true
		}
	})
	if err != nil {
		return err
	}

	opts := []driver.Option{driver.WithScriptOutput(g.out())}
	var recorder *metrics.PrometheusRecorder
	if cfg.MetricsTextfile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, driver.WithRecorder(recorder))
	}
	if cfg.Journal != "" {
		store, err := openJournal(cfg.Journal)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, driver.WithJournal(store))
	}

	d, err := driver.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			slog.Warn("Cannot remove build root", logfields.Error(err))
		}
	}()

	inv, err := d.Inventory()
	if err != nil {
		return err
	}
	docs, skipped, err := d.Worklist(inv, selectors...)
	if err != nil {
		return err
	}
	report, runErr := d.Run(ctx, docs)
	report.Skipped = append(skipped, report.Skipped...)

	if recorder != nil {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile, recorder.Registry()); err != nil {
			slog.Warn("Cannot write metrics textfile", logfields.Path(cfg.MetricsTextfile), logfields.Error(err))
		}
	}
	if mode == build.ModeBuild {
		fmt.Fprintln(g.out(), report.String())
	} else {
		slog.Info("Scripts written", slog.String("report", report.String()))
	}
	if runErr != nil {
		return runErr
	}
	return report.Err()
}

func openJournal(path string) (*eventstore.SQLiteStore, error) {
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return nil, ferrors.JournalError("cannot open build journal").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	return store, nil
}
