package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/docpub/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Stem  string `arg:"" help:"Document stem"`
	Limit int    `short:"n" help:"Show at most this many recent builds (0 = all)" default:"10"`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Journal == "" {
		return ferrors.ConfigError("no build journal configured (set journal or --journal)").Build()
	}
	store, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := eventstore.History(ctx, store, h.Stem)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ferrors.NotFoundError("no recorded builds").WithContext("stem", h.Stem).Build()
	}
	if h.Limit > 0 && len(entries) > h.Limit {
		entries = entries[len(entries)-h.Limit:]
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s  %-10s %-12s %s", e.Started.Format(time.RFC3339), e.RunID, e.Outcome(), e.Doctype, e.Mode)
		if len(e.Failures) > 0 {
			steps := make([]string, 0, len(e.Failures))
			for _, f := range e.Failures {
				steps = append(steps, fmt.Sprintf("%s(exit %d)", f.Step, f.ExitCode))
			}
			line += "  failed: " + strings.Join(steps, " ")
		}
		fmt.Fprintln(g.out(), line)
	}
	return nil
}
