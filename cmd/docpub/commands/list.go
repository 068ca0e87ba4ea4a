package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docpub/internal/config"
	"git.home.luguber.info/inful/docpub/internal/driver"
	"git.home.luguber.info/inful/docpub/internal/inventory"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Classes []string `arg:"" optional:"" help:"Status classes to list (default: all)"`
	Sep     string   `help:"Field separator for verbose output" default:"\t"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	inv, err := scan(root)
	if err != nil {
		return err
	}
	classes := l.Classes
	if len(classes) == 0 {
		classes = []string{inventory.ClassAll}
	}
	entries, err := inv.Entries(classes...)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if root.Verbose {
			fmt.Fprintln(g.out(), strings.Join(describeEntry(e), l.Sep))
		} else {
			fmt.Fprintln(g.out(), e.Stem)
		}
	}
	return nil
}

func describeEntry(e inventory.Entry) []string {
	fields := []string{e.Stem, strings.Join(e.Status().Tags(), ",")}
	switch {
	case e.Source != nil:
		doctype := e.Source.Doctype
		if doctype == "" {
			doctype = "unknown"
		}
		fields = append(fields, doctype, e.Source.Filename, fmt.Sprintf("%d files", len(e.Source.Hashes)))
		if len(e.Source.Changed) > 0 {
			fields = append(fields, "changed: "+strings.Join(e.Source.Changed, " "))
		}
	case e.Output != nil:
		fields = append(fields, "-", e.Output.Dirname)
	}
	if e.Output != nil && !e.Output.IsComplete() {
		fields = append(fields, "missing: "+strings.Join(e.Output.Missing(), " "))
	}
	return fields
}

// SummaryCmd implements the 'summary' command.
type SummaryCmd struct{}

func (s *SummaryCmd) Run(g *Global, root *CLI) error {
	inv, err := scan(root)
	if err != nil {
		return err
	}
	for _, c := range inv.Counts() {
		fmt.Fprintf(g.out(), "%-10s %5d\n", c.Class, c.N)
		if !root.Verbose || c.N == 0 {
			continue
		}
		stems, err := inv.Stems(c.Class)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.out(), "           %s\n", strings.Join(stems, " "))
	}
	return nil
}

// scan classifies the configured trees without preparing a build root.
func scan(root *CLI) (*inventory.Inventory, error) {
	cfg, err := root.LoadConfig(func(c *config.Config) { c.Publish = false })
	if err != nil {
		return nil, err
	}
	d, err := driver.New(cfg)
	if err != nil {
		return nil, err
	}
	return d.Inventory()
}
