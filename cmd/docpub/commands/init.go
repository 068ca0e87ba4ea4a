package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docpub/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing configuration file"`
	Path  string `arg:"" optional:"" help:"Where to write the file (default: --config or docpub.yaml)" type:"path"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := i.Path
	if path == "" {
		path = root.Config
	}
	if path == "" {
		path = "docpub.yaml"
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "Wrote configuration to %s\n", path)
	return nil
}
