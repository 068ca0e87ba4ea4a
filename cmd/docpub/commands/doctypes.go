package commands

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpub/internal/doctype"
)

// DoctypesCmd implements the 'doctypes' command.
type DoctypesCmd struct {
	YAML bool `name:"yaml" help:"Dump full declarations, with resolved tool paths, as YAML"`
}

func (d *DoctypesCmd) Run(g *Global, root *CLI) error {
	reg, err := doctype.Default()
	if err != nil {
		return err
	}
	tools := reg.ResolveTools(root.Tool)
	if d.YAML {
		enc := yaml.NewEncoder(g.out())
		enc.SetIndent(2)
		if err := enc.Encode(reg.Describe(tools)); err != nil {
			return err
		}
		return enc.Close()
	}
	for _, dt := range reg.All() {
		fmt.Fprintf(g.out(), "%-12s %-28s %s\n", dt.Name, dt.FormatName, strings.Join(dt.Extensions, " "))
	}
	return nil
}
