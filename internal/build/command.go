package build

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command is one external tool invocation. It runs in the job's output directory.
type Command struct {
	Argv []string
	// Stdout names a file, relative to the output directory, that receives standard output.
	// When empty, standard output is captured to the step log.
	Stdout string
}

// Cmd builds a Command from an argument vector.
func Cmd(argv ...string) Command { return Command{Argv: argv} }

// To redirects standard output to file.
func (c Command) To(file string) Command {
	c.Stdout = file
	return c
}

// Shell renders the command as one quoted shell line.
func (c Command) Shell() string {
	line := shellquote.Join(c.Argv...)
	if c.Stdout != "" {
		line += " > " + shellquote.Join(c.Stdout)
	}
	return line
}

func (c Command) String() string { return c.Shell() }

// RenderScript renders commands as a standalone script with fail-on-error semantics.
func RenderScript(dir string, cmds []Command) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("set -e -o pipefail\n")
	if dir != "" {
		b.WriteString("cd " + shellquote.Join(dir) + "\n")
	}
	for _, c := range cmds {
		b.WriteString(c.Shell())
		b.WriteByte('\n')
	}
	return b.String()
}
