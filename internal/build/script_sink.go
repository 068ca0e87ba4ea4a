package build

import (
	"context"
	"fmt"
	"io"

	"github.com/kballard/go-shellquote"
)

// ScriptSink prints each job as a shell script and never executes anything.
type ScriptSink struct {
	w   io.Writer
	err error
}

// NewScriptSink writes scripts to w.
func NewScriptSink(w io.Writer) *ScriptSink { return &ScriptSink{w: w} }

func (s *ScriptSink) Mode() Mode { return ModeScript }

func (s *ScriptSink) Begin(job *Job) error {
	s.printf("#!/bin/bash\n")
	s.printf("#\n# -- %s (%s)\n# -- source: %s\n#\n", job.Stem, job.Doctype, job.Source)
	s.printf("set -e -o pipefail\n")
	s.printf("mkdir -p %s\n", shellquote.Join(job.OutputDir))
	s.printf("cd %s\n\n", shellquote.Join(job.OutputDir))
	return s.err
}

// Run prints the step; the step always succeeds unless the writer fails.
func (s *ScriptSink) Run(_ context.Context, _ *Job, step string, cmds []Command) error {
	s.printf("# -- step: %s\n", step)
	for _, c := range cmds {
		s.printf("%s\n", c.Shell())
	}
	s.printf("\n")
	return s.err
}

func (s *ScriptSink) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}
