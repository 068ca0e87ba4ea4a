package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
)

// Mode selects what happens to rendered steps.
type Mode string

const (
	ModeBuild  Mode = "build"
	ModeScript Mode = "script"
)

// Valid reports whether m is one of the two execution modes.
func (m Mode) Valid() bool { return m == ModeBuild || m == ModeScript }

// Sink receives the rendered commands of each step.
type Sink interface {
	Mode() Mode
	// Begin is called once per job before its first step.
	Begin(job *Job) error
	// Run executes or emits one step and reports its outcome.
	Run(ctx context.Context, job *Job, step string, cmds []Command) error
}

// SinkOptions configures NewSink.
type SinkOptions struct {
	// Out receives scripts in script mode (default os.Stdout).
	Out io.Writer
	// StepTimeout bounds each tool invocation in build mode; zero means no limit.
	StepTimeout time.Duration
}

// NewSink returns the sink for mode.
func NewSink(mode Mode, opts SinkOptions) (Sink, error) {
	switch mode {
	case ModeBuild:
		return NewExecSink(opts.StepTimeout), nil
	case ModeScript:
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return NewScriptSink(out), nil
	default:
		return nil, ferrors.ConfigError("execution mode must be build or script").
			WithContext("mode", string(mode)).
			WithCause(fmt.Errorf("%w: %q", ErrNoMode, mode)).
			Build()
	}
}
