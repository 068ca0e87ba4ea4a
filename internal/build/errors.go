package build

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGraph indicates a malformed step declaration (empty or duplicate names, unknown dependencies).
	ErrInvalidGraph = errors.New("invalid build graph")
	// ErrCycle indicates step dependencies that form a cycle.
	ErrCycle = errors.New("build graph cycle")
	// ErrStepFailed indicates an external tool that exited non-zero.
	ErrStepFailed = errors.New("build step failed")
	// ErrStepTimeout indicates an external tool killed after exceeding the step timeout.
	ErrStepTimeout = errors.New("build step timed out")
	// ErrPrecheckFailed indicates a required tool or file that is missing.
	ErrPrecheckFailed = errors.New("precheck failed")
	// ErrNoMode indicates a sink requested for neither build nor script mode.
	ErrNoMode = errors.New("no execution mode selected")
)

// GraphError wraps a graph validation failure.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &GraphError{Kind: ErrInvalidGraph, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(names []string) error {
	return &GraphError{Kind: ErrCycle, Msg: "unresolved steps: " + strings.Join(names, ", ")}
}
