package driver

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
)

// Report is the aggregate outcome of a run.
type Report struct {
	RunID     string
	Succeeded []string
	Failed    []string
	// Skipped holds documents left alone: skip filters, unknown doctypes and failed prechecks.
	Skipped []string
}

// Total returns how many documents the run considered.
func (r *Report) Total() int { return len(r.Succeeded) + len(r.Failed) + len(r.Skipped) }

// Err returns a build error when any document failed.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return ferrors.BuildError(fmt.Sprintf("%d of %d documents failed", len(r.Failed), r.Total())).
		WithContext("failed", r.Failed).
		WithContext("run_id", r.RunID).
		Build()
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "succeeded: %d, failed: %d, skipped: %d", len(r.Succeeded), len(r.Failed), len(r.Skipped))
	for _, line := range []struct {
		label string
		stems []string
	}{
		{"failed", r.Failed},
		{"skipped", r.Skipped},
	} {
		if len(line.stems) > 0 {
			fmt.Fprintf(&b, "\n%s: %s", line.label, strings.Join(line.stems, " "))
		}
	}
	return b.String()
}
