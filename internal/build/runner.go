package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docpub/internal/logfields"
	"git.home.luguber.info/inful/docpub/internal/metrics"
)

// Result describes one job run.
type Result struct {
	Stem string
	// Ran lists the steps that were started, in order.
	Ran []string
	// Failed names the step that stopped the build, if any.
	Failed string
	// Skipped lists the steps never started because an earlier step failed.
	Skipped []string
	// Fallbacks lists the steps whose fallback commands produced the result.
	Fallbacks []string
	Duration  time.Duration
}

// Succeeded reports whether every step ran and none failed.
func (r *Result) Succeeded() bool { return r.Failed == "" && len(r.Skipped) == 0 }

// Runner executes a graph for one job at a time.
type Runner struct {
	sink     Sink
	recorder metrics.Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// NewRunner returns a runner that hands steps to sink.
func NewRunner(sink Sink, opts ...Option) *Runner {
	r := &Runner{sink: sink, recorder: metrics.NoopRecorder{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Mode returns the sink's execution mode.
func (r *Runner) Mode() Mode { return r.sink.Mode() }

// Run executes the steps of g in order for job.
//
// In build mode the requirements are checked first and nothing runs if one is missing.
// The first failing step aborts every remaining step, dependent or not. Intermediate files
// of the steps that ran are removed afterwards whatever the outcome. job.Verify then checks
// the output, and the log directory is removed only when that passes too. Script mode skips
// the precheck, verification and all cleanup.
func (r *Runner) Run(ctx context.Context, job *Job, g *Graph, reqs []Requirement) (*Result, error) {
	start := time.Now()
	res := &Result{Stem: job.Stem}
	build := r.sink.Mode() == ModeBuild

	if build {
		if err := Precheck(reqs, job.Tools); err != nil {
			slog.Warn("Skipping build, precheck failed",
				logfields.Stem(job.Stem), logfields.Doctype(job.Doctype), logfields.Error(err))
			r.recorder.IncBuildOutcome(job.Doctype, metrics.BuildPrecheckFailed)
			res.Skipped = g.Names()
			return res, err
		}
	}
	if err := r.sink.Begin(job); err != nil {
		return res, err
	}

	var intermediates []string
	order := g.Order()
	var runErr error
	for i, step := range order {
		if err := ctx.Err(); err != nil {
			runErr = err
			res.Skipped = namesOf(order[i:])
			break
		}
		res.Ran = append(res.Ran, step.Name)
		intermediates = append(intermediates, step.intermediates(job)...)

		err := r.runStep(ctx, job, step, res)
		if err != nil {
			runErr = err
			res.Failed = step.Name
			res.Skipped = namesOf(order[i+1:])
			break
		}
	}
	res.Duration = time.Since(start)

	if build {
		r.cleanup(job, intermediates)
		if runErr == nil && job.Verify != nil {
			runErr = job.Verify()
		}
	}

	switch {
	case runErr == nil:
		if build {
			if err := os.RemoveAll(job.LogDir); err != nil {
				slog.Warn("Cannot remove log directory", logfields.Path(job.LogDir), logfields.Error(err))
			}
		}
		r.recorder.IncBuildOutcome(job.Doctype, metrics.BuildSuccess)
		slog.Info("Build succeeded", logfields.Stem(job.Stem), logfields.Doctype(job.Doctype),
			logfields.Mode(string(r.sink.Mode())), logfields.DurationMS(float64(res.Duration.Milliseconds())))
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		r.recorder.IncBuildOutcome(job.Doctype, metrics.BuildCanceled)
		for _, name := range res.Skipped {
			r.recorder.IncStepResult(job.Doctype, name, metrics.ResultSkipped)
		}
	default:
		r.recorder.IncBuildOutcome(job.Doctype, metrics.BuildFailed)
		for _, name := range res.Skipped {
			r.recorder.IncStepResult(job.Doctype, name, metrics.ResultSkipped)
		}
		slog.Error("Build failed", logfields.Stem(job.Stem), logfields.Doctype(job.Doctype),
			logfields.Step(res.Failed), slog.Any("skipped", res.Skipped),
			slog.String("logs", job.LogDir), logfields.Error(runErr))
	}
	r.recorder.ObserveBuildDuration(job.Doctype, res.Duration)
	return res, runErr
}

func (r *Runner) runStep(ctx context.Context, job *Job, step *Step, res *Result) error {
	start := time.Now()
	slog.Debug("Running step", logfields.Stem(job.Stem), logfields.Step(step.Name))
	err := r.sink.Run(ctx, job, step.Name, step.Commands(job))
	if err != nil && step.Fallback != nil && ctx.Err() == nil {
		slog.Warn("Step failed, trying fallback", logfields.Stem(job.Stem),
			logfields.Step(step.Name), logfields.Error(err))
		err = r.sink.Run(ctx, job, step.Name+"-fallback", step.Fallback(job))
		if err == nil {
			res.Fallbacks = append(res.Fallbacks, step.Name)
			r.recorder.IncStepResult(job.Doctype, step.Name, metrics.ResultFallback)
		}
	} else if err == nil {
		r.recorder.IncStepResult(job.Doctype, step.Name, metrics.ResultSuccess)
	}
	r.recorder.ObserveStepDuration(job.Doctype, step.Name, time.Since(start))
	if err != nil {
		result := metrics.ResultFailed
		if errors.Is(err, ErrStepTimeout) {
			result = metrics.ResultTimeout
		}
		r.recorder.IncStepResult(job.Doctype, step.Name, result)
	}
	return err
}

func (r *Runner) cleanup(job *Job, files []string) {
	for _, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(job.OutputDir, name)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Cannot remove intermediate file", logfields.Stem(job.Stem),
				logfields.Path(path), logfields.Error(err))
			continue
		}
		slog.Debug("Removed intermediate file", logfields.Stem(job.Stem), logfields.Path(path))
	}
}

func namesOf(steps []*Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}
