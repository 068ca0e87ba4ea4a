package driver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpub/internal/build"
	"git.home.luguber.info/inful/docpub/internal/config"
	"git.home.luguber.info/inful/docpub/internal/doctype"
	"git.home.luguber.info/inful/docpub/internal/document"
	"git.home.luguber.info/inful/docpub/internal/eventstore"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/inventory"
	"git.home.luguber.info/inful/docpub/internal/logfields"
	"git.home.luguber.info/inful/docpub/internal/metrics"
	"git.home.luguber.info/inful/docpub/internal/publish"
	"git.home.luguber.info/inful/docpub/internal/util/sets"
	"git.home.luguber.info/inful/docpub/internal/vcs"
	"git.home.luguber.info/inful/docpub/internal/workspace"
)

// Driver runs builds for one configuration. It is not safe for concurrent use;
// documents are built one after another.
type Driver struct {
	cfg      *config.Config
	registry *doctype.Registry
	tools    map[string]string
	skip     sets.Set[string]

	runner    *build.Runner
	ws        *workspace.Manager
	publisher *publish.Publisher
	revisions *vcs.Resolver
	journal   *eventstore.Journal
	recorder  metrics.Recorder

	runID    string
	failures int
	out      io.Writer
}

// Option configures a Driver.
type Option func(*Driver)

// WithRegistry replaces the default doctype registry.
func WithRegistry(r *doctype.Registry) Option {
	return func(d *Driver) { d.registry = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(d *Driver) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithJournal records run events in store.
func WithJournal(store eventstore.Store) Option {
	return func(d *Driver) { d.journal = eventstore.NewJournal(store, d.runID) }
}

// WithScriptOutput sets where script mode writes (default os.Stdout).
func WithScriptOutput(w io.Writer) Option {
	return func(d *Driver) { d.out = w }
}

// New prepares a driver. In build mode with publishing enabled the build root is created
// and checked to share a filesystem with the publication root.
func New(cfg *config.Config, opts ...Option) (*Driver, error) {
	d := &Driver{
		cfg:       cfg,
		skip:      sets.New(cfg.Skip...),
		revisions: vcs.NewResolver(),
		recorder:  metrics.NoopRecorder{},
		runID:     uuid.NewString(),
		out:       os.Stdout,
	}
	for _, o := range opts {
		o(d)
	}
	if d.registry == nil {
		reg, err := doctype.Default()
		if err != nil {
			return nil, err
		}
		d.registry = reg
	}
	d.tools = d.registry.ResolveTools(cfg.Tools)

	sink, err := build.NewSink(cfg.Mode, build.SinkOptions{Out: d.out, StepTimeout: cfg.StepTimeout})
	if err != nil {
		return nil, err
	}
	d.runner = build.NewRunner(sink, build.WithRecorder(d.recorder))

	if d.publishing() {
		if err := d.openBuildRoot(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Driver) openBuildRoot() error {
	if d.cfg.BuildDir != "" {
		d.ws = workspace.NewPersistentManager(d.cfg.BuildDir, "")
	} else {
		d.ws = workspace.NewManager(d.cfg.PubDir)
	}
	if err := d.ws.Create(); err != nil {
		return ferrors.FileSystemError("cannot create build root").WithCause(err).Build()
	}
	d.publisher = publish.New(d.cfg.PubDir, d.ws,
		publish.WithRecorder(d.recorder),
		publish.WithRetry(d.cfg.Retry.Policy()))
	if err := d.publisher.Check(); err != nil {
		_ = d.ws.Cleanup()
		return err
	}
	return nil
}

// RunID identifies this driver's run in logs and the journal.
func (d *Driver) RunID() string { return d.runID }

// Registry returns the doctype registry in use.
func (d *Driver) Registry() *doctype.Registry { return d.registry }

// Tools returns the resolved tool paths.
func (d *Driver) Tools() map[string]string { return d.tools }

func (d *Driver) publishing() bool {
	return d.cfg.Publish && d.cfg.Mode == build.ModeBuild
}

// Inventory scans the configured trees and records the class sizes.
func (d *Driver) Inventory() (*inventory.Inventory, error) {
	inv, err := inventory.New(d.cfg.PubDir, d.cfg.SourceDirs, d.registry)
	if err != nil {
		return nil, err
	}
	for _, c := range inv.Counts() {
		d.recorder.SetInventoryCount(c.Class, c.N)
	}
	return inv, nil
}

// BuildOne builds src. In build mode a successful build leaves a complete artifact set
// and a hash manifest in the output directory: the working directory when publishing,
// otherwise the document's directory in the publication root.
func (d *Driver) BuildOne(ctx context.Context, src *document.Source) error {
	dt, ok := d.registry.Lookup(src.Doctype)
	if !ok {
		return ferrors.ValidationError("unknown document type").
			WithContext("stem", src.Stem).
			WithContext("doctype", src.Doctype).
			Build()
	}

	outDir, err := d.outputDir(src)
	if err != nil {
		return err
	}
	job := build.NewJob(src, outDir, d.tools)
	mode := string(d.runner.Mode())
	d.record(ctx, src.Stem, eventstore.TypeBuildStarted, eventstore.BuildStart{
		Doctype: dt.Name, Source: src.Filename, Mode: mode,
	})

	job.Verify = func() error { return d.finish(src, outDir) }

	res, err := d.runner.Run(ctx, job, dt.Graph, dt.Requirements)

	outcome := eventstore.BuildOutcome{Doctype: dt.Name, Mode: mode}
	if res != nil {
		outcome.Steps, outcome.Skipped = res.Ran, res.Skipped
		outcome.DurationMS = res.Duration.Milliseconds()
	}
	if err != nil {
		if d.publishing() && errors.Is(err, build.ErrPrecheckFailed) {
			if derr := d.publisher.Discard(src.Doctype, src.Stem); derr != nil {
				slog.Warn("Cannot discard working directory", logfields.Stem(src.Stem), logfields.Error(derr))
			}
		}
		if res != nil && res.Failed != "" {
			d.record(ctx, src.Stem, eventstore.TypeStepFailed, stepFailure(res.Failed, err))
		}
		outcome.Error = err.Error()
		d.record(ctx, src.Stem, eventstore.TypeBuildFailed, outcome)
		return err
	}
	d.record(ctx, src.Stem, eventstore.TypeBuildSucceeded, outcome)
	return nil
}

func (d *Driver) outputDir(src *document.Source) (string, error) {
	target := filepath.Join(d.cfg.PubDir, src.Stem)
	switch {
	case d.runner.Mode() == build.ModeScript:
		return target, nil
	case d.publishing():
		return d.publisher.Prepare(src.Doctype, src.Stem)
	}

	out := document.NewOutput(target)
	if err := out.Mkdir(); err != nil {
		return "", ferrors.FileSystemError("cannot create output directory").
			WithContext("stem", src.Stem).WithCause(err).Build()
	}
	if err := out.Clear(); err != nil {
		return "", ferrors.FileSystemError("cannot clear output directory").
			WithContext("stem", src.Stem).WithCause(err).Build()
	}
	return out.Dirname, nil
}

// finish verifies the artifact set and records the source hashes it was built from.
func (d *Driver) finish(src *document.Source, outDir string) error {
	out := document.NewOutput(outDir)
	if missing := out.Missing(); len(missing) > 0 {
		return ferrors.BuildError("build produced an incomplete artifact set").
			WithContext("stem", src.Stem).
			WithContext("missing", missing).
			Build()
	}
	if err := out.WriteManifest(src.Hashes, d.revisionComments(src)...); err != nil {
		return ferrors.FileSystemError("cannot write hash manifest").
			WithContext("stem", src.Stem).WithCause(err).Build()
	}
	return nil
}

func (d *Driver) revisionComments(src *document.Source) []string {
	rev, err := d.revisions.Lookup(src.Filename)
	if err != nil {
		if !errors.Is(err, vcs.ErrNotRepository) {
			slog.Warn("Cannot read source revision", logfields.Stem(src.Stem), logfields.Error(err))
		}
		return nil
	}
	return rev.Comments()
}

// Publish swaps the built working directory of src into the publication root.
func (d *Driver) Publish(ctx context.Context, src *document.Source) error {
	if d.publisher == nil {
		return ferrors.ConfigError("publishing requires build mode with publish enabled").
			WithContext("stem", src.Stem).
			Build()
	}
	if err := d.publisher.Publish(ctx, src.Doctype, src.Stem); err != nil {
		return err
	}
	pub := eventstore.Publication{Target: d.publisher.Target(src.Stem), Replaced: src.Output != nil}
	if rev, err := d.revisions.Lookup(src.Filename); err == nil {
		pub.Revision = rev.Head
	}
	d.record(ctx, src.Stem, eventstore.TypePublished, pub)
	return nil
}

// Run builds, and when configured publishes, each document in turn. Per-document
// failures are collected in the report; only cancellation stops the run early.
func (d *Driver) Run(ctx context.Context, docs []*document.Source) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: d.runID}
	mode := string(d.runner.Mode())
	log := slog.With(logfields.RunID(d.runID), logfields.Mode(mode))
	log.Info("Run started", logfields.Count(len(docs)))
	d.record(ctx, "", eventstore.TypeRunStarted, eventstore.RunSummary{Mode: mode, Requested: len(docs)})

	if d.publisher != nil {
		if err := d.publisher.RecoverAll(ctx); err != nil {
			return report, err
		}
	}

	for i, src := range docs {
		if err := ctx.Err(); err != nil {
			for _, rest := range docs[i:] {
				report.Skipped = append(report.Skipped, rest.Stem)
			}
			d.finishRun(ctx, report)
			return report, err
		}
		switch err := d.buildAndPublish(ctx, src); {
		case err == nil:
			report.Succeeded = append(report.Succeeded, src.Stem)
		case errors.Is(err, build.ErrPrecheckFailed):
			report.Skipped = append(report.Skipped, src.Stem)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			report.Failed = append(report.Failed, src.Stem)
			d.finishRun(ctx, report)
			return report, err
		default:
			log.Error("Document failed", logfields.Stem(src.Stem), logfields.Error(err))
			report.Failed = append(report.Failed, src.Stem)
		}
	}

	d.finishRun(ctx, report)
	log.Info("Run finished",
		slog.Int("succeeded", len(report.Succeeded)),
		slog.Int("failed", len(report.Failed)),
		slog.Int("skipped", len(report.Skipped)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return report, nil
}

func (d *Driver) buildAndPublish(ctx context.Context, src *document.Source) error {
	if err := d.BuildOne(ctx, src); err != nil {
		return err
	}
	if !d.publishing() {
		return nil
	}
	return d.Publish(ctx, src)
}

func (d *Driver) finishRun(ctx context.Context, report *Report) {
	d.failures += len(report.Failed)
	d.record(ctx, "", eventstore.TypeRunFinished, eventstore.RunSummary{
		Mode:      string(d.runner.Mode()),
		Requested: report.Total(),
		Succeeded: len(report.Succeeded),
		Failed:    len(report.Failed),
		Skipped:   len(report.Skipped),
	})
}

// Close removes an ephemeral build root. After failures it is kept so the
// logs of the failed builds can be inspected.
func (d *Driver) Close() error {
	if d.ws == nil || d.ws.Persistent() {
		return nil
	}
	if d.failures > 0 {
		slog.Warn("Keeping build root with logs of failed builds", logfields.Path(d.ws.Path()))
		return nil
	}
	return d.ws.Cleanup()
}

func (d *Driver) record(ctx context.Context, stem, eventType string, payload any) {
	if err := d.journal.Record(context.WithoutCancel(ctx), stem, eventType, payload); err != nil {
		slog.Warn("Cannot record journal event", logfields.RunID(d.runID), logfields.Stem(stem), logfields.Error(err))
	}
}

func stepFailure(step string, err error) eventstore.StepFailure {
	f := eventstore.StepFailure{Step: step, Error: err.Error()}
	if ce, ok := ferrors.AsClassified(err); ok {
		if code, ok := ce.Context()["exit_code"].(int); ok {
			f.ExitCode = code
		}
	}
	return f
}
