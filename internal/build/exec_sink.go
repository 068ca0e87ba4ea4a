package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/logfields"
)

// maxLoggedOutput caps how much captured output is copied into a log record.
const maxLoggedOutput = 8 << 10

// ExecSink runs each command as a subprocess in the job's output directory. Commands of a
// step run in sequence and the first non-zero exit fails the step. Standard error, and
// standard output that is not redirected, are captured to files in the job's log directory.
type ExecSink struct {
	timeout time.Duration
}

// NewExecSink returns a sink that kills any tool running longer than timeout (0 = no limit).
func NewExecSink(timeout time.Duration) *ExecSink { return &ExecSink{timeout: timeout} }

func (s *ExecSink) Mode() Mode { return ModeBuild }

func (s *ExecSink) Begin(job *Job) error {
	if err := os.MkdirAll(job.LogDir, 0o755); err != nil {
		return ferrors.FileSystemError("cannot create log directory").
			WithContext("path", job.LogDir).WithCause(err).Build()
	}
	return nil
}

func (s *ExecSink) Run(ctx context.Context, job *Job, step string, cmds []Command) error {
	script := filepath.Join(job.LogDir, step+".sh")
	if err := os.WriteFile(script, []byte(RenderScript(job.OutputDir, cmds)), 0o755); err != nil { //nolint:gosec // script is kept for diagnosis
		return ferrors.FileSystemError("cannot write step script").
			WithContext("path", script).WithCause(err).Build()
	}

	stdoutPath := filepath.Join(job.LogDir, step+".stdout")
	stderrPath := filepath.Join(job.LogDir, step+".stderr")
	stdout, err := os.Create(stdoutPath)
	if err != nil {
		return err
	}
	defer func() { _ = stdout.Close() }()
	stderr, err := os.Create(stderrPath)
	if err != nil {
		return err
	}
	defer func() { _ = stderr.Close() }()

	for _, c := range cmds {
		if err := s.runOne(ctx, job, step, c, stdout, stderr); err != nil {
			logCaptured(job, step, stdoutPath, stderrPath)
			return err
		}
	}
	return nil
}

func (s *ExecSink) runOne(ctx context.Context, job *Job, step string, c Command, stdout, stderr io.Writer) error {
	if len(c.Argv) == 0 {
		return ferrors.InternalError("empty command").WithContext("step", step).Build()
	}
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Argv[0], c.Argv[1:]...) //nolint:gosec // tool paths come from configuration
	cmd.Dir = job.OutputDir
	cmd.Stderr = stderr
	cmd.Stdout = stdout
	if c.Stdout != "" {
		f, err := os.Create(filepath.Join(job.OutputDir, c.Stdout))
		if err != nil {
			return ferrors.FileSystemError("cannot open redirect target").
				WithContext("step", step).WithContext("path", c.Stdout).WithCause(err).Build()
		}
		defer func() { _ = f.Close() }()
		cmd.Stdout = f
	}

	slog.Debug("Running tool", logfields.Stem(job.Stem), logfields.Step(step), logfields.Tool(c.Shell()))
	start := time.Now()
	err := cmd.Run()
	if err == nil {
		slog.Debug("Tool finished", logfields.Stem(job.Stem), logfields.Step(step),
			logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		return nil
	}

	if s.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return ferrors.StepError(fmt.Sprintf("step %s timed out after %s", step, s.timeout)).
			WithContext("step", step).
			WithContext("stem", job.Stem).
			WithCause(fmt.Errorf("%w: %s: %s", ErrStepTimeout, step, c.Shell())).
			Build()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return ferrors.StepError(fmt.Sprintf("step %s failed", step)).
		WithContext("step", step).
		WithContext("stem", job.Stem).
		WithContext("exit_code", code).
		WithContext("command", c.Shell()).
		WithCause(fmt.Errorf("%w: %s: %w", ErrStepFailed, c.Shell(), err)).
		Build()
}

func logCaptured(job *Job, step, stdoutPath, stderrPath string) {
	for _, stream := range []struct{ name, path string }{{"stdout", stdoutPath}, {"stderr", stderrPath}} {
		data, err := os.ReadFile(stream.path)
		if err != nil || len(strings.TrimSpace(string(data))) == 0 {
			continue
		}
		if len(data) > maxLoggedOutput {
			data = data[len(data)-maxLoggedOutput:]
		}
		slog.Warn("Captured tool output",
			logfields.Stem(job.Stem),
			logfields.Step(step),
			slog.String("stream", stream.name),
			logfields.Path(stream.path),
			slog.String("output", string(data)))
	}
}
