package metrics

import "time"

// ResultLabel enumerates build step result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultFallback ResultLabel = "fallback"
	ResultTimeout  ResultLabel = "timeout"
	ResultSkipped  ResultLabel = "skipped"
)

// BuildOutcomeLabel enumerates per-document build outcomes.
type BuildOutcomeLabel string

const (
	BuildSuccess        BuildOutcomeLabel = "success"
	BuildFailed         BuildOutcomeLabel = "failed"
	BuildPrecheckFailed BuildOutcomeLabel = "precheck_failed"
	BuildCanceled       BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for document builds. Implementations may forward
// to Prometheus; NoopRecorder is the default.
type Recorder interface {
	ObserveStepDuration(doctype, step string, d time.Duration)
	IncStepResult(doctype, step string, result ResultLabel)
	ObserveBuildDuration(doctype string, d time.Duration)
	IncBuildOutcome(doctype string, outcome BuildOutcomeLabel)
	IncPublishResult(success bool)
	SetInventoryCount(class string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(string, time.Duration)        {}
func (NoopRecorder) IncBuildOutcome(string, BuildOutcomeLabel)         {}
func (NoopRecorder) IncPublishResult(bool)                             {}
func (NoopRecorder) SetInventoryCount(string, int)                     {}
