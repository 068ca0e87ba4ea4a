package metrics

import "time"

// testRecorder counts calls; it doubles as a compile-time check of the interface.
type testRecorder struct {
	stepDurations map[string]int
	stepResults   map[string]map[ResultLabel]int
	buildOutcomes map[BuildOutcomeLabel]int
	publishes     map[bool]int
}

var _ Recorder = (*testRecorder)(nil)
var _ Recorder = NoopRecorder{}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stepDurations: map[string]int{},
		stepResults:   map[string]map[ResultLabel]int{},
		buildOutcomes: map[BuildOutcomeLabel]int{},
		publishes:     map[bool]int{},
	}
}

func (t *testRecorder) ObserveStepDuration(_, step string, _ time.Duration) {
	t.stepDurations[step]++
}

func (t *testRecorder) IncStepResult(_, step string, result ResultLabel) {
	m, ok := t.stepResults[step]
	if !ok {
		m = map[ResultLabel]int{}
		t.stepResults[step] = m
	}
	m[result]++
}

func (t *testRecorder) ObserveBuildDuration(string, time.Duration) {}

func (t *testRecorder) IncBuildOutcome(_ string, outcome BuildOutcomeLabel) {
	t.buildOutcomes[outcome]++
}

func (t *testRecorder) IncPublishResult(success bool) { t.publishes[success]++ }

func (t *testRecorder) SetInventoryCount(string, int) {}
