package eventstore

import (
	"context"
	"encoding/json"
	"time"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
)

// StepFailure is the payload of a step_failed event.
type StepFailure struct {
	Step     string `json:"step"`
	ExitCode int    `json:"exit_code,omitempty"`
	Error    string `json:"error"`
	Fallback bool   `json:"fallback,omitempty"`
}

// BuildOutcome is the payload of build_succeeded and build_failed events.
type BuildOutcome struct {
	Doctype    string   `json:"doctype"`
	Mode       string   `json:"mode"`
	Steps      []string `json:"steps,omitempty"`
	Skipped    []string `json:"skipped,omitempty"`
	DurationMS int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// BuildStart is the payload of a build_started event.
type BuildStart struct {
	Doctype string `json:"doctype"`
	Source  string `json:"source"`
	Mode    string `json:"mode"`
}

// Publication is the payload of a published event.
type Publication struct {
	Target   string `json:"target"`
	Replaced bool   `json:"replaced"`
	Revision string `json:"revision,omitempty"`
}

// RunSummary is the payload of run_started and run_finished events.
type RunSummary struct {
	Mode      string `json:"mode"`
	Requested int    `json:"requested"`
	Succeeded int    `json:"succeeded,omitempty"`
	Failed    int    `json:"failed,omitempty"`
	Skipped   int    `json:"skipped,omitempty"`
}

// Journal records the events of a single run. A nil *Journal is valid and
// records nothing.
type Journal struct {
	store Store
	runID string
}

// NewJournal binds a store to a run id.
func NewJournal(store Store, runID string) *Journal {
	if store == nil {
		return nil
	}
	return &Journal{store: store, runID: runID}
}

// RunID returns the run the journal records.
func (j *Journal) RunID() string {
	if j == nil {
		return ""
	}
	return j.runID
}

// Record appends one typed event.
func (j *Journal) Record(ctx context.Context, stem, eventType string, payload any) error {
	if j == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ferrors.JournalError("cannot encode journal event").
			WithCause(err).
			WithContext("type", eventType).
			Build()
	}
	if err := j.store.Append(ctx, j.runID, stem, eventType, data, nil); err != nil {
		return ferrors.JournalError("cannot append journal event").
			WithCause(err).
			WithContext("type", eventType).
			WithContext("stem", stem).
			Build()
	}
	return nil
}

// HistoryEntry summarizes one build attempt of a document.
type HistoryEntry struct {
	RunID     string
	Stem      string
	Doctype   string
	Mode      string
	Started   time.Time
	Finished  time.Time
	Succeeded bool
	Published bool
	Failures  []StepFailure
	Error     string
}

// Outcome returns a short word describing the entry.
func (h HistoryEntry) Outcome() string {
	switch {
	case h.Published:
		return "published"
	case h.Succeeded:
		return "built"
	case h.Finished.IsZero():
		return "incomplete"
	default:
		return "failed"
	}
}

// History folds a document's events into one entry per run, oldest first.
func History(ctx context.Context, store Store, stem string) ([]HistoryEntry, error) {
	events, err := store.GetByStem(ctx, stem)
	if err != nil {
		return nil, ferrors.JournalError("cannot read journal").
			WithCause(err).
			WithContext("stem", stem).
			Build()
	}
	return fold(events)
}

func fold(events []Event) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	index := make(map[string]int)

	for _, e := range events {
		i, ok := index[e.RunID()]
		if !ok {
			entries = append(entries, HistoryEntry{RunID: e.RunID(), Stem: e.Stem(), Started: e.Timestamp()})
			i = len(entries) - 1
			index[e.RunID()] = i
		}
		h := &entries[i]

		switch e.Type() {
		case TypeBuildStarted:
			var p BuildStart
			if err := decode(e, &p); err != nil {
				return nil, err
			}
			h.Doctype, h.Mode, h.Started = p.Doctype, p.Mode, e.Timestamp()
		case TypeStepFailed:
			var p StepFailure
			if err := decode(e, &p); err != nil {
				return nil, err
			}
			h.Failures = append(h.Failures, p)
		case TypeBuildSucceeded, TypeBuildFailed:
			var p BuildOutcome
			if err := decode(e, &p); err != nil {
				return nil, err
			}
			h.Succeeded = e.Type() == TypeBuildSucceeded
			h.Error = p.Error
			h.Finished = e.Timestamp()
		case TypePublished:
			h.Published = true
			h.Finished = e.Timestamp()
		}
	}
	return entries, nil
}

func decode(e Event, v any) error {
	if err := json.Unmarshal(e.Payload(), v); err != nil {
		return ferrors.JournalError("corrupt journal event").
			WithCause(err).
			WithContext("id", e.ID()).
			WithContext("type", e.Type()).
			Build()
	}
	return nil
}
