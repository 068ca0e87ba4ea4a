package eventstore

import "time"

// Event types recorded in the journal.
const (
	TypeRunStarted     = "run_started"
	TypeBuildStarted   = "build_started"
	TypeStepFailed     = "step_failed"
	TypeBuildSucceeded = "build_succeeded"
	TypeBuildFailed    = "build_failed"
	TypePublished      = "published"
	TypeRunFinished    = "run_finished"
)

// Event represents one journal entry.
type Event interface {
	// ID returns the unique identifier for this event.
	ID() int64
	// RunID returns the run this event belongs to.
	RunID() string
	// Stem returns the document the event concerns; empty for run-level events.
	Stem() string
	// Type returns the event type name.
	Type() string
	// Timestamp returns when the event occurred.
	Timestamp() time.Time
	// Payload returns the event data as JSON.
	Payload() []byte
	// Metadata returns optional event metadata.
	Metadata() map[string]string
}

// BaseEvent provides a default implementation of Event.
type BaseEvent struct {
	EventID        int64
	EventRunID     string
	EventStem      string
	EventType      string
	EventTimestamp time.Time
	EventPayload   []byte
	EventMetadata  map[string]string
}

func (e *BaseEvent) ID() int64                   { return e.EventID }
func (e *BaseEvent) RunID() string               { return e.EventRunID }
func (e *BaseEvent) Stem() string                { return e.EventStem }
func (e *BaseEvent) Type() string                { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time        { return e.EventTimestamp }
func (e *BaseEvent) Payload() []byte             { return e.EventPayload }
func (e *BaseEvent) Metadata() map[string]string { return e.EventMetadata }
