package events

// Event represents a structured state-change notification emitted by a
// ledger operation.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (the dispatcher's
// notification sink).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while
// discarding all events. It is useful when a component wants to optionally
// expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Recorder captures emitted events in order, for tests.
type Recorder struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// OfType returns the captured events with the given type.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MaxBatchSpan caps the number of id/amount pairs one notification may
// carry. A single notification payload is size-limited by the host, so
// batch operations split larger lists into consecutive events.
const MaxBatchSpan = 32
