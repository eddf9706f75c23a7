package types

// EventType is the discriminator of a stream Event.
type EventType string

const (
	EventStatus    EventType = "status"
	EventMetadata  EventType = "metadata"
	EventReference EventType = "reference"
	EventSummary   EventType = "summary"
	EventError     EventType = "error"
	EventEnd       EventType = "end"
)

// Event is one item of the progress stream produced for a document.
// Payload is a Message for status/error/end, a PaperMetadata, a Reference,
// or a Summary.
type Event struct {
	Type    EventType `json:"type" yaml:"type"`
	Payload any       `json:"payload" yaml:"payload"`
}

// Message is the payload of status, error, and end events.
type Message struct {
	Message string `json:"message" yaml:"message"`
}

// StatusEvent reports progress.
func StatusEvent(msg string) Event {
	return Event{Type: EventStatus, Payload: Message{Message: msg}}
}

// ErrorEvent reports a terminal failure.
func ErrorEvent(msg string) Event {
	return Event{Type: EventError, Payload: Message{Message: msg}}
}

// EndEvent marks normal completion.
func EndEvent(msg string) Event {
	return Event{Type: EventEnd, Payload: Message{Message: msg}}
}

// MetadataEvent carries the paper's own metadata.
func MetadataEvent(m PaperMetadata) Event {
	return Event{Type: EventMetadata, Payload: m}
}

// ReferenceEvent carries one fully verified reference.
func ReferenceEvent(r Reference) Event {
	return Event{Type: EventReference, Payload: r}
}

// SummaryEvent carries a snapshot of the running counts.
func SummaryEvent(s Summary) Event {
	return Event{Type: EventSummary, Payload: s}
}

// IsTerminal reports whether no further events follow this one.
func (e Event) IsTerminal() bool {
	return e.Type == EventEnd || e.Type == EventError
}

// MessageText returns the message of a status, error, or end event.
func (e Event) MessageText() string {
	if m, ok := e.Payload.(Message); ok {
		return m.Message
	}
	return ""
}
