package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/relay/pkg/llm"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeStreamCompleted is emitted after a relayed stream has ended
	// and its transcript was persisted.
	EventTypeStreamCompleted = "relay.stream.completed"
)

// StreamCompletedEvent is a transport-neutral event payload for a finished stream.
type StreamCompletedEvent struct {
	SchemaVersion int               `json:"schema_version"`
	EventType     string            `json:"event_type"`
	EventID       string            `json:"event_id"`
	EmittedAt     time.Time         `json:"emitted_at"`
	Source        EventSource       `json:"source"`
	RequestMeta   RequestMeta       `json:"request_meta"`
	Transcript    TranscriptSummary `json:"transcript"`
}

// EventSource identifies where the stream originated.
type EventSource struct {
	Gateway  string `json:"gateway,omitempty"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// RequestMeta captures request lifecycle metadata for the event.
type RequestMeta struct {
	RequestID   string    `json:"request_id,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
}

// TranscriptSummary is the part of a transcript carried on the wire. The
// full message is left in storage.
type TranscriptSummary struct {
	ID         string    `json:"id"`
	StopReason string    `json:"stop_reason,omitempty"`
	Usage      llm.Usage `json:"usage"`
	Chunks     int       `json:"chunks"`
	TextLength int       `json:"text_length"`
	ErrorCount int       `json:"error_count"`
}

// NewStreamCompletedEvent builds the event for t. gateway names the emitting
// instance and may be empty.
func NewStreamCompletedEvent(gateway string, t *llm.Transcript) *StreamCompletedEvent {
	return &StreamCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeStreamCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source: EventSource{
			Gateway:  gateway,
			Provider: t.Provider,
			Model:    t.Model,
		},
		RequestMeta: RequestMeta{
			RequestID:   t.RequestID,
			StartedAt:   t.StartedAt,
			CompletedAt: t.EndedAt,
			DurationMs:  t.EndedAt.Sub(t.StartedAt).Milliseconds(),
		},
		Transcript: TranscriptSummary{
			ID:         t.ID,
			StopReason: t.StopReason,
			Usage:      t.Usage,
			Chunks:     t.Chunks,
			TextLength: len(t.Text()),
			ErrorCount: len(t.Errors),
		},
	}
}
