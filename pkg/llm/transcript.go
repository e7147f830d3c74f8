package llm

import (
	"strings"
	"time"
)

// Transcript is the assembled result of one streamed generation.
type Transcript struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Message    Message   `json:"message"`
	StopReason string    `json:"stop_reason,omitempty"`
	Usage      Usage     `json:"usage"`
	Chunks     int       `json:"chunks"`
	Errors     []string  `json:"errors,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// Text returns the concatenated assistant text.
func (t *Transcript) Text() string {
	return t.Message.GetText()
}

// Accumulator folds normalized chunks into a Transcript.
// It is not safe for concurrent use.
type Accumulator struct {
	provider   string
	model      string
	text       strings.Builder
	tools      map[int]*ContentBlock
	toolOrder  []int
	stopReason string
	usage      Usage
	chunks     int
	errors     []string
	started    time.Time
}

// NewAccumulator returns an Accumulator for a stream from provider.
func NewAccumulator(provider, model string) *Accumulator {
	return &Accumulator{
		provider: provider,
		model:    model,
		tools:    map[int]*ContentBlock{},
		started:  time.Now(),
	}
}

// Add folds one chunk. nil chunks are ignored.
func (a *Accumulator) Add(chunk *StreamChunk) {
	if chunk == nil {
		return
	}
	a.chunks++

	if chunk.Model != "" {
		a.model = chunk.Model
	}
	a.text.WriteString(chunk.Delta)

	for _, tc := range chunk.ToolCalls {
		block, ok := a.tools[tc.Index]
		if !ok {
			block = &ContentBlock{Type: "tool_use"}
			a.tools[tc.Index] = block
			a.toolOrder = append(a.toolOrder, tc.Index)
		}
		if tc.ID != "" {
			block.ToolUseID = tc.ID
		}
		if tc.Name != "" {
			block.ToolName = tc.Name
		}
		block.ToolInput += tc.Arguments
	}

	if chunk.StopReason != "" {
		a.stopReason = chunk.StopReason
	}
	a.usage.Merge(chunk.Usage)
}

// AddError records a non-fatal stream error.
func (a *Accumulator) AddError(err error) {
	if err != nil {
		a.errors = append(a.errors, err.Error())
	}
}

// Transcript returns the state accumulated so far.
func (a *Accumulator) Transcript() *Transcript {
	msg := Message{Role: "assistant"}
	if a.text.Len() > 0 {
		msg.Content = append(msg.Content, ContentBlock{Type: "text", Text: a.text.String()})
	}
	for _, idx := range a.toolOrder {
		msg.Content = append(msg.Content, *a.tools[idx])
	}

	return &Transcript{
		Provider:   a.provider,
		Model:      a.model,
		Message:    msg,
		StopReason: a.stopReason,
		Usage:      a.usage,
		Chunks:     a.chunks,
		Errors:     a.errors,
		StartedAt:  a.started,
		EndedAt:    time.Now(),
	}
}
