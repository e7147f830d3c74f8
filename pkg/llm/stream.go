package llm

import "time"

// StreamChunk represents a single normalized chunk of a streaming response.
// Provider packages map their protocol events onto it so that the gateway
// and CLI can render any provider's output the same way.
type StreamChunk struct {
	// Provider that produced the chunk
	Provider string `json:"provider"`

	// Model that generated the chunk
	Model string `json:"model,omitempty"`

	// Chunk timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// Index for providers that support multiple parallel completions or
	// content blocks
	Index int `json:"index,omitempty"`

	// Text delta carried by this chunk
	Delta string `json:"delta,omitempty"`

	// Tool call fragments carried by this chunk
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`

	// Stop reason (only present on final chunk)
	StopReason string `json:"stop_reason,omitempty"`

	// Usage metrics (typically only present on first or final chunk)
	Usage *Usage `json:"usage,omitempty"`

	// Whether this is the final chunk
	Done bool `json:"done,omitempty"`
}

// ToolCallDelta is a fragment of a tool call. ID and Name arrive with the
// first fragment; Arguments is appended across fragments with the same Index.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}
