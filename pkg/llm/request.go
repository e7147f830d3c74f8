package llm

// ChatRequest represents a provider-agnostic chat completion request.
// Provider packages convert it into their own wire format.
type ChatRequest struct {
	// Model name (e.g., "gpt-4o", "claude-sonnet-4-20250514", "gemini-1.5-pro")
	Model string `json:"model"`

	// Conversation messages
	Messages []Message `json:"messages"`

	// System prompt (some providers handle this separately from messages)
	System string `json:"system,omitempty"`

	// Generation parameters (unified across providers)
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}
