package openai

import (
	"time"

	"github.com/papercomputeco/relay/pkg/llm"
)

// ProviderName is the canonical name used in normalized chunks.
const ProviderName = "openai"

// Normalize maps a stream chunk to a provider-neutral chunk. Only the first
// choice is rendered. Chunks with no delta, finish reason or usage yield nil.
func Normalize(chunk *StreamChunk) (*llm.StreamChunk, error) {
	if chunk == nil {
		return nil, nil
	}

	out := &llm.StreamChunk{
		Provider:  ProviderName,
		Model:     chunk.Model,
		CreatedAt: time.Unix(chunk.Created, 0),
	}
	if chunk.Usage != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}

	empty := out.Usage == nil
	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		out.Index = choice.Index

		if choice.Delta.Content != nil {
			out.Delta = *choice.Delta.Content
		}
		for _, tc := range choice.Delta.ToolCalls {
			d := llm.ToolCallDelta{Index: tc.Index, ID: tc.ID}
			if tc.Function != nil {
				d.Name = tc.Function.Name
				d.Arguments = tc.Function.Arguments
			}
			out.ToolCalls = append(out.ToolCalls, d)
		}
		if choice.FinishReason != nil {
			out.StopReason = *choice.FinishReason
			out.Done = true
		}

		empty = empty && out.Delta == "" && len(out.ToolCalls) == 0 && out.StopReason == "" && choice.Delta.Role == ""
	}

	if empty {
		return nil, nil
	}
	return out, nil
}

// NewRequest converts a provider-neutral request into a chat completion
// request.
func NewRequest(req *llm.ChatRequest) *ChatCompletionRequest {
	messages := make([]ChatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, ChatMessage{Role: m.Role, Content: m.GetText()})
	}

	return &ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
}
