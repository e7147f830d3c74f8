package anthropic

import (
	"github.com/papercomputeco/relay/pkg/llm"
)

// ProviderName is the canonical name used in normalized chunks.
const ProviderName = "anthropic"

// Normalize maps a stream event to a provider-neutral chunk. It returns nil
// for events with nothing to render (ping, block boundaries).
func Normalize(ev StreamEvent) (*llm.StreamChunk, error) {
	switch ev := ev.(type) {
	case *MessageStart:
		u := ev.Message.Usage
		return &llm.StreamChunk{
			Provider: ProviderName,
			Model:    ev.Message.Model,
			Usage: &llm.Usage{
				PromptTokens:     u.InputTokens + u.CacheCreationInputTokens + u.CacheReadInputTokens,
				CompletionTokens: u.OutputTokens,
			},
		}, nil

	case *ContentBlockStart:
		tb, ok := ev.ContentBlock.(*ToolUseBlock)
		if !ok {
			return nil, nil
		}
		return &llm.StreamChunk{
			Provider:  ProviderName,
			Index:     ev.Index,
			ToolCalls: []llm.ToolCallDelta{{Index: ev.Index, ID: tb.ID, Name: tb.Name}},
		}, nil

	case *ContentBlockDelta:
		chunk := &llm.StreamChunk{Provider: ProviderName, Index: ev.Index}
		switch d := ev.Delta.(type) {
		case *TextDelta:
			chunk.Delta = d.Text
		case *InputJSONDelta:
			chunk.ToolCalls = []llm.ToolCallDelta{{Index: ev.Index, Arguments: d.PartialJSON}}
		}
		return chunk, nil

	case *MessageDelta:
		chunk := &llm.StreamChunk{
			Provider: ProviderName,
			Usage:    &llm.Usage{CompletionTokens: ev.Usage.OutputTokens},
		}
		if ev.Delta.StopReason != nil {
			chunk.StopReason = *ev.Delta.StopReason
		}
		return chunk, nil

	case *MessageStop:
		return &llm.StreamChunk{Provider: ProviderName, Done: true}, nil

	default:
		return nil, nil
	}
}

// NewRequest converts a provider-neutral request into a Messages request.
func NewRequest(req *llm.ChatRequest) *MessagesRequest {
	maxTokens := DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	system := req.System
	messages := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		// System turns are a top-level field in this API.
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.GetText()
			continue
		}
		messages = append(messages, Message{Role: m.Role, Content: m.GetText()})
	}

	return &MessagesRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      system,
	}
}
