package google

import (
	"encoding/json"
	"strings"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
)

// ProviderName is the canonical name used in normalized chunks.
const ProviderName = "google"

// Normalize maps a streamed response element to a provider-neutral chunk.
// Only the first candidate is rendered. A blocked prompt yields an
// *transport.APIError.
func Normalize(resp *GenerateContentResponse) (*llm.StreamChunk, error) {
	if resp == nil {
		return nil, nil
	}
	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" {
		return nil, &transport.APIError{Type: "prompt_blocked", Message: pf.BlockReason}
	}

	out := &llm.StreamChunk{
		Provider: ProviderName,
		Model:    resp.ModelVersion,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     u.PromptTokenCount,
			CompletionTokens: u.CandidatesTokenCount,
			TotalTokens:      u.TotalTokenCount,
		}
	}

	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		out.Index = cand.Index

		if cand.Content != nil {
			var text strings.Builder
			for i, part := range cand.Content.Parts {
				text.WriteString(part.Text)
				if part.FunctionCall == nil {
					continue
				}
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return nil, err
				}
				out.ToolCalls = append(out.ToolCalls, llm.ToolCallDelta{
					Index:     i,
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				})
			}
			out.Delta = text.String()
		}

		if cand.FinishReason != "" {
			out.StopReason = cand.FinishReason
			out.Done = true
		}
	}

	return out, nil
}

// NewRequest converts a provider-neutral request into a generateContent
// request. The "assistant" role is called "model" by this API.
func NewRequest(req *llm.ChatRequest) *GenerateContentRequest {
	out := &GenerateContentRequest{}

	system := req.System
	for _, m := range req.Messages {
		role := m.Role
		switch role {
		case "system":
			if system != "" {
				system += "\n"
			}
			system += m.GetText()
			continue
		case "assistant":
			role = "model"
		}
		out.Contents = append(out.Contents, Content{Role: role, Parts: []Part{{Text: m.GetText()}}})
	}

	if system != "" {
		out.SystemInstruction = &Content{Parts: []Part{{Text: system}}}
	}
	if req.MaxTokens != nil || req.Temperature != nil {
		out.GenerationConfig = &GenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}
	return out
}
