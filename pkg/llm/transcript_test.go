package llm_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
)

var _ = Describe("Accumulator", func() {
	It("concatenates text deltas into one message", func() {
		acc := llm.NewAccumulator("anthropic", "")
		acc.Add(&llm.StreamChunk{Model: "claude-sonnet-4-20250514", Usage: &llm.Usage{PromptTokens: 12}})
		acc.Add(&llm.StreamChunk{Delta: "Hello"})
		acc.Add(nil)
		acc.Add(&llm.StreamChunk{Delta: ", world"})
		acc.Add(&llm.StreamChunk{StopReason: "end_turn", Usage: &llm.Usage{CompletionTokens: 3}, Done: true})

		t := acc.Transcript()
		Expect(t.Provider).To(Equal("anthropic"))
		Expect(t.Model).To(Equal("claude-sonnet-4-20250514"))
		Expect(t.Text()).To(Equal("Hello, world"))
		Expect(t.Message.Role).To(Equal("assistant"))
		Expect(t.StopReason).To(Equal("end_turn"))
		Expect(t.Usage).To(Equal(llm.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15}))
		Expect(t.Chunks).To(Equal(4))
	})

	It("assembles tool call fragments by index", func() {
		acc := llm.NewAccumulator("openai", "gpt-4o")
		acc.Add(&llm.StreamChunk{ToolCalls: []llm.ToolCallDelta{{Index: 0, ID: "call_1", Name: "lookup"}}})
		acc.Add(&llm.StreamChunk{ToolCalls: []llm.ToolCallDelta{{Index: 0, Arguments: `{"q":`}}})
		acc.Add(&llm.StreamChunk{ToolCalls: []llm.ToolCallDelta{{Index: 0, Arguments: `"go"}`}}})

		msg := acc.Transcript().Message
		Expect(msg.Content).To(HaveLen(1))
		Expect(msg.Content[0]).To(Equal(llm.ContentBlock{
			Type:      "tool_use",
			ToolUseID: "call_1",
			ToolName:  "lookup",
			ToolInput: `{"q":"go"}`,
		}))
	})

	It("records non-fatal errors", func() {
		acc := llm.NewAccumulator("google", "gemini-1.5-pro")
		acc.AddError(errors.New("decoding stream record: bad json"))
		acc.AddError(nil)

		Expect(acc.Transcript().Errors).To(Equal([]string{"decoding stream record: bad json"}))
	})
})

var _ = Describe("Usage", func() {
	It("keeps earlier counts when merging partial usage", func() {
		u := llm.Usage{PromptTokens: 5}
		u.Merge(&llm.Usage{CompletionTokens: 7})
		Expect(u).To(Equal(llm.Usage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12}))

		u.Merge(nil)
		Expect(u.TotalTokens).To(Equal(12))
	})

	It("prefers a reported total", func() {
		u := llm.Usage{}
		u.Merge(&llm.Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 10})
		Expect(u.TotalTokens).To(Equal(10))
	})
})
