package anthropic_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider/anthropic"
)

var _ = Describe("Normalize", func() {
	It("folds a full stream into one transcript", func() {
		events, errs := collect(anthropic.NewStream(strings.NewReader(messageStream)))
		Expect(errs).To(BeEmpty())

		acc := llm.NewAccumulator(anthropic.ProviderName, "")
		for _, ev := range events {
			chunk, err := anthropic.Normalize(ev)
			Expect(err).NotTo(HaveOccurred())
			acc.Add(chunk)
		}

		t := acc.Transcript()
		Expect(t.Model).To(Equal("claude-sonnet-4-20250514"))
		Expect(t.Text()).To(Equal("Hello!"))
		Expect(t.StopReason).To(Equal("end_turn"))
		Expect(t.Usage).To(Equal(llm.Usage{PromptTokens: 25, CompletionTokens: 15, TotalTokens: 40}))
	})

	It("returns nothing for pings and block boundaries", func() {
		for _, ev := range []anthropic.StreamEvent{
			&anthropic.Ping{},
			&anthropic.ContentBlockStop{Index: 0},
			&anthropic.ContentBlockStart{ContentBlock: &anthropic.TextBlock{}},
		} {
			chunk, err := anthropic.Normalize(ev)
			Expect(err).NotTo(HaveOccurred())
			Expect(chunk).To(BeNil())
		}
	})

	It("maps tool use blocks and input json deltas to tool call fragments", func() {
		chunk, err := anthropic.Normalize(&anthropic.ContentBlockStart{
			Index:        1,
			ContentBlock: &anthropic.ToolUseBlock{ID: "toolu_1", Name: "get_weather"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(chunk.ToolCalls).To(Equal([]llm.ToolCallDelta{{Index: 1, ID: "toolu_1", Name: "get_weather"}}))

		chunk, err = anthropic.Normalize(&anthropic.ContentBlockDelta{
			Index: 1,
			Delta: &anthropic.InputJSONDelta{PartialJSON: `{"city":`},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(chunk.ToolCalls).To(Equal([]llm.ToolCallDelta{{Index: 1, Arguments: `{"city":`}}))
	})

	It("marks message_stop as done", func() {
		chunk, err := anthropic.Normalize(&anthropic.MessageStop{})
		Expect(err).NotTo(HaveOccurred())
		Expect(chunk.Done).To(BeTrue())
	})
})

var _ = Describe("NewRequest", func() {
	It("lifts system turns and defaults max_tokens", func() {
		req := anthropic.NewRequest(&llm.ChatRequest{
			Model: "claude-sonnet-4-20250514",
			Messages: []llm.Message{
				llm.NewTextMessage("system", "Be brief."),
				llm.NewTextMessage("user", "Hi"),
			},
		})

		Expect(req.System).To(Equal("Be brief."))
		Expect(req.MaxTokens).To(Equal(anthropic.DefaultMaxTokens))
		Expect(req.Messages).To(Equal([]anthropic.Message{{Role: "user", Content: "Hi"}}))
	})
})
