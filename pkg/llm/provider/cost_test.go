package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider"
)

var _ = Describe("EstimateCost", func() {
	usage := llm.Usage{PromptTokens: 1_000_000, CompletionTokens: 500_000}

	It("prices input and output tokens separately", func() {
		cost, ok := provider.EstimateCost("claude-sonnet-4-20250514", usage)
		Expect(ok).To(BeTrue())
		Expect(cost).To(BeNumerically("~", 3.0+7.5, 1e-9))
	})

	It("prices dated snapshots as their base model", func() {
		cost, ok := provider.EstimateCost("gpt-4o-2024-08-06", usage)
		Expect(ok).To(BeTrue())
		Expect(cost).To(BeNumerically("~", 2.5+5.0, 1e-9))
	})

	It("is zero for zero usage", func() {
		cost, ok := provider.EstimateCost("gpt-4o-mini", llm.Usage{})
		Expect(ok).To(BeTrue())
		Expect(cost).To(BeZero())
	})

	DescribeTable("reports models without a list price",
		func(model string) {
			_, ok := provider.EstimateCost(model, usage)
			Expect(ok).To(BeFalse())
		},
		Entry("unknown model", "llama3"),
		Entry("image model", "dall-e-3"),
		Entry("malformed date suffix", "gpt-4o-2024-0806"),
	)
})
