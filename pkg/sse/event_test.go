package sse_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/sse"
)

var _ = Describe("Event fields", func() {
	Describe("Data", func() {
		It("returns the payload after the data prefix", func() {
			payload, ok := sse.Data(`data: {"type":"ping"}`)
			Expect(ok).To(BeTrue())
			Expect(payload).To(Equal(`{"type":"ping"}`))
		})

		It("accepts an empty payload", func() {
			payload, ok := sse.Data("data: ")
			Expect(ok).To(BeTrue())
			Expect(payload).To(BeEmpty())

			payload, ok = sse.Data("data:")
			Expect(ok).To(BeTrue())
			Expect(payload).To(BeEmpty())
		})

		It("requires the exact prefix", func() {
			_, ok := sse.Data("data:[DONE]")
			Expect(ok).To(BeFalse())

			_, ok = sse.Data("event: message_stop")
			Expect(ok).To(BeFalse())
		})
	})

	It("recognizes event lines", func() {
		Expect(sse.IsEvent("event: content_block_delta")).To(BeTrue())
		Expect(sse.IsEvent("data: x")).To(BeFalse())
	})

	It("recognizes comments", func() {
		Expect(sse.IsComment(": keep-alive")).To(BeTrue())
		Expect(sse.IsComment(":")).To(BeTrue())
		Expect(sse.IsComment("data: :")).To(BeFalse())
	})
})
