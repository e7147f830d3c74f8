// Package storagetest holds the behavior every storage.Driver shares, as
// ginkgo specs that driver test suites register.
package storagetest

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/storage"
)

// NewTranscript returns a transcript started offset after a fixed epoch.
func NewTranscript(id, provider string, offset time.Duration) *llm.Transcript {
	started := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Add(offset)
	return &llm.Transcript{
		ID:         id,
		RequestID:  "req-" + id,
		Provider:   provider,
		Model:      "test-model",
		Message:    llm.NewTextMessage("assistant", "hello from "+id),
		StopReason: "stop",
		Usage:      llm.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		Chunks:     4,
		StartedAt:  started,
		EndedAt:    started.Add(time.Second),
	}
}

// DescribeDriver registers the shared driver specs. newDriver is called
// before each spec and must return an empty driver.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a transcript", func() {
			t := NewTranscript("t1", "openai", 0)
			Expect(driver.Put(ctx, t)).To(Succeed())

			got, err := driver.Get(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("t1"))
			Expect(got.Provider).To(Equal("openai"))
			Expect(got.Text()).To(Equal("hello from t1"))
			Expect(got.Usage).To(Equal(t.Usage))
			Expect(got.StartedAt.Equal(t.StartedAt)).To(BeTrue())
		})

		It("replaces a transcript with the same id", func() {
			Expect(driver.Put(ctx, NewTranscript("t1", "openai", 0))).To(Succeed())

			updated := NewTranscript("t1", "openai", 0)
			updated.StopReason = "length"
			Expect(driver.Put(ctx, updated)).To(Succeed())

			got, err := driver.Get(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.StopReason).To(Equal("length"))
		})

		It("returns NotFoundError for unknown ids", func() {
			_, err := driver.Get(ctx, "missing")

			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.ID).To(Equal("missing"))
		})

		It("rejects transcripts without an id", func() {
			Expect(driver.Put(ctx, &llm.Transcript{Provider: "openai"})).NotTo(Succeed())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			Expect(driver.Put(ctx, NewTranscript("a", "openai", 1*time.Minute))).To(Succeed())
			Expect(driver.Put(ctx, NewTranscript("b", "anthropic", 2*time.Minute))).To(Succeed())
			Expect(driver.Put(ctx, NewTranscript("c", "openai", 3*time.Minute))).To(Succeed())
		})

		ids := func(ts []*llm.Transcript) []string {
			out := make([]string, 0, len(ts))
			for _, t := range ts {
				out = append(out, t.ID)
			}
			return out
		}

		It("returns the most recent first", func() {
			ts, err := driver.List(ctx, storage.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(ts)).To(Equal([]string{"c", "b", "a"}))
		})

		It("filters by provider", func() {
			ts, err := driver.List(ctx, storage.ListOptions{Provider: "openai"})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(ts)).To(Equal([]string{"c", "a"}))
		})

		It("applies the limit", func() {
			ts, err := driver.List(ctx, storage.ListOptions{Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(ts)).To(Equal([]string{"c"}))
		})
	})
}
