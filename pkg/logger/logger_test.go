package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/logger"
)

// jsonLine decodes the single JSON record in buf.
func jsonLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &parsed)).To(Succeed())
	return parsed
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

var _ = Describe("New", func() {
	It("writes text records by default", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf)).Info("stream opened", "provider", "openai")

		Expect(buf.String()).To(ContainSubstring("stream opened"))
		Expect(buf.String()).To(ContainSubstring("provider=openai"))
	})

	It("filters debug records unless debug is enabled", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf)).Debug("hidden")
		Expect(buf.String()).To(BeEmpty())

		logger.New(logger.WithWriter(&buf), logger.WithDebug(true)).Debug("chunk relayed")
		Expect(buf.String()).To(ContainSubstring("chunk relayed"))
	})

	It("accepts an explicit level", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelWarn))
		l.Info("dropped")
		l.Warn("queue full")

		Expect(buf.String()).NotTo(ContainSubstring("dropped"))
		Expect(buf.String()).To(ContainSubstring("queue full"))
	})

	It("writes JSON records", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true)).Info("transcript stored", "chunks", 42)

		parsed := jsonLine(&buf)
		Expect(parsed["msg"]).To(Equal("transcript stored"))
		Expect(parsed["chunks"]).To(BeNumerically("==", 42))
	})

	It("prefers the pretty handler over JSON", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true)).Info("pretty wins")

		Expect(json.Valid(buf.Bytes())).To(BeFalse())
		Expect(buf.String()).To(ContainSubstring("pretty wins"))
	})

	It("filters pretty debug output unless enabled", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithPretty(true)).Debug("quiet")
		Expect(buf.String()).To(BeEmpty())

		logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithDebug(true)).Debug("loud")
		Expect(buf.String()).To(ContainSubstring("loud"))
	})

	It("includes the source location", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true)).Info("where")

		Expect(jsonLine(&buf)).To(HaveKey(slog.SourceKey))
	})

	It("tags records with the component", func() {
		var buf bytes.Buffer
		logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithComponent("gateway")).Info("listening")

		Expect(jsonLine(&buf)).To(HaveKeyWithValue("component", "gateway"))
	})

	It("writes to every writer", func() {
		var buf1, buf2 bytes.Buffer
		logger.New(logger.WithWriters(&buf1, &buf2)).Info("both")

		Expect(buf1.String()).To(ContainSubstring("both"))
		Expect(buf2.String()).To(ContainSubstring("both"))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		l := logger.Nop()
		Expect(l.Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
		Expect(func() { l.With("k", "v").WithGroup("g").Error("msg") }).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	It("dispatches to all loggers", func() {
		var text, js bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&text)),
			logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
		)
		multi.Info("broadcast", "key", "val")

		Expect(text.String()).To(ContainSubstring("broadcast"))
		Expect(jsonLine(&js)).To(HaveKeyWithValue("key", "val"))
	})

	It("respects each logger's level", func() {
		var quiet, loud bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(&quiet)),
			logger.New(logger.WithWriter(&loud), logger.WithDebug(true)),
		)
		multi.Debug("detail")

		Expect(quiet.String()).To(BeEmpty())
		Expect(loud.String()).To(ContainSubstring("detail"))
	})

	It("keeps writing when one destination fails", func() {
		var buf bytes.Buffer
		multi := logger.Multi(
			logger.New(logger.WithWriter(failingWriter{})),
			logger.New(logger.WithWriter(&buf)),
		)
		multi.Info("still here")

		Expect(buf.String()).To(ContainSubstring("still here"))
	})

	It("skips nil loggers", func() {
		var buf bytes.Buffer
		logger.Multi(nil, logger.New(logger.WithWriter(&buf))).Info("ok")
		Expect(buf.String()).To(ContainSubstring("ok"))
	})

	It("carries attrs and groups to every handler", func() {
		var buf bytes.Buffer
		multi := logger.Multi(logger.New(logger.WithWriter(&buf), logger.WithJSON(true)))
		multi.With("component", "worker").WithGroup("job").Info("persisted", "id", "t1")

		parsed := jsonLine(&buf)
		Expect(parsed).To(HaveKeyWithValue("component", "worker"))
		Expect(parsed["job"]).To(HaveKeyWithValue("id", "t1"))
	})
})
