package sse_test

import (
	"bufio"
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/sse"
)

var _ = Describe("Writer", func() {
	var dst *bytes.Buffer

	BeforeEach(func() {
		dst = &bytes.Buffer{}
	})

	It("writes a data only event", func() {
		w := sse.NewWriter(dst)

		Expect(w.Write(sse.Event{Data: "hello"})).To(Succeed())
		Expect(dst.String()).To(Equal("data: hello\n\n"))
	})

	It("writes id and event type before data", func() {
		w := sse.NewWriter(dst)

		Expect(w.Write(sse.Event{ID: "7", Type: "chunk", Data: `{"delta":"hi"}`})).To(Succeed())
		Expect(dst.String()).To(Equal("id: 7\nevent: chunk\ndata: {\"delta\":\"hi\"}\n\n"))
	})

	It("splits multi-line data into several data fields", func() {
		w := sse.NewWriter(dst)

		Expect(w.Write(sse.Event{Data: "one\ntwo"})).To(Succeed())
		Expect(dst.String()).To(Equal("data: one\ndata: two\n\n"))
	})

	It("writes comments", func() {
		w := sse.NewWriter(dst)

		Expect(w.Comment("ping")).To(Succeed())
		Expect(dst.String()).To(Equal(": ping\n\n"))
	})

	It("flushes buffered destinations after every event", func() {
		bw := bufio.NewWriter(dst)
		w := sse.NewWriter(bw)

		Expect(w.Write(sse.Event{Type: "done", Data: "{}"})).To(Succeed())
		Expect(bw.Buffered()).To(BeZero())
		Expect(dst.String()).To(Equal("event: done\ndata: {}\n\n"))
	})
})
