package stream_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/stream"
)

type element struct {
	Foo  int    `json:"foo"`
	Text string `json:"text,omitempty"`
}

func decodeElement(record string) (element, bool, error) {
	var el element
	if err := json.Unmarshal([]byte(record), &el); err != nil {
		return element{}, false, fmt.Errorf("decoding element: %w", err)
	}
	return el, true, nil
}

func newArrayStream(chunks ...string) *stream.Stream[element] {
	return stream.New(newChunkReader(chunks...), decodeElement, stream.WithSplit(stream.SplitJSONArray()))
}

var _ = Describe("SplitJSONArray", func() {
	It("yields one record per array element across chunk boundaries", func() {
		events, errs := collect(newArrayStream("[", `{"foo":1},`, `{"foo":2}`, "]"))

		Expect(errs).To(BeEmpty())
		Expect(events).To(Equal([]element{{Foo: 1}, {Foo: 2}}))
	})

	It("handles elements spread over several lines", func() {
		body := "[{\n  \"foo\": 1\n}\n,\r\n{\n  \"foo\": 2,\n  \"text\": \"hi\"\n}\n]\n"

		events, errs := collect(newArrayStream(body))
		Expect(errs).To(BeEmpty())
		Expect(events).To(Equal([]element{{Foo: 1}, {Foo: 2, Text: "hi"}}))
	})

	It("ignores delimiters inside strings", func() {
		body := `[{"foo":1,"text":"a ] b, {c} \"[d\""}]`

		events, errs := collect(newArrayStream(body))
		Expect(errs).To(BeEmpty())
		Expect(events).To(Equal([]element{{Foo: 1, Text: `a ] b, {c} "[d"`}}))
	})

	It("keeps nested arrays inside an element", func() {
		s := stream.New(
			strings.NewReader(`[{"foo":3,"list":[1,[2]]}]`),
			decodeElement,
			stream.WithSplit(stream.SplitJSONArray()),
		)

		events, errs := collect(s)
		Expect(errs).To(BeEmpty())
		Expect(events).To(Equal([]element{{Foo: 3}}))
	})

	It("flushes an incomplete element at end of stream as a decode failure", func() {
		events, errs := collect(newArrayStream("[", `{"foo":1},`, `{"foo":`))

		Expect(events).To(Equal([]element{{Foo: 1}}))
		Expect(errs).To(HaveLen(1))

		var decodeErr *stream.DecodeError
		Expect(errs[0]).To(BeAssignableToTypeOf(decodeErr))
		Expect(errs[0].(*stream.DecodeError).Record).To(Equal(`{"foo":`))
	})

	It("produces nothing for an empty array", func() {
		events, errs := collect(newArrayStream("[", "\n", "]"))

		Expect(errs).To(BeEmpty())
		Expect(events).To(BeEmpty())
	})

	It("is invariant to one byte reads", func() {
		body := "[{\"foo\":1}\n,{\"foo\":2,\"text\":\"x,y\"}\n]"
		s := stream.New(
			iotest.OneByteReader(strings.NewReader(body)),
			decodeElement,
			stream.WithSplit(stream.SplitJSONArray()),
		)

		events, errs := collect(s)
		Expect(errs).To(BeEmpty())
		Expect(events).To(Equal([]element{{Foo: 1}, {Foo: 2, Text: "x,y"}}))
	})
})
