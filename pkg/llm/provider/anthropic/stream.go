package anthropic

import (
	"io"

	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
	"github.com/papercomputeco/relay/pkg/sse"
	"github.com/papercomputeco/relay/pkg/stream"
)

// Decode maps one SSE line of a Messages stream to an event. Only "data: "
// lines carry events; "event: " lines duplicate the JSON discriminator and
// are skipped along with blank separators and comments.
func Decode(record string) (StreamEvent, bool, error) {
	payload, ok := sse.Data(record)
	if !ok {
		return nil, false, nil
	}

	ev, err := ParseEvent([]byte(payload))
	if err != nil {
		return nil, false, err
	}
	return ev, true, nil
}

// NewStream decodes a Messages API streaming body.
func NewStream(body io.Reader) *stream.Stream[StreamEvent] {
	return stream.New(body, Decode, stream.WithMaxRecordSize(transport.MaxRecordSize))
}
