package openai

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
	"github.com/papercomputeco/relay/pkg/sse"
	"github.com/papercomputeco/relay/pkg/stream"
)

// doneSentinel is the payload of the last data line of a completion stream.
const doneSentinel = "[DONE]"

var errEmptyPayload = errors.New("empty data payload")

// Decode maps one SSE line of a chat completion stream to a chunk.
//
// "data: [DONE]" ends the stream with stream.ErrDone. An empty data payload
// is a decode failure. Every other non-data line is ignored.
func Decode(record string) (*StreamChunk, bool, error) {
	payload, ok := sse.Data(record)
	if !ok {
		return nil, false, nil
	}

	switch payload {
	case doneSentinel:
		return nil, false, stream.ErrDone
	case "":
		return nil, false, errEmptyPayload
	}

	var chunk StreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, false, err
	}
	return &chunk, true, nil
}

// NewStream decodes a chat completion streaming body.
func NewStream(body io.Reader) *stream.Stream[*StreamChunk] {
	return stream.New(body, Decode, stream.WithMaxRecordSize(transport.MaxRecordSize))
}
