package google

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
	"github.com/papercomputeco/relay/pkg/stream"
)

// Decode maps one element of a streamed JSON response array to a response.
//
// Records equal to "[" or "]" or empty carry no event. A bracket fused to an
// element ("[{...}" or "{...}]") and a single trailing separator comma are
// stripped before decoding, so Decode also works on line-split bodies where
// each element sits on its own line.
func Decode(record string) (*GenerateContentResponse, bool, error) {
	rec := strings.TrimSpace(record)
	switch rec {
	case "", "[", "]":
		return nil, false, nil
	}

	if rest, ok := strings.CutPrefix(rec, "["); ok && strings.HasPrefix(strings.TrimSpace(rest), "{") {
		rec = strings.TrimSpace(rest)
	}
	rec = strings.TrimSuffix(rec, ",")
	if rest, ok := strings.CutSuffix(rec, "]"); ok && strings.HasSuffix(strings.TrimSpace(rest), "}") {
		rec = strings.TrimSpace(rest)
	}

	var resp GenerateContentResponse
	if err := json.Unmarshal([]byte(rec), &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

// NewStream decodes a streamGenerateContent body: a top-level JSON array
// whose elements arrive incrementally and may span several lines.
func NewStream(body io.Reader) *stream.Stream[*GenerateContentResponse] {
	return stream.New(body, Decode,
		stream.WithSplit(stream.SplitJSONArray()),
		stream.WithMaxRecordSize(transport.MaxMediaRecordSize),
	)
}
