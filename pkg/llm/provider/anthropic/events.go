package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
)

// StreamEvent is one event of a Messages API stream. The concrete type is one
// of *MessageStart, *ContentBlockStart, *ContentBlockDelta, *ContentBlockStop,
// *MessageDelta, *MessageStop or *Ping.
type StreamEvent interface {
	eventType() string
}

// MessageStart opens the stream with the message envelope and input usage.
type MessageStart struct {
	Message MessageInfo `json:"message"`
}

// MessageInfo is the message envelope carried by message_start.
type MessageInfo struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Role         string            `json:"role"`
	Content      []json.RawMessage `json:"content"`
	Model        string            `json:"model"`
	StopReason   *string           `json:"stop_reason"`
	StopSequence *string           `json:"stop_sequence"`
	Usage        Usage             `json:"usage"`
}

// ContentBlockStart opens content block Index.
type ContentBlockStart struct {
	Index        int
	ContentBlock ContentBlock
}

// ContentBlockDelta appends to content block Index.
type ContentBlockDelta struct {
	Index int
	Delta Delta
}

// ContentBlockStop closes content block Index.
type ContentBlockStop struct {
	Index int `json:"index"`
}

// MessageDelta carries top-level changes at the end of the message.
type MessageDelta struct {
	Delta MessageDeltaBody `json:"delta"`
	Usage DeltaUsage       `json:"usage"`
}

// MessageDeltaBody holds the final stop reason.
type MessageDeltaBody struct {
	StopReason   *string `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence"`
}

// DeltaUsage is the cumulative output token count.
type DeltaUsage struct {
	OutputTokens int `json:"output_tokens"`
}

// MessageStop ends the message.
type MessageStop struct{}

// Ping is a keep-alive.
type Ping struct{}

func (*MessageStart) eventType() string      { return "message_start" }
func (*ContentBlockStart) eventType() string { return "content_block_start" }
func (*ContentBlockDelta) eventType() string { return "content_block_delta" }
func (*ContentBlockStop) eventType() string  { return "content_block_stop" }
func (*MessageDelta) eventType() string      { return "message_delta" }
func (*MessageStop) eventType() string       { return "message_stop" }
func (*Ping) eventType() string              { return "ping" }

// ContentBlock is the initial state of a content block: *TextBlock or
// *ToolUseBlock.
type ContentBlock interface {
	blockType() string
}

// TextBlock starts a text block.
type TextBlock struct {
	Text string `json:"text"`
}

// ToolUseBlock starts a tool call. Input is usually empty here and streamed
// as InputJSONDelta fragments.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (*TextBlock) blockType() string    { return "text" }
func (*ToolUseBlock) blockType() string { return "tool_use" }

// Delta is an increment to a content block: *TextDelta or *InputJSONDelta.
type Delta interface {
	deltaType() string
}

// TextDelta appends text.
type TextDelta struct {
	Text string `json:"text"`
}

// InputJSONDelta appends a fragment of tool input JSON.
type InputJSONDelta struct {
	PartialJSON string `json:"partial_json"`
}

func (*TextDelta) deltaType() string      { return "text_delta" }
func (*InputJSONDelta) deltaType() string { return "input_json_delta" }

var errMissingType = errors.New(`missing "type" discriminator`)

// ParseEvent decodes one JSON stream event.
func ParseEvent(data []byte) (StreamEvent, error) {
	typ, err := discriminator(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case "message_start":
		var raw struct {
			Message *MessageInfo `json:"message"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Message == nil {
			return nil, errors.New(`message_start: missing "message"`)
		}
		return &MessageStart{Message: *raw.Message}, nil
	case "content_block_start":
		var raw struct {
			Index        *int            `json:"index"`
			ContentBlock json.RawMessage `json:"content_block"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Index == nil {
			return nil, errors.New(`content_block_start: missing "index"`)
		}
		block, err := parseContentBlock(raw.ContentBlock)
		if err != nil {
			return nil, fmt.Errorf("content_block_start: %w", err)
		}
		return &ContentBlockStart{Index: *raw.Index, ContentBlock: block}, nil
	case "content_block_delta":
		var raw struct {
			Index *int            `json:"index"`
			Delta json.RawMessage `json:"delta"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Index == nil {
			return nil, errors.New(`content_block_delta: missing "index"`)
		}
		delta, err := parseDelta(raw.Delta)
		if err != nil {
			return nil, fmt.Errorf("content_block_delta: %w", err)
		}
		return &ContentBlockDelta{Index: *raw.Index, Delta: delta}, nil
	case "content_block_stop":
		var raw struct {
			Index *int `json:"index"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Index == nil {
			return nil, errors.New(`content_block_stop: missing "index"`)
		}
		return &ContentBlockStop{Index: *raw.Index}, nil
	case "message_delta":
		var raw struct {
			Delta *MessageDeltaBody `json:"delta"`
			Usage *DeltaUsage       `json:"usage"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		if raw.Delta == nil {
			return nil, errors.New(`message_delta: missing "delta"`)
		}
		if raw.Usage == nil {
			return nil, errors.New(`message_delta: missing "usage"`)
		}
		return &MessageDelta{Delta: *raw.Delta, Usage: *raw.Usage}, nil
	case "message_stop":
		return &MessageStop{}, nil
	case "ping":
		return &Ping{}, nil
	case "error":
		return nil, upstreamError(data)
	default:
		return nil, fmt.Errorf("unknown event type %q", typ)
	}
}

// upstreamError reports an in-stream error payload. It is not a stream event:
// the record fails to decode and the stream carries on.
func upstreamError(data []byte) error {
	var raw struct {
		Error transport.APIError `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return fmt.Errorf("upstream error event: %w", &raw.Error)
}

func parseContentBlock(data json.RawMessage) (ContentBlock, error) {
	typ, err := discriminator(data)
	if err != nil {
		return nil, fmt.Errorf("content_block: %w", err)
	}

	switch typ {
	case "text":
		b := &TextBlock{}
		return b, json.Unmarshal(data, b)
	case "tool_use":
		b := &ToolUseBlock{}
		return b, json.Unmarshal(data, b)
	default:
		return nil, fmt.Errorf("unknown content block type %q", typ)
	}
}

func parseDelta(data json.RawMessage) (Delta, error) {
	typ, err := discriminator(data)
	if err != nil {
		return nil, fmt.Errorf("delta: %w", err)
	}

	switch typ {
	case "text_delta":
		d := &TextDelta{}
		return d, json.Unmarshal(data, d)
	case "input_json_delta":
		d := &InputJSONDelta{}
		return d, json.Unmarshal(data, d)
	default:
		return nil, fmt.Errorf("unknown delta type %q", typ)
	}
}

func discriminator(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errMissingType
	}

	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", err
	}
	if head.Type == nil {
		return "", errMissingType
	}
	return *head.Type, nil
}
