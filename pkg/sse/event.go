// Package sse provides the small slice of Server-Sent Events handling the
// relay needs: recognizing the fields of a single upstream SSE line, and
// writing events to a downstream client.
//
// Upstream bodies are split into records by pkg/stream; this package never
// buffers or scans a body itself.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

const (
	dataPrefix  = "data: "
	eventPrefix = "event: "
	idPrefix    = "id: "
)

// Event represents a single SSE event, delimited by a blank line on the wire.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type.
	Type string

	// Data is the event payload. Newlines in Data are written as multiple
	// "data:" fields.
	Data string

	// ID is the optional event ID from the "id:" field.
	ID string
}

// Data returns the payload of a "data: " record. The prefix match is exact:
// "data:x" (no space) is not a data record. A bare "data:" is what an empty
// "data: " line looks like once trimmed and yields an empty payload.
func Data(record string) (string, bool) {
	if record == "data:" {
		return "", true
	}
	return strings.CutPrefix(record, dataPrefix)
}

// IsEvent reports whether record is an "event: " framing line.
func IsEvent(record string) bool {
	return strings.HasPrefix(record, eventPrefix)
}

// IsComment reports whether record is a ":" comment, typically a keep-alive.
func IsComment(record string) bool {
	return strings.HasPrefix(record, ":")
}
