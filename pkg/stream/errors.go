package stream

import (
	"errors"
	"fmt"
)

// ErrDone is returned by a Decoder when a record signals logical completion
// of the stream (e.g. OpenAI's "[DONE]" sentinel). The Stream releases its
// source and reports io.EOF for every subsequent pull.
var ErrDone = errors.New("stream: done")

// ErrRecordTooLong is returned when the undelimited buffer grows past the
// limit configured with WithMaxRecordSize. It is terminal.
var ErrRecordTooLong = errors.New("stream: record exceeds maximum size")

// TransportError wraps a failure of the underlying byte source. It is always
// the final item of a stream.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "stream transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a single record whose payload could not be decoded.
// It does not end the stream: the next pull continues with the following
// record.
type DecodeError struct {
	// Record is the trimmed record text that failed to decode.
	Record string

	// Err is the underlying parse failure.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding stream record: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTerminal reports whether err ends a stream. Decode failures are not
// terminal; transport failures, the size cap and io.EOF are.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}

	var decodeErr *DecodeError
	return !errors.As(err, &decodeErr)
}
