// Package stream turns an arbitrarily chunked streaming HTTP body into a
// typed sequence of protocol events.
//
// A Stream composes an Assembler, which detects record boundaries in the raw
// byte stream, with a provider-specific Decoder, which maps one record to
// zero or one event:
//
//	┌───────────┐   ┌───────────┐   ┌─────────┐   ┌───────────┐
//	│ io.Reader │──▶│ Assembler │──▶│ Decoder │──▶│ Stream[T] │──▶ caller
//	└───────────┘   └───────────┘   └─────────┘   └───────────┘
//
// Streams are pull-based, lazy and single-pass. Each is owned by exactly one
// consumer; nothing in this package starts goroutines or takes locks.
package stream

import (
	"errors"
	"io"
	"iter"
)

// Decoder maps a single record to an event.
//
// ok is false when the record carries no event (blank separators, framing
// metadata, array delimiters). A non-nil err other than ErrDone is a decode
// failure for this record only.
type Decoder[T any] func(record string) (event T, ok bool, err error)

// Stream is a pull iterator over decoded events.
type Stream[T any] struct {
	asm    *Assembler
	decode Decoder[T]
	closer io.Closer
	done   bool
}

// New returns a Stream reading from src. If src implements io.Closer it is
// closed when the stream ends or is abandoned via Close.
func New[T any](src io.Reader, decode Decoder[T], opts ...Option) *Stream[T] {
	s := &Stream[T]{
		asm:    NewAssembler(src, opts...),
		decode: decode,
	}
	if c, ok := src.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next blocks until the next event is available.
//
// It returns a *DecodeError for a record that failed to decode; the caller
// may keep pulling. It returns a *TransportError (or ErrRecordTooLong) as the
// final item when the source fails, and io.EOF once the stream is over.
// Calling Next after io.EOF keeps returning io.EOF.
func (s *Stream[T]) Next() (T, error) {
	var zero T

	for !s.done {
		rec, err := s.asm.Next()
		if err != nil {
			s.release()
			return zero, err
		}

		event, ok, err := s.decode(rec)
		switch {
		case errors.Is(err, ErrDone):
			s.release()
			return zero, io.EOF
		case err != nil:
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				err = &DecodeError{Record: rec, Err: err}
			}
			return zero, err
		case ok:
			return event, nil
		}
	}

	return zero, io.EOF
}

// All returns an iterator over the remaining items of the stream. Iteration
// stops after the terminal item; breaking out of the loop closes the stream.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			event, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(event, err) {
				_ = s.Close()
				return
			}
		}
	}
}

// Close abandons the stream and releases the source. No event is observable
// afterwards. Close is safe to call more than once.
func (s *Stream[T]) Close() error {
	return s.release()
}

func (s *Stream[T]) release() error {
	s.done = true
	if s.closer == nil {
		return nil
	}

	c := s.closer
	s.closer = nil
	return c.Close()
}
