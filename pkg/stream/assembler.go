package stream

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

// Assembler accumulates chunks read from a source into a buffer and extracts
// complete records from it, carrying any trailing partial record forward to
// the next chunk.
//
// Every call to Next yields at most one record. Records already complete in
// the buffer are drained before the source is read again.
type Assembler struct {
	src   io.Reader
	split bufio.SplitFunc

	buf   []byte
	chunk []byte
	max   int

	// eof is set once the source reported io.EOF; the buffer is then
	// flushed through the split function with atEOF=true.
	eof bool

	// done is set after the terminal item was returned.
	done bool
}

// NewAssembler returns an Assembler reading chunks from src.
func NewAssembler(src io.Reader, opts ...Option) *Assembler {
	o := newOptions(opts)
	return &Assembler{
		src:   src,
		split: o.split,
		chunk: make([]byte, o.readSize),
		max:   o.maxRecordSize,
	}
}

// Next returns the next record, trimmed of surrounding whitespace.
//
// It returns io.EOF once the source is exhausted and the residual buffer has
// been flushed, a *TransportError if the source failed, or ErrRecordTooLong
// if the size cap was hit. After any of these, Next keeps returning io.EOF.
func (a *Assembler) Next() (string, error) {
	for !a.done {
		if len(a.buf) > 0 {
			advance, token, err := a.split(a.buf, a.eof)
			final := errors.Is(err, bufio.ErrFinalToken)
			if err != nil && !final {
				a.stop()
				return "", err
			}
			if advance < 0 || advance > len(a.buf) {
				a.stop()
				return "", bufio.ErrAdvanceTooFar
			}
			if token != nil && advance == 0 && !final {
				a.stop()
				return "", io.ErrNoProgress
			}

			a.buf = a.buf[advance:]
			if final {
				a.stop()
				if token == nil {
					return "", io.EOF
				}
			}
			if token != nil {
				return record(token), nil
			}
			if advance > 0 {
				continue
			}
		}

		if a.eof {
			// The split function declined the remainder; flush it verbatim.
			rest := a.buf
			a.stop()
			if len(bytes.TrimSpace(rest)) > 0 {
				return record(rest), nil
			}
			return "", io.EOF
		}

		if a.max > 0 && len(a.buf) > a.max {
			a.stop()
			return "", ErrRecordTooLong
		}

		n, err := a.src.Read(a.chunk)
		if n > 0 {
			a.buf = append(a.buf, a.chunk[:n]...)
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			a.eof = true
		default:
			a.stop()
			return "", &TransportError{Err: err}
		}
	}

	return "", io.EOF
}

// Buffered returns the number of bytes held but not yet extracted.
func (a *Assembler) Buffered() int {
	return len(a.buf)
}

func (a *Assembler) stop() {
	a.done = true
	a.buf = nil
}

// record converts a raw token to text. Invalid UTF-8 is replaced rather than
// rejected; conversion happens per record so that multi-byte sequences
// split across chunks are reassembled first.
func record(token []byte) string {
	return strings.ToValidUTF8(string(bytes.TrimSpace(token)), "\uFFFD")
}
