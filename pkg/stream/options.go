package stream

import "bufio"

const defaultReadSize = 32 * 1024

// Option configures an Assembler or Stream.
type Option func(*options)

type options struct {
	split         bufio.SplitFunc
	readSize      int
	maxRecordSize int
}

func newOptions(opts []Option) *options {
	o := &options{
		split:    bufio.ScanLines,
		readSize: defaultReadSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSplit overrides the record boundary function. The default splits on
// "\n" (bufio.ScanLines). Split functions must consume at least one byte
// whenever they return a token.
func WithSplit(split bufio.SplitFunc) Option {
	return func(o *options) {
		if split != nil {
			o.split = split
		}
	}
}

// WithReadSize sets the size of the buffer handed to each source Read.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}

// WithMaxRecordSize caps how many undelimited bytes may accumulate before
// the assembler gives up with ErrRecordTooLong. Zero means unbounded.
func WithMaxRecordSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRecordSize = n
		}
	}
}
