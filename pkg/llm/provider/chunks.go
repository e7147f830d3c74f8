package provider

import (
	"errors"
	"io"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/stream"
)

// ChunkStream is a provider stream viewed as normalized chunks.
//
// Next follows the pkg/stream contract: a *stream.DecodeError is non-fatal,
// any other error is the final item, and io.EOF marks the end. A normalize
// failure is final as well.
type ChunkStream struct {
	next  func() (*llm.StreamChunk, error)
	close func() error
	done  bool
}

func newChunkStream[T any](s *stream.Stream[T], normalize func(T) (*llm.StreamChunk, error)) *ChunkStream {
	return &ChunkStream{
		next: func() (*llm.StreamChunk, error) {
			for {
				ev, err := s.Next()
				if err != nil {
					return nil, err
				}

				chunk, err := normalize(ev)
				if err != nil {
					_ = s.Close()
					return nil, err
				}
				if chunk != nil {
					return chunk, nil
				}
			}
		},
		close: s.Close,
	}
}

// Next returns the next chunk.
func (cs *ChunkStream) Next() (*llm.StreamChunk, error) {
	if cs.done {
		return nil, io.EOF
	}

	chunk, err := cs.next()
	if err != nil && (errors.Is(err, io.EOF) || stream.IsTerminal(err)) {
		cs.done = true
	}
	return chunk, err
}

// Close abandons the stream.
func (cs *ChunkStream) Close() error {
	cs.done = true
	return cs.close()
}
