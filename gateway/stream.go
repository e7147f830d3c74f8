package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/relay/gateway/header"
	"github.com/papercomputeco/relay/gateway/worker"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
	"github.com/papercomputeco/relay/pkg/sse"
	"github.com/papercomputeco/relay/pkg/stream"
)

// SSE event types written to the client of /provider/stream.
const (
	EventChunk = "chunk"
	EventError = "error"
	EventDone  = "done"
)

// StreamRequest is the body of POST /provider/stream.
type StreamRequest struct {
	ProviderConfig provider.Config `json:"provider_config"`
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	System         string          `json:"system,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
}

// StreamError is the payload of an "error" event. Fatal errors end the
// stream; others report a record that could not be decoded.
type StreamError struct {
	Error string `json:"error"`
	Fatal bool   `json:"fatal"`
}

// StreamDone is the payload of the final "done" event.
type StreamDone struct {
	TranscriptID string    `json:"transcript_id"`
	RequestID    string    `json:"request_id,omitempty"`
	StopReason   string    `json:"stop_reason,omitempty"`
	Usage        llm.Usage `json:"usage"`
	Chunks       int       `json:"chunks"`
	Errors       int       `json:"errors"`
}

func (r *StreamRequest) validate() error {
	if r.ProviderConfig.ProviderType == "" {
		return errors.New("provider_config.provider_type is required")
	}
	if r.Model == "" {
		return errors.New("model is required")
	}
	if len(r.Messages) == 0 {
		return errors.New("messages must not be empty")
	}
	return nil
}

// handleStream opens a streamed generation upstream and relays its
// normalized chunks to the client as server-sent events.
func (g *Gateway) handleStream(c *fiber.Ctx) error {
	startTime := time.Now()
	requestID := header.RequestIDFrom(c)

	var req StreamRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}
	if err := req.validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	cfg := req.ProviderConfig
	if err := g.endpoints.Resolve(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}
	if err := cfg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	g.logger.Debug("opening upstream stream",
		"request_id", requestID,
		"provider", cfg.ProviderType,
		"model", req.Model,
		"message_count", len(req.Messages),
	)

	// The upstream context is detached from c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns while the relay
	// goroutine still reads from the upstream connection. It is canceled
	// when the relay ends or the response body stream is closed.
	ctx, cancel := context.WithCancel(context.Background())
	cs, err := cfg.OpenStream(ctx, &llm.ChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		cancel()

		var invalid *transport.InvalidResponseError
		if errors.As(err, &invalid) {
			g.logger.Error("upstream returned error",
				"request_id", requestID,
				"provider", cfg.ProviderType,
				"status", invalid.StatusCode,
				"body", invalid.Body,
			)
			return c.Status(invalid.StatusCode).JSON(llm.ErrorResponse{Error: invalid.Body})
		}

		g.logger.Error("upstream request failed",
			"request_id", requestID,
			"provider", cfg.ProviderType,
			"error", err,
		)
		return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "upstream request failed"})
	}

	g.headerHandler.SetSSEHeaders(c)

	acc := llm.NewAccumulator(string(cfg.ProviderType), req.Model)
	body := g.startRelay(cs, cancel, acc, requestID, startTime)

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(body, -1)

	return nil
}

// startRelay relays cs in the background and returns the event stream to
// serve as the response body. Closing the body cancels the upstream.
func (g *Gateway) startRelay(cs *provider.ChunkStream, cancel context.CancelFunc, acc *llm.Accumulator, requestID string, startTime time.Time) io.ReadCloser {
	// io.Pipe makes every event write block until fasthttp has read it and
	// flushed it to the socket, so chunks reach the client as they arrive.
	pr, pw := io.Pipe()
	go g.relayStream(cs, cancel, pw, acc, requestID, startTime)
	return &relayBody{PipeReader: pr, cancel: cancel}
}

// relayBody is the response body of a relayed stream. fasthttp closes it
// when the response is done or the client connection fails.
type relayBody struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (b *relayBody) Close() error {
	b.cancel()
	return b.PipeReader.Close()
}

// relayStream pulls chunks from cs and writes them to pw until the stream
// ends, fails, or the client goes away. The transcript is enqueued in every
// case.
func (g *Gateway) relayStream(cs *provider.ChunkStream, cancel context.CancelFunc, pw *io.PipeWriter, acc *llm.Accumulator, requestID string, startTime time.Time) {
	defer pw.Close()
	defer cs.Close()
	defer cancel()

	rw := &relayWriter{w: sse.NewWriter(pw)}

	for {
		chunk, err := cs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			acc.AddError(err)
			fatal := stream.IsTerminal(err)
			if fatal {
				g.logger.Error("upstream stream failed",
					"request_id", requestID,
					"error", err,
				)
			} else {
				g.logger.Warn("skipping undecodable stream record",
					"request_id", requestID,
					"error", err,
				)
			}

			if rw.write(EventError, StreamError{Error: err.Error(), Fatal: fatal}) != nil || fatal {
				break
			}
			continue
		}

		acc.Add(chunk)
		if rw.write(EventChunk, chunk) != nil {
			break
		}
	}

	t := acc.Transcript()
	t.ID = uuid.NewString()
	t.RequestID = requestID

	if rw.err == nil {
		_ = rw.write(EventDone, StreamDone{
			TranscriptID: t.ID,
			RequestID:    requestID,
			StopReason:   t.StopReason,
			Usage:        t.Usage,
			Chunks:       t.Chunks,
			Errors:       len(t.Errors),
		})
	}

	if rw.err != nil {
		g.logger.Warn("stream relay ended early",
			"request_id", requestID,
			"error", rw.err,
		)
	}

	g.logger.Debug("streaming complete",
		"request_id", requestID,
		"transcript_id", t.ID,
		"chunks", t.Chunks,
		"errors", len(t.Errors),
		"duration", time.Since(startTime),
	)

	g.workerPool.Enqueue(worker.Job{Transcript: t})
}

// relayWriter numbers events and remembers the first write failure.
type relayWriter struct {
	w   *sse.Writer
	seq int
	err error
}

func (rw *relayWriter) write(eventType string, payload any) error {
	if rw.err != nil {
		return rw.err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		rw.err = err
		return err
	}

	rw.seq++
	rw.err = rw.w.Write(sse.Event{
		ID:   strconv.Itoa(rw.seq),
		Type: eventType,
		Data: string(data),
	})
	return rw.err
}
