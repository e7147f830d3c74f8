package sse

import (
	"bufio"
	"io"
	"strings"
)

// Writer encodes events onto a downstream SSE connection.
//
// ┌──────────────┐   ┌────────────────┐   ┌──────────────────────┐
// │ Writer.Write │──▶│ id/event/data: │──▶│ downstream io.Writer │
// └──────────────┘   └────────────────┘   └──────────────────────┘
//
// When the destination is a *bufio.Writer (as with fiber's stream writer)
// every event is flushed so the client sees it immediately.
type Writer struct {
	dest io.Writer
}

// NewWriter returns a Writer that writes events to dest.
func NewWriter(dest io.Writer) *Writer {
	return &Writer{dest: dest}
}

// Write encodes ev and flushes it downstream.
func (w *Writer) Write(ev Event) error {
	var b strings.Builder

	if ev.ID != "" {
		b.WriteString(idPrefix + ev.ID + "\n")
	}
	if ev.Type != "" {
		b.WriteString(eventPrefix + ev.Type + "\n")
	}
	for line := range strings.SplitSeq(ev.Data, "\n") {
		b.WriteString(dataPrefix + line + "\n")
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w.dest, b.String()); err != nil {
		return err
	}

	return w.Flush()
}

// Comment writes a ":" comment line, used for keep-alives.
func (w *Writer) Comment(text string) error {
	if _, err := io.WriteString(w.dest, ": "+text+"\n\n"); err != nil {
		return err
	}
	return w.Flush()
}

// Flush flushes the destination if it buffers.
func (w *Writer) Flush() error {
	if f, ok := w.dest.(*bufio.Writer); ok {
		return f.Flush()
	}
	return nil
}
