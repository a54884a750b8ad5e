// Package jsonl implements the newline-delimited JSON line sink contract of
// spec.md §4.5/§6: one compact JSON object per line, flushed immediately so
// a streaming external consumer observes it without delay.
package jsonl

import (
	"bufio"
	"encoding/json"
	"io"
)

// Sink serializes values to compact, single-line JSON, one per emit, each
// followed by a newline and an immediate flush.
type Sink struct {
	w *bufio.Writer
}

// NewSink wraps w as a Sink.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriter(w)}
}

// Emit marshals v (struct field order is preserved by encoding/json, so
// member ordering in output follows v's declared field order) and writes it
// followed by a newline, flushing before returning so a tailing consumer
// sees it immediately.
func (s *Sink) Emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}
