// Package encoder writes SSE frames to an output stream.
package encoder

import (
	"io"

	"github.com/go-rfc/ssestream/pkg/event"
)

// Encoder writes event frames to an output stream. Each frame reaches
// the writer in a single Write call, so frames from one Encoder never
// interleave on the wire as long as the Encoder is not shared.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	out io.Writer
	sep string
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithSeparator sets the separator handed to event.Marshal for loose
// values passed to Write. Events carrying their own separator keep it.
func WithSeparator(sep string) Option {
	return func(e *Encoder) { e.sep = sep }
}

// New returns an Encoder writing frames to out.
func New(out io.Writer, opts ...Option) *Encoder {
	e := &Encoder{out: out}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Write coerces v into a frame and writes it. It accepts everything
// event.Marshal accepts.
func (e *Encoder) Write(v any) (int, error) {
	frame, err := event.Marshal(v, e.sep)
	if err != nil {
		return 0, err
	}
	return e.out.Write(frame)
}

// WriteEvent encodes ev and writes its frame.
func (e *Encoder) WriteEvent(ev *event.Event) (int, error) {
	return e.out.Write(ev.Encode())
}

// WriteBytesEvent encodes ev and writes its frame.
func (e *Encoder) WriteBytesEvent(ev *event.BytesEvent) (int, error) {
	return e.out.Write(ev.Encode())
}

// WriteComment writes a comment-only frame. Clients ignore it, which is
// what keep-alive traffic wants.
func (e *Encoder) WriteComment(comment string) (int, error) {
	ev := &event.Event{Comment: comment, Sep: e.sep}
	return e.out.Write(ev.Encode())
}

// WriteRetry writes a frame carrying only the reconnection delay hint.
func (e *Encoder) WriteRetry(retryDelayInMillis int) (int, error) {
	ev := &event.Event{Retry: retryDelayInMillis, Sep: e.sep}
	return e.out.Write(ev.Encode())
}
