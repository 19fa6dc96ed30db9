// Package stream serves live event streams over HTTP. Upgrade takes
// over a response writer, sets the event-stream headers and returns a
// Stream whose frames are flushed to the client as they are written.
package stream

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-rfc/ssestream/pkg/encoder"
)

// ContentType is the media type of an event stream response.
const ContentType = "text/event-stream"

// DefaultPingInterval is how often Serve emits a keep-alive comment
// when no event is flowing. Proxies tend to cut idle connections around
// the minute mark, so the default stays well under it.
const DefaultPingInterval = 15 * time.Second

// ErrStreamingUnsupported is returned by Upgrade when the response
// writer cannot flush, which makes it unusable for long-lived streams.
var ErrStreamingUnsupported = errors.New("stream: response writer does not support flushing")

// Stream is one live event-stream response. It owns the response
// writer for the rest of the request: frames go out through Send, Ping,
// Retry or Serve and are flushed immediately.
//
// Methods on Stream are safe for concurrent use.
type Stream struct {
	mu      sync.Mutex
	flusher http.Flusher
	rc      *http.ResponseController
	enc     *encoder.Encoder

	log          zerolog.Logger
	sep          string
	pingInterval time.Duration
	sendTimeout  time.Duration
	retry        time.Duration
	headers      map[string]string
}

// Upgrade prepares w for event streaming. It verifies the writer can
// flush, sets the stream headers, clears any server write deadline so
// WriteTimeout cannot kill the connection mid-stream, writes the
// response head and emits the retry hint if one was configured.
//
// After Upgrade the caller must not touch w except through the
// returned Stream.
func Upgrade(w http.ResponseWriter, r *http.Request, opts ...Option) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	s := &Stream{
		flusher:      flusher,
		rc:           http.NewResponseController(w),
		log:          zerolog.Nop(),
		pingInterval: DefaultPingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.enc = encoder.New(w, encoder.WithSeparator(s.sep))

	h := w.Header()
	h.Set("Content-Type", ContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	for name, value := range s.headers {
		h.Set(name, value)
	}

	// The stream outlives any WriteTimeout; pings and the send timeout
	// take over the liveness job. Not every writer supports deadlines,
	// the stream still works without them.
	if err := s.rc.SetWriteDeadline(time.Time{}); err != nil {
		s.log.Debug().Err(err).Msg("write deadline not cleared")
	}

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.log.Debug().Str("remote_addr", r.RemoteAddr).Msg("stream opened")

	if s.retry > 0 {
		if err := s.Retry(s.retry); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Send coerces v into a frame, writes it and flushes. It accepts
// everything event.Marshal accepts.
func (s *Stream) Send(v any) error {
	return s.write(func() error {
		_, err := s.enc.Write(v)
		return err
	})
}

// Ping emits a comment frame. Clients ignore it; intermediaries see
// traffic and keep the connection open.
func (s *Stream) Ping() error {
	return s.write(func() error {
		_, err := s.enc.WriteComment("ping")
		return err
	})
}

// Retry emits a reconnection delay hint on a frame of its own.
func (s *Stream) Retry(d time.Duration) error {
	return s.write(func() error {
		_, err := s.enc.WriteRetry(int(d.Milliseconds()))
		return err
	})
}

func (s *Stream) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	armed := false
	if s.sendTimeout > 0 {
		// Deadline support depends on the underlying writer; without
		// it the write runs unbounded.
		armed = s.rc.SetWriteDeadline(time.Now().Add(s.sendTimeout)) == nil
	}
	err := fn()
	if armed {
		// An idle stream must not time out between writes.
		_ = s.rc.SetWriteDeadline(time.Time{})
	}
	if err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Serve streams values from events until ctx is done or events closes,
// emitting keep-alive pings in between. Context cancellation is the
// normal end of a stream, the client went away, and returns nil; a
// write failure returns the underlying error.
func (s *Stream) Serve(ctx context.Context, events <-chan any) error {
	var ping <-chan time.Time
	if s.pingInterval > 0 {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("stream closed by client")
			return nil
		case v, ok := <-events:
			if !ok {
				s.log.Debug().Msg("event channel closed")
				return nil
			}
			if err := s.Send(v); err != nil {
				s.log.Debug().Err(err).Msg("send failed")
				return err
			}
		case <-ping:
			if err := s.Ping(); err != nil {
				s.log.Debug().Err(err).Msg("ping failed")
				return err
			}
		}
	}
}
