package stream

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Stream during Upgrade.
type Option func(*Stream)

// WithPingInterval sets how often Serve emits keep-alive comments.
// Zero or negative disables them.
func WithPingInterval(d time.Duration) Option {
	return func(s *Stream) { s.pingInterval = d }
}

// WithSendTimeout bounds every frame write. A client that stops
// reading makes the write fail instead of blocking the producer
// forever. Requires a response writer with deadline support.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Stream) { s.sendTimeout = d }
}

// WithSeparator sets the line separator injected into loose values
// sent through the stream. Events carrying their own separator keep it.
func WithSeparator(sep string) Option {
	return func(s *Stream) { s.sep = sep }
}

// WithRetry makes Upgrade open the stream with a retry hint, so
// clients reconnect after d instead of their default.
func WithRetry(d time.Duration) Option {
	return func(s *Stream) { s.retry = d }
}

// WithLogger attaches a logger. Streams log at debug level only.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Stream) { s.log = log }
}

// WithHeader sets an extra response header before streaming starts,
// for CORS and the like. The event-stream headers are always set.
func WithHeader(name, value string) Option {
	return func(s *Stream) {
		if s.headers == nil {
			s.headers = map[string]string{}
		}
		s.headers[name] = value
	}
}
