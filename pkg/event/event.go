// Package event implements the Server-Sent Events wire format. It turns
// a structured description of one event into the exact byte frame the
// text/event-stream protocol requires: tagged field lines terminated by
// a blank line.
//
// Two representations exist side by side. Event carries character
// strings and encodes them as UTF-8; BytesEvent carries raw bytes and
// writes them out untouched. Both produce frames through the same
// serialization algorithm, so they agree on field order and line
// handling and differ only in payload treatment and default separator.
//
// Marshal accepts looser input, pre-encoded frames, either event form,
// field mappings or plain values, and is the entry point for layers
// that stream caller-provided values.
package event

import "fmt"

// DefaultSeparator terminates the lines of a text Event unless the
// event overrides it.
const DefaultSeparator = "\r\n"

// Event is the text representation of one SSE event. The zero value of
// each field means the field is unset and its line is not emitted; an
// Event with nothing set still encodes to a valid frame of exactly one
// separator.
type Event struct {
	// Data is the message payload. A payload containing newlines is
	// emitted as one data: line per payload line, which is how the
	// protocol transports multi-line text.
	Data string

	// Name is the event type, emitted on the event: line. Newlines are
	// deleted from it rather than split: the name is a single token.
	Name string

	// ID is the event identifier clients echo in Last-Event-ID. Same
	// single-token rule as Name.
	ID string

	// Retry is the reconnection delay hint in milliseconds. Zero means
	// no hint.
	Retry int

	// Comment is emitted as comment lines before every other field,
	// one line per newline-separated chunk. Clients ignore comments,
	// which makes them the keep-alive vehicle.
	Comment string

	// Sep overrides the line separator for this event. Empty means
	// DefaultSeparator. Overrides are not validated.
	Sep string
}

// Option configures an Event built by New.
type Option func(*Event)

// WithName sets the event type name.
func WithName(name string) Option {
	return func(e *Event) { e.Name = name }
}

// WithID sets the event identifier.
func WithID(id string) Option {
	return func(e *Event) { e.ID = id }
}

// WithRetry sets the reconnection delay hint, in milliseconds.
func WithRetry(delayInMillis int) Option {
	return func(e *Event) { e.Retry = delayInMillis }
}

// WithComment sets the comment text.
func WithComment(comment string) Option {
	return func(e *Event) { e.Comment = comment }
}

// WithSeparator overrides the line separator.
func WithSeparator(sep string) Option {
	return func(e *Event) { e.Sep = sep }
}

// New returns an Event carrying data as its payload. String payloads
// are used as is, byte slices are converted, nil means no payload and
// anything else is rendered with fmt.Sprint.
func New(data any, opts ...Option) *Event {
	e := &Event{Data: stringify(data)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode serializes the event into a self-terminated wire frame. The
// returned slice is freshly allocated and owned by the caller.
func (e *Event) Encode() []byte {
	f := frame{
		comment:    []byte(e.Comment),
		id:         []byte(e.ID),
		name:       []byte(e.Name),
		data:       []byte(e.Data),
		retry:      e.Retry,
		sep:        []byte(e.separator()),
		hasComment: e.Comment != "",
		hasID:      e.ID != "",
		hasName:    e.Name != "",
		hasData:    e.Data != "",
		hasRetry:   e.Retry != 0,
	}
	return f.encode()
}

// String returns the frame as a string, mainly for logs and tests.
func (e *Event) String() string {
	return string(e.Encode())
}

func (e *Event) separator() string {
	if e.Sep != "" {
		return e.Sep
	}
	return DefaultSeparator
}

func stringify(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
