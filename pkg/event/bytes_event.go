package event

// DefaultBytesSeparator terminates the lines of a BytesEvent unless the
// event overrides it. The byte representation has always defaulted to a
// bare linefeed where the text one defaults to CRLF; both are valid on
// the wire and existing streams depend on the shape they were built
// with, so the difference is kept.
const DefaultBytesSeparator = "\n"

// BytesEvent is the byte representation of one SSE event. Every field
// is a raw byte sequence written out without any text encoding or
// decoding, which suits callers that already hold wire-ready bytes.
//
// A nil field is unset. A non-nil empty field is set: unlike the text
// representation, BytesEvent can express an explicitly empty payload,
// which encodes as a bare "data: " line.
type BytesEvent struct {
	Data    []byte
	Name    []byte
	ID      []byte
	Retry   int
	Comment []byte
	Sep     []byte
}

// Encode serializes the event into a self-terminated wire frame. Field
// bytes pass through untouched; only tags and separators are added
// around them.
func (e *BytesEvent) Encode() []byte {
	f := frame{
		comment:    e.Comment,
		id:         e.ID,
		name:       e.Name,
		data:       e.Data,
		retry:      e.Retry,
		sep:        e.separator(),
		hasComment: e.Comment != nil,
		hasID:      e.ID != nil,
		hasName:    e.Name != nil,
		hasData:    e.Data != nil,
		hasRetry:   e.Retry != 0,
	}
	return f.encode()
}

func (e *BytesEvent) separator() []byte {
	if e.Sep != nil {
		return e.Sep
	}
	return []byte(DefaultBytesSeparator)
}
