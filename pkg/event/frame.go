package event

import (
	"bytes"
	"strconv"
)

// Field tags of the text/event-stream format.
const (
	commentTag = ": "
	idTag      = "id: "
	eventTag   = "event: "
	dataTag    = "data: "
	retryTag   = "retry: "
)

// frame is the wire-level view of one event, every field already
// resolved to bytes by the owning representation. Event and BytesEvent
// both delegate here, so the serialization algorithm exists exactly
// once and the representations can only differ in how they produce
// field bytes, never in frame shape.
type frame struct {
	comment []byte
	id      []byte
	name    []byte
	data    []byte
	retry   int
	sep     []byte

	hasComment bool
	hasID      bool
	hasName    bool
	hasData    bool
	hasRetry   bool
}

// encode serializes the frame: comment lines, id, event, data lines,
// retry, then the blank line that terminates every event. The
// terminator is unconditional, so a frame with no fields set is exactly
// one separator.
func (f *frame) encode() []byte {
	buf := new(bytes.Buffer)

	if f.hasComment {
		for _, line := range splitLines(f.comment) {
			buf.WriteString(commentTag)
			buf.Write(line)
			buf.Write(f.sep)
		}
	}
	if f.hasID {
		buf.WriteString(idTag)
		buf.Write(stripNewlines(f.id))
		buf.Write(f.sep)
	}
	if f.hasName {
		buf.WriteString(eventTag)
		buf.Write(stripNewlines(f.name))
		buf.Write(f.sep)
	}
	if f.hasData {
		for _, line := range splitLines(f.data) {
			buf.WriteString(dataTag)
			buf.Write(line)
			buf.Write(f.sep)
		}
	}
	if f.hasRetry {
		buf.WriteString(retryTag)
		buf.WriteString(strconv.Itoa(f.retry))
		buf.Write(f.sep)
	}

	buf.Write(f.sep)
	return buf.Bytes()
}
