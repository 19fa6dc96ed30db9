package encoder

import (
	"bytes"
	"testing"

	"github.com/go-rfc/ssestream/pkg/event"
	"github.com/stretchr/testify/assert"
)

var (
	eventName      = &event.Event{Name: "first"}
	eventNameAndID = &event.Event{Name: "first", ID: "1"}
	eventFull      = &event.Event{Name: "first", ID: "1", Data: "some event data"}
)

func TestEncoderName(t *testing.T) {
	e, out := getEncoderAndOut()
	e.WriteEvent(eventName)
	assert.Equal(t, "event: first\r\n\r\n", out.String())
}

func TestEncoderNameAndID(t *testing.T) {
	e, out := getEncoderAndOut()
	e.WriteEvent(eventNameAndID)
	assert.Equal(t, "id: 1\r\nevent: first\r\n\r\n", out.String())
}

func TestEncoderFullEvent(t *testing.T) {
	e, out := getEncoderAndOut()
	e.WriteEvent(eventFull)
	assert.Equal(t, "id: 1\r\nevent: first\r\ndata: some event data\r\n\r\n", out.String())
}

func TestEncoderWriteBytesEvent(t *testing.T) {
	e, out := getEncoderAndOut()
	e.WriteBytesEvent(&event.BytesEvent{Comment: []byte("keep-alive")})
	assert.Equal(t, ": keep-alive\n\n", out.String())
}

func TestEncoderWriteComment(t *testing.T) {
	e, out := getEncoderAndOut()
	e.WriteComment("ping")
	assert.Equal(t, ": ping\r\n\r\n", out.String())
}

func TestEncoderWriteRetry(t *testing.T) {
	e, out := getEncoderAndOut()
	e.WriteRetry(123)
	assert.Equal(t, "retry: 123\r\n\r\n", out.String())
}

func TestEncoderWriteLooseValue(t *testing.T) {
	e, out := getEncoderAndOut()

	n, err := e.Write("hello")
	if assert.NoError(t, err) {
		assert.Equal(t, "data: hello\r\n\r\n", out.String())
		assert.Equal(t, out.Len(), n)
	}
}

func TestEncoderWriteMap(t *testing.T) {
	e, out := getEncoderAndOut()

	_, err := e.Write(map[string]any{"data": "hello", "id": "1"})
	if assert.NoError(t, err) {
		assert.Equal(t, "id: 1\r\ndata: hello\r\n\r\n", out.String())
	}
}

func TestEncoderWriteBadMap(t *testing.T) {
	e, out := getEncoderAndOut()

	n, err := e.Write(map[string]any{"retry": "not a number"})
	assert.ErrorIs(t, err, event.ErrRetryNotInteger)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, out.Len())
}

func TestEncoderSeparatorOption(t *testing.T) {
	out := new(bytes.Buffer)
	e := New(out, WithSeparator("\n"))

	e.Write("hello")
	assert.Equal(t, "data: hello\n\n", out.String())

	out.Reset()
	e.WriteComment("ping")
	assert.Equal(t, ": ping\n\n", out.String())

	out.Reset()
	e.WriteRetry(250)
	assert.Equal(t, "retry: 250\n\n", out.String())
}

func TestEncoderSeparatorOptionDoesNotOverrideEvent(t *testing.T) {
	out := new(bytes.Buffer)
	e := New(out, WithSeparator("\n"))

	e.Write(&event.Event{Data: "hello", Sep: "\r\n"})
	assert.Equal(t, "data: hello\r\n\r\n", out.String())
}

func getEncoderAndOut() (*Encoder, *bytes.Buffer) {
	out := new(bytes.Buffer)
	e := New(out)
	return e, out
}
