package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rfc/ssestream/internal/testutils"
	"github.com/go-rfc/ssestream/pkg/event"
	"github.com/stretchr/testify/assert"
)

func TestUpgrade_SetsStreamHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := Upgrade(rec, newRequest())
	if assert.NoError(t, err) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))
		assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
		assert.True(t, rec.Flushed)
	}
}

func TestUpgrade_ExtraHeader(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := Upgrade(rec, newRequest(), WithHeader("Access-Control-Allow-Origin", "*"))
	if assert.NoError(t, err) {
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	}
}

func TestUpgrade_RequiresFlusher(t *testing.T) {
	_, err := Upgrade(&noFlushWriter{header: http.Header{}}, newRequest())
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestUpgrade_RetryHint(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := Upgrade(rec, newRequest(), WithRetry(2*time.Second))
	if assert.NoError(t, err) {
		assert.Equal(t, "retry: 2000\r\n\r\n", rec.Body.String())
	}
}

func TestStream_SendEvent(t *testing.T) {
	sut, rec := getStreamAndRecorder(t)

	err := sut.Send(&event.Event{Data: "hello"})
	if assert.NoError(t, err) {
		assert.Equal(t, "data: hello\r\n\r\n", rec.Body.String())
	}
}

func TestStream_SendLooseValue(t *testing.T) {
	sut, rec := getStreamAndRecorder(t)

	err := sut.Send("hello")
	if assert.NoError(t, err) {
		assert.Equal(t, "data: hello\r\n\r\n", rec.Body.String())
	}
}

func TestStream_SendBadValue(t *testing.T) {
	sut, rec := getStreamAndRecorder(t)

	err := sut.Send(map[string]any{"retry": "soon"})
	assert.ErrorIs(t, err, event.ErrRetryNotInteger)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestStream_SendSeparatorOption(t *testing.T) {
	rec := httptest.NewRecorder()
	sut, err := Upgrade(rec, newRequest(), WithSeparator("\n"))
	assert.NoError(t, err)

	err = sut.Send("hello")
	if assert.NoError(t, err) {
		assert.Equal(t, "data: hello\n\n", rec.Body.String())
	}
}

func TestStream_Ping(t *testing.T) {
	sut, rec := getStreamAndRecorder(t)

	err := sut.Ping()
	if assert.NoError(t, err) {
		assert.Equal(t, ": ping\r\n\r\n", rec.Body.String())
	}
}

func TestStream_Retry(t *testing.T) {
	sut, rec := getStreamAndRecorder(t)

	err := sut.Retry(500 * time.Millisecond)
	if assert.NoError(t, err) {
		assert.Equal(t, "retry: 500\r\n\r\n", rec.Body.String())
	}
}

func TestServe_DrainsChannelUntilClosed(t *testing.T) {
	sut, rec := getStreamAndRecorder(t)
	ev := testutils.NewTextEvent("1", "tick", 8)

	events := make(chan any, 2)
	events <- ev
	events <- "plain value"
	close(events)

	err := sut.Serve(context.Background(), events)
	if assert.NoError(t, err) {
		expected := "id: 1\r\nevent: tick\r\ndata: " + ev.Data + "\r\n\r\n" +
			"data: plain value\r\n\r\n"
		assert.Equal(t, expected, rec.Body.String())
	}
}

func TestServe_ClientGone(t *testing.T) {
	sut, rec := getStreamAndRecorder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sut.Serve(ctx, make(chan any))
	assert.NoError(t, err)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestServe_EmitsPings(t *testing.T) {
	rec := httptest.NewRecorder()
	sut, err := Upgrade(rec, newRequest(), WithPingInterval(5*time.Millisecond))
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()

	err = sut.Serve(ctx, make(chan any))
	if assert.NoError(t, err) {
		assert.Contains(t, rec.Body.String(), ": ping\r\n\r\n")
	}
}

func TestServe_StopsOnWriteError(t *testing.T) {
	w := &failingWriter{header: http.Header{}}
	sut, err := Upgrade(w, newRequest())
	assert.NoError(t, err)

	events := make(chan any, 1)
	events <- "hello"

	err = sut.Serve(context.Background(), events)
	assert.Error(t, err)
}

func getStreamAndRecorder(t *testing.T) (*Stream, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	sut, err := Upgrade(rec, newRequest())
	assert.NoError(t, err)
	rec.Body.Reset()
	return sut, rec
}

func newRequest() *http.Request {
	return httptest.NewRequest(http.MethodGet, "http://localhost/events", nil)
}

type noFlushWriter struct {
	header http.Header
}

func (w *noFlushWriter) Header() http.Header         { return w.header }
func (w *noFlushWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *noFlushWriter) WriteHeader(statusCode int)  {}

type failingWriter struct {
	header http.Header
}

func (w *failingWriter) Header() http.Header         { return w.header }
func (w *failingWriter) Write(b []byte) (int, error) { return 0, assert.AnError }
func (w *failingWriter) WriteHeader(statusCode int)  {}
func (w *failingWriter) Flush()                      {}
