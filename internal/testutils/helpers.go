package testutils

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-rfc/ssestream/pkg/event"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewTextEvent builds a text event with a random payload of dataSize
// bytes.
func NewTextEvent(id, name string, dataSize int) *event.Event {
	return &event.Event{ID: id, Name: name, Data: RandString(dataSize)}
}

// NewBytesEvent builds a byte event with a payload of dataSize bytes.
func NewBytesEvent(id, name string, dataSize int) *event.BytesEvent {
	data := make([]byte, dataSize)
	for i := range data {
		data[i] = 'e'
	}
	return &event.BytesEvent{ID: []byte(id), Name: []byte(name), Data: data}
}

// RandString returns n random letters.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// ExpectCondition polls condition until it holds, giving up after a few
// hundred milliseconds.
func ExpectCondition(t *testing.T, condition func() bool) {
	n, max, sleep := 0, 10, 25
	for n < max {
		n++
		if condition() {
			return
		}
		time.Sleep(time.Duration(sleep) * time.Millisecond)
	}

	t.Errorf("expected condition never happened after %d polls", n)
}
