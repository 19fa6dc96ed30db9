// Package broker fans events out to topic subscribers. It routes
// anything event-shaped without encoding it; pair a Subscription with
// stream.Serve to put the events on the wire.
package broker

import (
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultBufferSize is the per-subscription channel capacity. A full
// channel means the subscriber stopped draining; events published to it
// are dropped instead of blocking every other subscriber.
const DefaultBufferSize = 64

// Broker routes published values to the subscribers of their topic.
// All methods are safe for concurrent use.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[string]*Subscription
	closed bool

	log        zerolog.Logger
	bufferSize int
}

// Subscription is one subscriber's feed on a topic.
type Subscription struct {
	id    string
	topic string
	ch    chan any
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string { return s.topic }

// Events returns the delivery channel. It is closed when the
// subscription is removed or the broker shuts down.
func (s *Subscription) Events() <-chan any { return s.ch }

// Option configures a Broker.
type Option func(*Broker)

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Broker) { b.log = log }
}

// WithBufferSize sets the per-subscription channel capacity.
func WithBufferSize(n int) Option {
	return func(b *Broker) { b.bufferSize = n }
}

// New returns an empty Broker.
func New(opts ...Option) *Broker {
	b := &Broker{
		topics:     make(map[string]map[string]*Subscription),
		log:        zerolog.Nop(),
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscriber on topic. On a closed broker the
// returned subscription is already closed, so readers drain it the same
// way in either case.
func (b *Broker) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		id:    uuid.NewString(),
		topic: topic,
		ch:    make(chan any, b.bufferSize),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.ch)
		return sub
	}

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[string]*Subscription)
		b.topics[topic] = subs
	}
	subs[sub.id] = sub

	b.log.Debug().
		Str("topic", topic).
		Str("subscription", sub.id).
		Int("topic_subscribers", len(subs)).
		Msg("subscribed")
	return sub
}

// Unsubscribe removes sub and closes its channel. Unsubscribing twice,
// or after Close, is a no-op.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub.id]; !ok {
		return
	}

	delete(subs, sub.id)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
	close(sub.ch)

	b.log.Debug().
		Str("topic", sub.topic).
		Str("subscription", sub.id).
		Msg("unsubscribed")
}

// Publish delivers v to every subscriber of exactly topic and reports
// how many were reached.
func (b *Broker) Publish(topic string, v any) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}
	return b.deliver(b.topics[topic], v)
}

// Broadcast delivers v to the subscribers of every topic matching the
// glob pattern, "jobs/*" for instance, and reports how many were
// reached. A malformed pattern reaches no one.
func (b *Broker) Broadcast(pattern string, v any) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0
	}

	delivered := 0
	for topic, subs := range b.topics {
		matched, err := filepath.Match(pattern, topic)
		if err != nil {
			b.log.Error().Err(err).Str("pattern", pattern).Msg("bad broadcast pattern")
			return 0
		}
		if matched {
			delivered += b.deliver(subs, v)
		}
	}
	return delivered
}

// deliver runs with the lock held.
func (b *Broker) deliver(subs map[string]*Subscription, v any) int {
	delivered := 0
	for _, sub := range subs {
		select {
		case sub.ch <- v:
			delivered++
		default:
			b.log.Warn().
				Str("topic", sub.topic).
				Str("subscription", sub.id).
				Msg("subscriber lagging, event dropped")
		}
	}
	return delivered
}

// SubscriberCount returns the number of subscribers on topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Topics returns every topic with at least one subscriber.
func (b *Broker) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	topics := make([]string, 0, len(b.topics))
	for topic := range b.topics {
		topics = append(topics, topic)
	}
	return topics
}

// Close shuts the broker down: every subscription channel is closed
// and later publishes reach no one. Closing twice is a no-op.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for topic, subs := range b.topics {
		for _, sub := range subs {
			close(sub.ch)
		}
		delete(b.topics, topic)
	}

	b.log.Debug().Msg("broker closed")
}
