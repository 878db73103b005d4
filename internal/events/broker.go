// Package events fans server-side notifications out to connected streams.
package events

import (
	"sync"
	"time"
)

// Event names sent on the stream.
const (
	Connected = "connected"
	Heartbeat = "heartbeat"
	Snapshot  = "snapshot"
)

// Event is one message on the stream.
type Event struct {
	Name string
	Data any
}

// Stamp is the payload of connected and heartbeat events.
type Stamp struct {
	Timestamp int64 `json:"timestamp"`
}

// SnapshotNotice is the payload of a snapshot event.
type SnapshotNotice struct {
	FetchedAt int64 `json:"fetchedAt"`
	Projects  int   `json:"projects"`
	Tasks     int   `json:"tasks"`
}

// Now returns a Stamp for t in Unix milliseconds.
func Now(t time.Time) Stamp {
	return Stamp{Timestamp: t.UnixMilli()}
}

// Broker delivers published events to every subscriber. Slow subscribers
// lose events rather than block publishers.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
}

// NewBroker returns a Broker whose subscriber channels hold buffer events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broker{subs: map[chan Event]struct{}{}, buffer: buffer}
}

// Subscribe registers a subscriber. The returned func unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish sends e to all subscribers without blocking.
func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
