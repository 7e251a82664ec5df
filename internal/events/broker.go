// Package events fans out uploader state changes to UI subscribers over SSE
// and WebSocket.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 64

// Event is one published message. Data is a JSON document.
type Event struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// Broker delivers events to every subscriber without blocking publishers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
	dropped     atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int64]chan Event)}
}

// Subscribe returns an id and a buffered channel. Slow readers lose events.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish marshals v and sends it to every subscriber.
func (b *Broker) Publish(topic string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("event marshal failed", "topic", topic, "error", err)
		return
	}
	evt := Event{Topic: topic, Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped counts events discarded for slow subscribers.
func (b *Broker) Dropped() int64 {
	return b.dropped.Load()
}
