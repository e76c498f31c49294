// Package realtime fans domain events out to connected WebSocket clients and
// to optional sinks such as a Kafka topic.
package realtime

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultBufferSize = 32

// Sink receives every published event. Implementations must not block.
type Sink interface {
	Forward(event string, frame []byte)
	Close() error
}

type Subscription struct {
	ID string
	C  <-chan []byte

	ch      chan []byte
	dropped atomic.Int64
}

// Dropped reports how many frames this subscriber missed.
func (s *Subscription) Dropped() int64 { return s.dropped.Load() }

type Hub struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	sinks      []Sink
	bufferSize int
	closed     bool
	log        *logrus.Logger
}

var _ domain.Publisher = (*Hub)(nil)

func NewHub(bufferSize int, logger *logrus.Logger, sinks ...Sink) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subs:       make(map[*Subscription]struct{}),
		sinks:      sinks,
		bufferSize: bufferSize,
		log:        logger,
	}
}

// Encode builds the wire frame {"event": ..., "data": ...}.
func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(domain.Event{Name: event, Data: data})
}

func (h *Hub) Subscribe() *Subscription {
	ch := make(chan []byte, h.bufferSize)
	sub := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	h.log.Debugf("Hub: subscriber %s joined (%d connected)", sub.ID, len(h.subs))
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
	h.log.Debugf("Hub: subscriber %s left (%d connected, %d frames dropped)", sub.ID, len(h.subs), sub.dropped.Load())
}

// Publish delivers at most once to each current subscriber. A subscriber
// whose buffer is full misses the event.
func (h *Hub) Publish(event string, data any) {
	frame, err := Encode(event, data)
	if err != nil {
		h.log.Errorf("Hub: could not encode %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	delivered := 0
	for sub := range h.subs {
		select {
		case sub.ch <- frame:
			delivered++
		default:
			sub.dropped.Add(1)
			h.log.Warnf("Hub: dropping %s for slow subscriber %s", event, sub.ID)
		}
	}
	sinks := h.sinks
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Forward(event, frame)
	}
	h.log.Debugf("Hub: %s delivered to %d subscribers", event, delivered)
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and closes the sinks.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
	sinks := h.sinks
	h.mu.Unlock()

	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			h.log.Warnf("Hub: closing sink: %v", err)
		}
	}
}
