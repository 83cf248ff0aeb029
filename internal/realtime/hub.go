package realtime

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/metrics"
)

const (
	EventNewMessage = "new_message"
	EventPong       = "pong"
)

const DefaultQueueSize = 64

// Event is what observers receive. Timestamp is only set on pong.
type Event struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func NewMessageEvent(data any) Event {
	return Event{Type: EventNewMessage, Data: data}
}

func PongEvent(now time.Time) Event {
	return Event{Type: EventPong, Timestamp: now.UTC().Format(time.RFC3339Nano)}
}

// Observer receives events from the hub. Send may block; the hub calls it
// from a goroutine dedicated to that observer.
type Observer interface {
	Send(ev Event) error
	Close() error
}

type subscription struct {
	queue chan Event
	done  chan struct{}
}

// Hub fans events out to every connected observer. Delivery is best effort:
// an observer whose queue is full, or whose Send fails, is disconnected.
// Events are not retained for observers that connect later.
type Hub struct {
	mu        sync.RWMutex
	subs      map[Observer]*subscription
	queueSize int
	log       zerolog.Logger
}

func NewHub(queueSize int, log zerolog.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		subs:      make(map[Observer]*subscription),
		queueSize: queueSize,
		log:       log,
	}
}

// Connect registers o. Connecting an already registered observer is a no-op.
func (h *Hub) Connect(o Observer) {
	h.mu.Lock()
	if _, ok := h.subs[o]; ok {
		h.mu.Unlock()
		return
	}
	sub := &subscription{
		queue: make(chan Event, h.queueSize),
		done:  make(chan struct{}),
	}
	h.subs[o] = sub
	n := len(h.subs)
	h.mu.Unlock()

	metrics.Observers.Inc()
	h.log.Debug().Int("observers", n).Msg("observer connected")
	go h.pump(o, sub)
}

// Disconnect removes o and closes it. Unknown observers are ignored.
func (h *Hub) Disconnect(o Observer) {
	h.mu.Lock()
	sub, ok := h.subs[o]
	if ok {
		delete(h.subs, o)
		close(sub.done)
	}
	n := len(h.subs)
	h.mu.Unlock()
	if !ok {
		return
	}

	metrics.Observers.Dec()
	_ = o.Close()
	h.log.Debug().Int("observers", n).Msg("observer disconnected")
}

// Broadcast enqueues ev for every observer without blocking and returns how many accepted it.
func (h *Hub) Broadcast(ev Event) int {
	var full []Observer
	delivered := 0

	h.mu.RLock()
	for o, sub := range h.subs {
		select {
		case sub.queue <- ev:
			delivered++
		default:
			full = append(full, o)
		}
	}
	h.mu.RUnlock()

	for _, o := range full {
		metrics.ObserversDropped.WithLabelValues("queue_full").Inc()
		h.log.Warn().Str("event", ev.Type).Msg("observer queue full, disconnecting")
		h.Disconnect(o)
	}
	return delivered
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every observer.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]Observer, 0, len(h.subs))
	for o := range h.subs {
		all = append(all, o)
	}
	h.mu.RUnlock()
	for _, o := range all {
		h.Disconnect(o)
	}
}

func (h *Hub) pump(o Observer, sub *subscription) {
	for {
		select {
		case <-sub.done:
			return
		case ev := <-sub.queue:
			select {
			case <-sub.done:
				return
			default:
			}
			if err := o.Send(ev); err != nil {
				metrics.ObserversDropped.WithLabelValues("send_failed").Inc()
				h.log.Warn().Err(err).Str("event", ev.Type).Msg("delivery failed, disconnecting observer")
				h.Disconnect(o)
				return
			}
		}
	}
}
