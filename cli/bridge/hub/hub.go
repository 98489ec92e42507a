package hub

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/metrics"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/telemetry"
)

// Subscriber receives published snapshots on C in publish order until its
// queue overflows or the hub shuts down, after which Done is closed. C is
// never closed, so a drained receiver must also select on Done.
type Subscriber struct {
	id   uint64
	C    <-chan *telemetry.Snapshot
	ch   chan *telemetry.Snapshot
	done chan struct{}
	once sync.Once
}

// Done is closed when the hub will not deliver to this subscriber again.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// Hub fans the snapshot stream out to subscribers. Publishing never does
// network I/O and never blocks on a slow subscriber: a full queue gets the
// subscriber dropped instead.
type Hub struct {
	mu        sync.Mutex
	subs      map[uint64]*Subscriber
	nextID    uint64
	latest    *telemetry.Snapshot
	queueSize int
	closed    bool
	m         *metrics.Metrics
}

func New(queueSize int, m *metrics.Metrics) *Hub {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Hub{
		subs:      make(map[uint64]*Subscriber),
		queueSize: queueSize,
		m:         m,
	}
}

// Subscribe registers a new subscriber. The latest published snapshot, if
// any, is already queued on C so a new client never starts blank.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscriber{
		id:   h.nextID,
		ch:   make(chan *telemetry.Snapshot, h.queueSize),
		done: make(chan struct{}),
	}
	sub.C = sub.ch

	if h.closed {
		sub.close()
		return sub
	}

	h.subs[sub.id] = sub
	if h.latest != nil {
		sub.ch <- h.latest
	}
	h.m.Subscribers.Inc()
	return sub
}

// Unsubscribe removes sub from delivery. It is idempotent and safe to call
// concurrently with Publish.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	sub.close()
	h.m.Subscribers.Dec()
}

// Publish records s as the latest snapshot and enqueues it to every
// subscriber. A subscriber whose queue is full is dropped without
// affecting the others.
func (h *Hub) Publish(s *telemetry.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.latest = s

	for id, sub := range h.subs {
		select {
		case sub.ch <- s:
		default:
			delete(h.subs, id)
			sub.close()
			h.m.Subscribers.Dec()
			h.m.SubscriberDrops.Inc()
			log.WithField("subscriber", id).Warn("Subscriber queue overflowed, dropping it")
		}
	}
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops every subscriber and rejects future ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.close()
		h.m.Subscribers.Dec()
	}
}
