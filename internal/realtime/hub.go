// Package realtime рассылка изменений таблиц подписчикам и SSE-поток.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

type ChangeType string

const (
	Insert ChangeType = "insert"
	Update ChangeType = "update"
	Delete ChangeType = "delete"
)

// Change событие изменения строки таблицы. OrganizationID и Users определяют,
// каким подписчикам оно видно, Users в поток не попадает.
type Change struct {
	Table          string     `json:"table"`
	Type           ChangeType `json:"type"`
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId,omitempty"`
	Users          []string   `json:"-"`
	At             time.Time  `json:"at"`
}

var eventsDropped = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "donaplus_realtime_events_dropped_total",
		Help: "Realtime change events not delivered",
	},
	[]string{"table", "reason"},
)

const subscriberBuffer = 16

type subscription struct {
	ch   chan Change
	once sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

type Hub struct {
	mu      sync.RWMutex
	subs    map[string]map[*subscription]struct{}
	closed  bool
	limiter *rate.Limiter

	throttled atomic.Int64
	heartbeat time.Duration
}

// NewHub eventsPerSecond <= 0 отключает ограничение
func NewHub(eventsPerSecond float64) *Hub {
	limit, burst := rate.Inf, 0
	if eventsPerSecond > 0 {
		limit = rate.Limit(eventsPerSecond)
		burst = int(eventsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Hub{
		subs:      make(map[string]map[*subscription]struct{}),
		limiter:   rate.NewLimiter(limit, burst),
		heartbeat: 25 * time.Second,
	}
}

// Subscribe канал изменений таблицы и функция отписки
func (h *Hub) Subscribe(table string) (<-chan Change, func()) {
	sub := &subscription{ch: make(chan Change, subscriberBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	if h.subs[table] == nil {
		h.subs[table] = make(map[*subscription]struct{})
	}
	h.subs[table][sub] = struct{}{}
	h.mu.Unlock()

	return sub.ch, func() {
		h.mu.Lock()
		if subs, ok := h.subs[table]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subs, table)
			}
		}
		h.mu.Unlock()
		sub.close()
	}
}

// Publish отправляет событие, false если событие отброшено ограничителем или хаб закрыт
func (h *Hub) Publish(_ context.Context, c Change) bool {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	if !h.limiter.Allow() {
		h.throttled.Add(1)
		eventsDropped.WithLabelValues(c.Table, "throttled").Inc()
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return false
	}
	for sub := range h.subs[c.Table] {
		select {
		case sub.ch <- c:
		default:
			eventsDropped.WithLabelValues(c.Table, "slow_subscriber").Inc()
		}
	}
	return true
}

// Throttled число событий, отброшенных ограничителем
func (h *Hub) Throttled() int64 {
	return h.throttled.Load()
}

// Subscribers число активных подписок на таблицу
func (h *Hub) Subscribers(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

// Close закрывает все подписки, последующие Publish игнорируются
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for table, subs := range h.subs {
		for sub := range subs {
			sub.close()
		}
		delete(h.subs, table)
	}
}

// ServeSSE поток изменений одной таблицы, allow == nil пропускает все события
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request, table string, allow func(Change) bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.Subscribe(table)
	defer cancel()

	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case c, ok := <-ch:
			if !ok {
				return
			}
			if allow != nil && !allow(c) {
				continue
			}
			data, _ := json.Marshal(c)
			_, _ = w.Write([]byte("event: " + string(c.Type) + "\ndata: "))
			_, _ = w.Write(data)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
