// Package notify короткоживущие уведомления пользователю (аналог toast).
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"donaplus/internal/pkg/ulid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Notification struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier канал уведомлений, реализации должны быть безопасны для конкурентного вызова
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc адаптер функции к Notifier
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

func build(kind Kind, message string) Notification {
	now := time.Now()
	return Notification{ID: ulid.At(now), Kind: kind, Message: message, At: now}
}

func Success(ctx context.Context, to Notifier, message string) {
	if to != nil {
		to.Notify(ctx, build(KindSuccess, message))
	}
}

func Error(ctx context.Context, to Notifier, message string) {
	if to != nil {
		to.Notify(ctx, build(KindError, message))
	}
}

func Info(ctx context.Context, to Notifier, message string) {
	if to != nil {
		to.Notify(ctx, build(KindInfo, message))
	}
}

// Recorder собирает уведомления одного запроса
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All копия накопленных уведомлений
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Drain возвращает накопленное и очищает буфер
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Count число уведомлений указанного вида
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// LogNotifier дублирует уведомления в лог
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "notification", "id", n.ID, "kind", n.Kind, "message", n.Message)
}

// Multi рассылает уведомление всем получателям
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, to := range m {
		if to != nil {
			to.Notify(ctx, n)
		}
	}
}
