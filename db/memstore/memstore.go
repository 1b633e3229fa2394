// Package memstore хранилище в памяти с той же семантикой, что и db.Storage.
// Используется фикстурным бэкендом (memory://) и в тестах.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"donaplus/db"
	"donaplus/models"

	"github.com/google/uuid"
)

var ErrClosed = errors.New("memstore: closed")

type row[T any] struct {
	v   T
	seq int64
}

// table строки одной сущности, seq сохраняет порядок вставки для равных created_at
type table[T any] struct {
	rows map[string]*row[T]
	seq  int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]*row[T]{}}
}

func (t *table[T]) insert(id string, v T) {
	t.seq++
	t.rows[id] = &row[T]{v: v, seq: t.seq}
}

func (t *table[T]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return r.v, true
}

// list фильтрует и сортирует по ключу времени, desc для "новые сначала"
func (t *table[T]) list(keep func(T) bool, key func(T) time.Time, desc bool, p models.Page) []T {
	rows := make([]*row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r.v) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ki, kj := key(rows[i].v), key(rows[j].v)
		if !ki.Equal(kj) {
			if desc {
				return ki.After(kj)
			}
			return ki.Before(kj)
		}
		if desc {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].seq < rows[j].seq
	})
	return paginate(rows, p)
}

func (t *table[T]) count(keep func(T) bool) int {
	n := 0
	for _, r := range t.rows {
		if keep(r.v) {
			n++
		}
	}
	return n
}

func paginate[T any](rows []*row[T], p models.Page) []T {
	if p.Offset > 0 {
		if p.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[p.Offset:]
		}
	}
	if p.Limit > 0 && p.Limit < len(rows) {
		rows = rows[:p.Limit]
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.v)
	}
	return out
}

type Store struct {
	mu     sync.RWMutex
	now    func() time.Time
	closed bool

	identities    *table[models.Identity]
	authSessions  *table[models.AuthSession]
	organizations *table[models.Organization]
	profiles      *table[models.Profile]
	categories    *table[models.Category]
	centers       *table[models.Center]
	donations     *table[models.Donation]
	deliveries    *table[models.Delivery]
	conversations *table[models.Conversation]
	messages      *table[models.Message]
}

type Option func(*Store)

// WithClock подменяет часы для created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		identities:    newTable[models.Identity](),
		authSessions:  newTable[models.AuthSession](),
		organizations: newTable[models.Organization](),
		profiles:      newTable[models.Profile](),
		categories:    newTable[models.Category](),
		centers:       newTable[models.Center](),
		donations:     newTable[models.Donation](),
		deliveries:    newTable[models.Delivery](),
		conversations: newTable[models.Conversation](),
		messages:      newTable[models.Message](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// applyFields применяет частичное обновление к строке через db-теги,
// колонки проверяются тем же списком, что и в postgres
func applyFields(tableName string, dst any, fields models.Fields) error {
	v := reflect.ValueOf(dst).Elem()
	for _, col := range fields.Columns() {
		if !db.Updatable(tableName, col) {
			return fmt.Errorf("%w: %s", db.ErrUnknownColumn, col)
		}
		f := models.Mapper.FieldByName(v, col)
		if !f.IsValid() {
			return fmt.Errorf("%w: %s", db.ErrUnknownColumn, col)
		}
		if err := assign(f, fields[col]); err != nil {
			return fmt.Errorf("column %s: %w", col, err)
		}
	}
	return nil
}

func assign(dst reflect.Value, val any) error {
	if val == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	src := reflect.ValueOf(val)
	if dst.Kind() == reflect.Ptr && src.Type() != dst.Type() {
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), val); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Kind() == dst.Kind() && src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	case isNumber(src.Kind()) && isNumber(dst.Kind()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", val, dst.Type())
	}
	return nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// contains регистронезависимый поиск подстроки хотя бы в одном значении
func contains(q string, values ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func eq(want, got string) bool {
	return want == "" || want == got
}

func eqPtr(want string, got *string) bool {
	if want == "" {
		return true
	}
	return got != nil && *got == want
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
