// Package resources коллекции сущностей поверх хранилища: загрузка с фильтром,
// CRUD с повторной загрузкой после каждой успешной записи.
package resources

import (
	"context"
	"errors"
	"sync"
	"time"

	"donaplus/db"
	"donaplus/internal/auth"
	"donaplus/internal/notify"
	"donaplus/internal/realtime"
	"donaplus/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donaplus_resource_loads_total",
		Help: "Resource list loads by result",
	}, []string{"resource", "result"})

	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "donaplus_resource_load_duration_seconds",
		Help:    "Duration of resource list queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donaplus_resource_mutations_total",
		Help: "Resource mutations by operation and result",
	}, []string{"resource", "op", "result"})
)

var (
	// ErrOrganizationRequired запись нельзя привязать ни к одной организации
	ErrOrganizationRequired = errors.New("organization is required")
	ErrFinalStatus          = errors.New("status is final")
)

// SessionScope источник прав текущего пользователя, обычно *auth.Session
type SessionScope interface {
	Scope() (models.Scope, bool)
}

type Publisher interface {
	Publish(ctx context.Context, c realtime.Change) bool
}

// Env зависимости, общие для всех коллекций одного запроса
type Env struct {
	Session   SessionScope
	Notifier  notify.Notifier
	Publisher Publisher
	Now       func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Env) scope() (models.Scope, bool) {
	if e.Session == nil {
		return models.Scope{}, false
	}
	return e.Session.Scope()
}

func (e Env) publish(ctx context.Context, c realtime.Change) {
	if e.Publisher == nil {
		return
	}
	c.At = e.now()
	e.Publisher.Publish(ctx, c)
}

// sessionGone ошибки отсутствующей или истекшей сессии не показываются пользователю
func sessionGone(err error) bool {
	return errors.Is(err, auth.ErrUnauthenticated)
}

// collection отфильтрованная копия строк, флаг загрузки и последняя ошибка.
// Каждый Load получает номер поколения, ответ устаревшего поколения отбрасывается.
type collection[T any, F comparable] struct {
	name    string
	env     Env
	list    func(ctx context.Context, f F) ([]T, error)
	counter func(ctx context.Context, f F) (int, error)
	scope   func(f F, s models.Scope) F

	// audience организация и пользователи, которым видно событие о строке
	audience func(ctx context.Context, row any) (string, []string)

	mu      sync.RWMutex
	filter  F
	items   []T
	loading bool
	err     error
	gen     uint64
}

func newCollection[T any, F comparable](name string, env Env, f F,
	list func(context.Context, F) ([]T, error), scope func(F, models.Scope) F,
) *collection[T, F] {
	return &collection[T, F]{name: name, env: env, list: list, scope: scope, audience: rowAudience, filter: f, items: []T{}}
}

func (c *collection[T, F]) counted(count func(context.Context, F) (int, error)) *collection[T, F] {
	c.counter = count
	return c
}

// Total число строк под текущим фильтром без учета страницы. Коллекция без
// счетчика отдает размер загруженного списка.
func (c *collection[T, F]) Total(ctx context.Context) (int, error) {
	c.mu.RLock()
	f, n := c.filter, len(c.items)
	c.mu.RUnlock()
	if c.counter == nil {
		return n, nil
	}
	sc, ok := c.env.scope()
	if !ok {
		return 0, nil
	}
	return c.counter(ctx, c.scope(f, sc))
}

// Load перечитывает коллекцию. Без сессии коллекция становится пустой без ошибки.
func (c *collection[T, F]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen, f := c.gen, c.filter
	c.loading = true
	c.mu.Unlock()

	sc, ok := c.env.scope()
	if !ok {
		c.finish(gen, []T{}, nil)
		loadsTotal.WithLabelValues(c.name, "anonymous").Inc()
		return nil
	}

	start := time.Now()
	items, err := c.list(ctx, c.scope(f, sc))
	loadDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	if err != nil {
		if !c.finish(gen, nil, err) {
			loadsTotal.WithLabelValues(c.name, "stale").Inc()
			return err
		}
		loadsTotal.WithLabelValues(c.name, "error").Inc()
		if !sessionGone(err) {
			notify.Error(ctx, c.env.Notifier, "Failed to load "+c.name+": "+err.Error())
		}
		return err
	}
	if items == nil {
		items = []T{}
	}
	if c.finish(gen, items, nil) {
		loadsTotal.WithLabelValues(c.name, "ok").Inc()
	} else {
		loadsTotal.WithLabelValues(c.name, "stale").Inc()
	}
	return nil
}

// finish применяет результат, если поколение все еще последнее.
// nil items оставляет прежнюю коллекцию (ошибка загрузки).
func (c *collection[T, F]) finish(gen uint64, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	if items != nil {
		c.items = items
	}
	c.err, c.loading = err, false
	return true
}

// SetFilter меняет фильтр и перечитывает коллекцию ровно один раз; тот же фильтр ничего не делает
func (c *collection[T, F]) SetFilter(ctx context.Context, f F) error {
	c.mu.Lock()
	if c.filter == f {
		c.mu.Unlock()
		return nil
	}
	c.filter = f
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *collection[T, F]) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *collection[T, F]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T, F]) Filter() F {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *collection[T, F]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *collection[T, F]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *collection[T, F]) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// mutation описание одной записи для уведомлений и realtime
type mutation struct {
	op      string // create, update, delete
	change  realtime.ChangeType
	success string
	failure string
}

var (
	opCreate = mutation{op: "create", change: realtime.Insert}
	opUpdate = mutation{op: "update", change: realtime.Update}
	opDelete = mutation{op: "delete", change: realtime.Delete}
)

func (m mutation) messages(success, failure string) mutation {
	m.success, m.failure = success, failure
	return m
}

// mutate выполняет запись: одно уведомление, событие realtime, повторная загрузка.
// fn возвращает результат и id затронутой строки.
func mutate[T any, F comparable, R any](ctx context.Context, c *collection[T, F], m mutation,
	fn func(ctx context.Context, sc models.Scope) (R, string, error),
) (R, error) {
	var zero R
	sc, ok := c.env.scope()
	if !ok {
		c.setErr(auth.ErrUnauthenticated)
		mutationsTotal.WithLabelValues(c.name, m.op, "anonymous").Inc()
		return zero, auth.ErrUnauthenticated
	}

	out, id, err := fn(ctx, sc)
	if err != nil {
		c.setErr(err)
		mutationsTotal.WithLabelValues(c.name, m.op, "error").Inc()
		if !sessionGone(err) {
			notify.Error(ctx, c.env.Notifier, m.failure+": "+err.Error())
		}
		return zero, err
	}

	mutationsTotal.WithLabelValues(c.name, m.op, "ok").Inc()
	notify.Success(ctx, c.env.Notifier, m.success)
	org, users := c.audience(ctx, out)
	c.env.publish(ctx, realtime.Change{Table: c.name, Type: m.change, ID: id, OrganizationID: org, Users: users})
	_ = c.Load(ctx)
	return out, nil
}

// get чтение одной строки с проверкой видимости; чужая строка выглядит как отсутствующая
func get[T any, F comparable](ctx context.Context, c *collection[T, F], id string,
	fetch func(context.Context, string) (*T, error), visible func(*T, models.Scope) bool,
) (*T, error) {
	sc, ok := c.env.scope()
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	row, err := fetch(ctx, id)
	if err == nil && !visible(row, sc) {
		err = db.ErrNotFound
	}
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) && !sessionGone(err) {
			notify.Error(ctx, c.env.Notifier, "Failed to load "+c.name+": "+err.Error())
		}
		return nil, err
	}
	return row, nil
}

// ownerScope поля фильтра, которыми ограничивается пользователь без организации
type ownerScope struct {
	org      *string
	donor    *string
	driver   *string
	benef    *string
	fallback *string
}

// apply правила: super_admin видит все, пользователь организации ограничен ею,
// остальные видят только свои строки по роли
func (o ownerScope) apply(s models.Scope) {
	switch {
	case s.Global():
		return
	case s.OrganizationID != "" && o.org != nil:
		*o.org = s.OrganizationID
		return
	}
	var target *string
	switch s.Role {
	case models.RoleDonor:
		target = o.donor
	case models.RoleDriver:
		target = o.driver
	case models.RoleBeneficiary:
		target = o.benef
	}
	if target == nil {
		target = o.fallback
	}
	if target != nil {
		*target = s.UserID
	}
}

// visibleTo строка видна пользователю по организации или как владельцу
func visibleTo(s models.Scope, orgID string, owners ...string) bool {
	if s.Global() {
		return true
	}
	if s.OrganizationID != "" && s.OrganizationID == orgID {
		return true
	}
	for _, id := range owners {
		if id != "" && id == s.UserID {
			return true
		}
	}
	return false
}

// foreignOrganization запись в чужую организацию выглядит как отсутствующая строка
func foreignOrganization(s models.Scope, orgID string) bool {
	return orgID != "" && !s.Global() && orgID != s.OrganizationID
}

// sameOrganization связанная строка должна принадлежать той же организации
func sameOrganization(orgID string) func(*models.Donation, models.Scope) bool {
	return func(d *models.Donation, _ models.Scope) bool { return d.OrganizationID == orgID }
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rowAudience(_ context.Context, row any) (string, []string) {
	switch v := row.(type) {
	case *models.Donation:
		return v.OrganizationID, []string{v.DonorID, strOrEmpty(v.BeneficiaryID)}
	case *models.Center:
		return v.OrganizationID, []string{strOrEmpty(v.ManagerID)}
	case *models.Delivery:
		return v.OrganizationID, []string{v.BeneficiaryID, strOrEmpty(v.DriverID)}
	case *models.Profile:
		return strOrEmpty(v.OrganizationID), []string{v.ID}
	case *models.Conversation:
		return "", v.ParticipantIDs
	}
	return "", nil
}

// ChangeVisible событие видят те же пользователи, которым видна сама строка
func ChangeVisible(c realtime.Change, s models.Scope) bool {
	if c.Table == "centers" && s.OrganizationID == "" {
		return true
	}
	return visibleTo(s, c.OrganizationID, c.Users...)
}

// ensureVisible запись разрешена только в строки, видимые пользователю
func ensureVisible[T any](ctx context.Context, sc models.Scope, id string,
	fetch func(context.Context, string) (*T, error), visible func(*T, models.Scope) bool,
) error {
	_, err := visibleRow(ctx, sc, id, fetch, visible)
	return err
}

func visibleRow[T any](ctx context.Context, sc models.Scope, id string,
	fetch func(context.Context, string) (*T, error), visible func(*T, models.Scope) bool,
) (*T, error) {
	row, err := fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(row, sc) {
		return nil, db.ErrNotFound
	}
	return row, nil
}
