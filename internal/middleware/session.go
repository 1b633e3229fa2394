package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"donaplus/db"
	"donaplus/internal/auth"
	"donaplus/internal/notify"

	"github.com/gorilla/sessions"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	notesKey   contextKey = "notifications"

	tokenValue = "token"
)

// SessionOptions параметры cookie сессии
type SessionOptions struct {
	CookieName string
	Secure     bool
	// Persist false делает cookie сессионной (исчезает при закрытии браузера)
	Persist bool
	TTL     time.Duration
	// Rolling продлевает cookie на каждом запросе аутентифицированного пользователя
	Rolling bool
	Session auth.SessionOptions
}

// SessionStore профили для сессии и серверные записи входа
type SessionStore interface {
	auth.ProfileStore
	auth.TokenStore
}

// SessionBridge восстанавливает auth.Session по токену из cookie на каждый запрос.
// Токен живет в хранилище, выход удаляет его на сервере.
type SessionBridge struct {
	store    sessions.Store
	tokens   *auth.Tokens
	provider auth.Provider
	profiles auth.ProfileStore
	logger   *slog.Logger
	opts     SessionOptions
}

func NewSessionBridge(store sessions.Store, provider auth.Provider, backend SessionStore, logger *slog.Logger, opts SessionOptions) *SessionBridge {
	if opts.CookieName == "" {
		opts.CookieName = "donaplus_session"
	}
	return &SessionBridge{
		store:    store,
		tokens:   auth.NewTokens(backend, opts.TTL),
		provider: provider,
		profiles: backend,
		logger:   logger,
		opts:     opts,
	}
}

// NewCookieStore gorilla CookieStore с параметрами сессии
func NewCookieStore(secret []byte, opts SessionOptions) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.Options.MaxAge = opts.maxAge()
	return store
}

func (o SessionOptions) maxAge() int {
	if !o.Persist {
		return 0
	}
	return int(o.TTL.Seconds())
}

// Middleware кладет в контекст сессию и журнал уведомлений запроса
func (b *SessionBridge) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		notes := notify.NewRecorder()
		notifier := notify.Multi{notes, notify.LogNotifier{Logger: b.logger}}

		s := auth.NewSession(b.provider, b.profiles, notifier, b.opts.Session)
		defer s.Close()

		var (
			mu       sync.Mutex
			token    string
			identity string
		)
		cookie, err := b.store.Get(r, b.opts.CookieName)
		if err != nil {
			b.logger.DebugContext(ctx, "decode session cookie", "error", err)
		}
		if t, _ := cookie.Values[tokenValue].(string); t != "" {
			if id, ok := b.restore(ctx, s, t); ok {
				token, identity = t, id
				if b.opts.Rolling {
					if err := b.tokens.Extend(ctx, t); err != nil {
						b.logger.WarnContext(ctx, "extend session token", "error", err)
					}
					b.save(w, r, t)
				}
			} else {
				b.save(w, r, "")
			}
		}

		s.Subscribe(func(ev auth.Event) {
			mu.Lock()
			defer mu.Unlock()
			switch ev.Type {
			case auth.EventSignedIn:
				if ev.Profile == nil {
					return
				}
				if token != "" {
					b.revoke(ctx, token)
				}
				t, err := b.tokens.Issue(ctx, ev.Profile.ID)
				if err != nil {
					b.logger.ErrorContext(ctx, "issue session token", "identity_id", ev.Profile.ID, "error", err)
					return
				}
				token, identity = t, ev.Profile.ID
				b.save(w, r, t)
			case auth.EventSignedOut:
				if identity != "" {
					if err := b.tokens.RevokeAll(ctx, identity); err != nil {
						b.logger.ErrorContext(ctx, "revoke session tokens", "identity_id", identity, "error", err)
					}
				} else if token != "" {
					b.revoke(ctx, token)
				}
				token, identity = "", ""
				b.save(w, r, "")
			}
		})

		ctx = context.WithValue(ctx, sessionKey, s)
		ctx = context.WithValue(ctx, notesKey, notes)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// restore токен без профиля отзывается
func (b *SessionBridge) restore(ctx context.Context, s *auth.Session, token string) (string, bool) {
	id, err := b.tokens.Resolve(ctx, token)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			b.logger.WarnContext(ctx, "resolve session token", "error", err)
		}
		return "", false
	}
	if !s.Restore(ctx, id) {
		b.revoke(ctx, token)
		return "", false
	}
	return id, true
}

func (b *SessionBridge) revoke(ctx context.Context, token string) {
	if err := b.tokens.Revoke(ctx, token); err != nil {
		b.logger.WarnContext(ctx, "revoke session token", "error", err)
	}
}

// save пустой токен удаляет cookie
func (b *SessionBridge) save(w http.ResponseWriter, r *http.Request, token string) {
	cookie, _ := b.store.Get(r, b.opts.CookieName)
	if cookie.Options == nil {
		cookie.Options = &sessions.Options{Path: "/", HttpOnly: true}
	}
	if token == "" {
		delete(cookie.Values, tokenValue)
		cookie.Options.MaxAge = -1
	} else {
		cookie.Values[tokenValue] = token
		cookie.Options.MaxAge = b.opts.maxAge()
	}
	if err := cookie.Save(r, w); err != nil {
		b.logger.ErrorContext(r.Context(), "save session cookie", "error", err)
	}
}

// SessionFrom сессия запроса, nil вне SessionBridge
func SessionFrom(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey).(*auth.Session)
	return s
}

// NotesFrom уведомления, выпущенные за время запроса
func NotesFrom(ctx context.Context) *notify.Recorder {
	n, _ := ctx.Value(notesKey).(*notify.Recorder)
	return n
}

// WithSession контекст с готовой сессией, для тестов обработчиков
func WithSession(ctx context.Context, s *auth.Session, notes *notify.Recorder) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, notesKey, notes)
}
