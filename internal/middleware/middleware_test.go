package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"donaplus/db/memstore"
	"donaplus/internal/auth"
	"donaplus/internal/config"
	"donaplus/internal/notify"
	"donaplus/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureEmail = "demo@donaplus.dev"

var routes = config.RoutesConfig{
	ProtectedPrefixes: []string{"/dashboard", "/api"},
	AuthPaths:         []string{"/login", "/signup"},
	LoginPath:         "/login",
	DashboardPath:     "/dashboard",
}

func newFixture(t *testing.T) (*memstore.Store, *auth.FixtureProvider) {
	t.Helper()
	store := memstore.New()
	p, err := auth.NewFixtureProvider(context.Background(), store, auth.FixtureOptions{
		Email: fixtureEmail,
		Role:  models.RoleOrgAdmin,
	})
	require.NoError(t, err)
	return store, p
}

func newBridge(t *testing.T, opts SessionOptions) *SessionBridge {
	t.Helper()
	store, p := newFixture(t)
	cookies := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), opts)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewSessionBridge(cookies, p, store, logger, opts)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "donaplus_session" {
			return c
		}
	}
	return nil
}

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestSessionBridge_SignInPersistsAcrossRequests(t *testing.T) {
	bridge := newBridge(t, SessionOptions{Persist: true, TTL: time.Hour})

	signIn := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		require.NotNil(t, s)
		require.False(t, s.Authenticated())
		_, err := s.SignIn(r.Context(), fixtureEmail, "any")
		require.NoError(t, err)
		assert.Equal(t, 1, NotesFrom(r.Context()).Count(notify.KindSuccess))
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	signIn.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	require.Equal(t, 3600, cookie.MaxAge)
	require.True(t, cookie.HttpOnly)

	var restored bool
	follow := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		restored = SessionFrom(r.Context()).Authenticated()
	}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	follow.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, restored)
}

func TestSessionBridge_BrowserSessionCookie(t *testing.T) {
	bridge := newBridge(t, SessionOptions{Persist: false, TTL: time.Hour})
	h := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := SessionFrom(r.Context()).SignIn(r.Context(), fixtureEmail, "")
		require.NoError(t, err)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	require.Zero(t, cookie.MaxAge)
	require.True(t, cookie.Expires.IsZero())
}

func signInCookie(t *testing.T, bridge *SessionBridge) *http.Cookie {
	t.Helper()
	h := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := SessionFrom(r.Context()).SignIn(r.Context(), fixtureEmail, "")
		require.NoError(t, err)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	return cookie
}

func authenticatedWith(t *testing.T, bridge *SessionBridge, cookie *http.Cookie) bool {
	t.Helper()
	var authenticated bool
	h := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated = SessionFrom(r.Context()).Authenticated()
	}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	h.ServeHTTP(httptest.NewRecorder(), req)
	return authenticated
}

func TestSessionBridge_SignOutRevokesToken(t *testing.T) {
	bridge := newBridge(t, SessionOptions{Persist: true, TTL: time.Hour})
	cookie := signInCookie(t, bridge)
	require.True(t, authenticatedWith(t, bridge, cookie))

	h := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFrom(r.Context())
		require.True(t, s.Authenticated())
		require.NoError(t, s.SignOut(r.Context()))
	}))
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	cleared := sessionCookie(t, rec)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)

	require.False(t, authenticatedWith(t, bridge, cookie), "copy of the cookie issued before sign-out")
}

func TestSessionBridge_SignOutEndsEverySessionOfIdentity(t *testing.T) {
	bridge := newBridge(t, SessionOptions{Persist: true, TTL: time.Hour})
	laptop := signInCookie(t, bridge)
	phone := signInCookie(t, bridge)
	require.NotEqual(t, laptop.Value, phone.Value)

	h := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, SessionFrom(r.Context()).SignOut(r.Context()))
	}))
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(laptop)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.False(t, authenticatedWith(t, bridge, phone))
}

func TestSessionBridge_UnknownTokenStaysAnonymous(t *testing.T) {
	bridge := newBridge(t, SessionOptions{Persist: true, TTL: time.Hour})
	cookies := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), SessionOptions{Persist: true, TTL: time.Hour})
	seed := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c, err := cookies.New(req, "donaplus_session")
	require.NoError(t, err)
	c.Values["token"] = "never-issued"
	require.NoError(t, c.Save(req, seed))

	var authenticated bool
	h := bridge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticated = SessionFrom(r.Context()).Authenticated()
		require.Empty(t, NotesFrom(r.Context()).All())
	}))
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookie(t, seed))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.False(t, authenticated)
	cleared := sessionCookie(t, rec)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)
}

func TestRouteGuard(t *testing.T) {
	store, p := newFixture(t)

	signedIn := func(t *testing.T) *auth.Session {
		s := auth.NewSession(p, store, notify.NewRecorder(), auth.SessionOptions{})
		t.Cleanup(s.Close)
		_, err := s.SignIn(context.Background(), fixtureEmail, "")
		require.NoError(t, err)
		return s
	}
	anonymous := func(t *testing.T) *auth.Session {
		s := auth.NewSession(p, store, notify.NewRecorder(), auth.SessionOptions{})
		t.Cleanup(s.Close)
		return s
	}

	tests := []struct {
		name       string
		production bool
		session    func(t *testing.T) *auth.Session
		path       string
		wantStatus int
		wantTarget string
	}{
		{"anonymous protected in production", true, anonymous, "/dashboard", http.StatusFound, "/login"},
		{"anonymous nested api path in production", true, anonymous, "/api/donations", http.StatusFound, "/login"},
		{"anonymous protected in development", false, anonymous, "/dashboard", http.StatusOK, ""},
		{"prefix matches whole segments", true, anonymous, "/apis", http.StatusOK, ""},
		{"anonymous login page", true, anonymous, "/login", http.StatusOK, ""},
		{"authenticated login page", false, signedIn, "/login", http.StatusFound, "/dashboard"},
		{"authenticated signup in production", true, signedIn, "/signup", http.StatusFound, "/dashboard"},
		{"authenticated protected", true, signedIn, "/api/stats", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RouteGuard(routes, tt.production)(http.HandlerFunc(ok))
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = req.WithContext(WithSession(req.Context(), tt.session(t), notify.NewRecorder()))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantTarget != "" {
				require.Equal(t, tt.wantTarget, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRouteGuard_NoSessionIsAnonymous(t *testing.T) {
	h := RouteGuard(routes, true)(http.HandlerFunc(ok))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestAPIKey(t *testing.T) {
	h := APIKey("anon-key")(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/donations", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "Invalid API key", body.Error.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	req.Header.Set("apikey", "anon-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogging_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "ERROR", entry["level"])
	require.Equal(t, float64(http.StatusBadGateway), entry["status"])
	require.Equal(t, "/ready", entry["path"])
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(ok))
	req := httptest.NewRequest(http.MethodOptions, "/api/donations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "apikey")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
