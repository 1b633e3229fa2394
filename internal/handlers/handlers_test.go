package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"donaplus/db/memstore"
	"donaplus/internal/auth"
	"donaplus/internal/config"
	"donaplus/internal/handlers"
	"donaplus/internal/handlers/testutils"
	"donaplus/internal/middleware"
	"donaplus/internal/notify"
	"donaplus/internal/realtime"
	"donaplus/models"

	"github.com/stretchr/testify/require"
)

const fixtureEmail = "demo@donaplus.dev"

// MockStorage memstore с возможностью подменить отдельные методы
type MockStorage struct {
	*memstore.Store
	PingFunc          func(ctx context.Context) error
	ListDonationsFunc func(ctx context.Context, f models.DonationFilter) ([]models.Donation, error)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return m.Store.Ping(ctx)
}

func (m *MockStorage) ListDonations(ctx context.Context, f models.DonationFilter) ([]models.Donation, error) {
	if m.ListDonationsFunc != nil {
		return m.ListDonationsFunc(ctx, f)
	}
	return m.Store.ListDonations(ctx, f)
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
		Limit int `json:"limit"`
	} `json:"meta"`
	Notifications []notify.Notification `json:"notifications"`
}

func decodeEnvelope(t *testing.T, res *http.Response) envelope {
	t.Helper()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

type fixture struct {
	store    *MockStorage
	provider *auth.FixtureProvider
	handler  *handlers.Handler
	orgID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memstore.New()
	mem.SeedCategories()
	p, err := auth.NewFixtureProvider(context.Background(), mem, auth.FixtureOptions{
		Email:        fixtureEmail,
		Role:         models.RoleOrgAdmin,
		Organization: "Food Bank",
	})
	require.NoError(t, err)
	profile, err := mem.GetProfile(context.Background(), p.Identity().ID)
	require.NoError(t, err)

	store := &MockStorage{Store: mem}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		store:    store,
		provider: p,
		handler:  handlers.NewHandler(store, realtime.NewHub(0), logger),
		orgID:    *profile.OrganizationID,
	}
}

// signedIn запрос с аутентифицированной сессией фикстурного пользователя
func (f *fixture) signedIn(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	notes := notify.NewRecorder()
	s := auth.NewSession(f.provider, f.store, notes, auth.SessionOptions{})
	t.Cleanup(s.Close)
	_, err := s.SignIn(req.Context(), fixtureEmail, "")
	require.NoError(t, err)
	notes.Drain()
	return req.WithContext(middleware.WithSession(req.Context(), s, notes))
}

func (f *fixture) userID() string { return f.provider.Identity().ID }

func (f *fixture) seedDonation(t *testing.T, title string) *models.Donation {
	t.Helper()
	d := &models.Donation{OrganizationID: f.orgID, DonorID: f.userID(), Title: title}
	require.NoError(t, f.store.CreateDonation(context.Background(), d))
	return d
}

func TestPingHandler(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.handler.PingHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestReadyHandler(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.handler.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	f.store.PingFunc = func(ctx context.Context) error { return errors.New("connection refused") }
	w = httptest.NewRecorder()
	f.handler.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetDonationsHandler(t *testing.T) {
	f := newFixture(t)
	f.seedDonation(t, "Winter Coats")
	f.seedDonation(t, "Rice bags")

	req := f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/donations?search=coat", nil))
	w := httptest.NewRecorder()
	f.handler.GetDonationsHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)

	var items []models.Donation
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	require.Equal(t, "Winter Coats", items[0].Title)
	require.Equal(t, 1, env.Meta.Total)
	require.Empty(t, env.Notifications)
}

func TestGetDonationsHandler_TotalCountsBeyondPage(t *testing.T) {
	f := newFixture(t)
	for _, title := range []string{"Winter Coats", "Rice bags", "School books"} {
		f.seedDonation(t, title)
	}

	req := f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/donations?limit=2", nil))
	w := httptest.NewRecorder()
	f.handler.GetDonationsHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)

	var items []models.Donation
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	require.Equal(t, 3, env.Meta.Total)
	require.Equal(t, 2, env.Meta.Limit)
}

func TestGetDonationsHandler_AnonymousGetsEmptyList(t *testing.T) {
	f := newFixture(t)
	f.seedDonation(t, "Winter Coats")

	w := httptest.NewRecorder()
	f.handler.GetDonationsHandler(w, httptest.NewRequest(http.MethodGet, "/api/donations", nil))

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	require.JSONEq(t, "[]", string(env.Data))
	require.Empty(t, env.Notifications)
}

func TestGetDonationsHandler_StoreError(t *testing.T) {
	f := newFixture(t)
	f.store.ListDonationsFunc = func(ctx context.Context, _ models.DonationFilter) ([]models.Donation, error) {
		return nil, errors.New("connection reset")
	}

	req := f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/donations", nil))
	w := httptest.NewRecorder()
	f.handler.GetDonationsHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	env := decodeEnvelope(t, res)
	require.Equal(t, "internal_error", env.Error.Code)
	require.Len(t, env.Notifications, 1)
	require.Equal(t, notify.KindError, env.Notifications[0].Kind)
	require.Contains(t, env.Notifications[0].Message, "connection reset")
}

func TestCreateDonationHandler(t *testing.T) {
	f := newFixture(t)
	sub, cancel := f.handler.Hub.Subscribe("donations")
	defer cancel()

	reqBody := `{"title": "Winter Coats", "quantity": 20, "isUrgent": true}`
	req := f.signedIn(t, testutils.JSONRequest(http.MethodPost, "/api/donations", reqBody))
	w := httptest.NewRecorder()

	f.handler.CreateDonationHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusCreated, res.StatusCode)
	env := decodeEnvelope(t, res)

	var d models.Donation
	require.NoError(t, json.Unmarshal(env.Data, &d))
	require.Equal(t, f.orgID, d.OrganizationID)
	require.Equal(t, f.userID(), d.DonorID)
	require.Equal(t, models.DonationPending, d.Status)
	require.Len(t, env.Notifications, 1)
	require.Equal(t, notify.KindSuccess, env.Notifications[0].Kind)

	select {
	case c := <-sub:
		require.Equal(t, realtime.Insert, c.Type)
		require.Equal(t, d.ID, c.ID)
	case <-time.After(time.Second):
		t.Fatal("no realtime event")
	}
}

func TestCreateDonationHandler_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		body    string
		code    string
		details map[string]string
	}{
		{"missing title", `{"quantity": 1}`, "validation_error", map[string]string{"title": "required"}},
		{"bad condition", `{"title": "x", "condition": "broken"}`, "validation_error", map[string]string{"condition": "oneof=new like_new good fair"}},
		{"invalid json", `{"title":`, "bad_request", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.signedIn(t, testutils.JSONRequest(http.MethodPost, "/api/donations", tt.body))
			w := httptest.NewRecorder()

			f.handler.CreateDonationHandler(w, req)

			res := w.Result()
			require.Equal(t, http.StatusBadRequest, res.StatusCode)
			env := decodeEnvelope(t, res)
			require.Equal(t, tt.code, env.Error.Code)
			if tt.details != nil {
				require.Equal(t, tt.details, env.Error.Details)
			}
			require.Empty(t, env.Notifications)
		})
	}
}

func TestGetDonationHandler_NotFound(t *testing.T) {
	f := newFixture(t)

	req := f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/donations/missing", nil))
	req = testutils.WithChiURLParams(req, map[string]string{"id": "missing"})
	w := httptest.NewRecorder()

	f.handler.GetDonationHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	env := decodeEnvelope(t, res)
	require.Equal(t, "not_found", env.Error.Code)
	require.Equal(t, "Donation not found", env.Error.Message)
}

func TestEditDonationHandler(t *testing.T) {
	f := newFixture(t)
	d := f.seedDonation(t, "Winter Coats")

	req := f.signedIn(t, testutils.JSONRequest(http.MethodPatch, "/api/donations/"+d.ID, `{}`))
	req = testutils.WithID(req, d.ID)
	w := httptest.NewRecorder()
	f.handler.EditDonationHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	req = f.signedIn(t, testutils.JSONRequest(http.MethodPatch, "/api/donations/"+d.ID, `{"quantity": 35}`))
	req = testutils.WithID(req, d.ID)
	w = httptest.NewRecorder()
	f.handler.EditDonationHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	var got models.Donation
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, 35, got.Quantity)
	require.Equal(t, "Winter Coats", got.Title)
}

func TestUpdateDonationStatusHandler(t *testing.T) {
	f := newFixture(t)
	d := f.seedDonation(t, "Winter Coats")

	req := f.signedIn(t, testutils.JSONRequest(http.MethodPut, "/api/donations/"+d.ID+"/status", `{"status":"published"}`))
	req = testutils.WithID(req, d.ID)
	w := httptest.NewRecorder()

	f.handler.UpdateDonationStatusHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	require.Contains(t, string(env.Data), `"status":"published"`)

	req = f.signedIn(t, testutils.JSONRequest(http.MethodPut, "/api/donations/"+d.ID+"/status", `{"status":"closed"}`))
	req = testutils.WithID(req, d.ID)
	w = httptest.NewRecorder()
	f.handler.UpdateDonationStatusHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDonationHandler_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	d := f.seedDonation(t, "Winter Coats")

	req := httptest.NewRequest(http.MethodDelete, "/api/donations/"+d.ID, nil)
	req = testutils.WithID(req, d.ID)
	w := httptest.NewRecorder()

	f.handler.DeleteDonationHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	env := decodeEnvelope(t, res)
	require.Empty(t, env.Notifications)

	_, err := f.store.GetDonation(context.Background(), d.ID)
	require.NoError(t, err)
}

func (f *fixture) seedDelivery(t *testing.T, status models.DeliveryStatus) *models.Delivery {
	t.Helper()
	d := f.seedDonation(t, "Books")
	dl := &models.Delivery{
		OrganizationID: f.orgID,
		DonationID:     d.ID,
		BeneficiaryID:  "b-1",
		TrackingNumber: "DN-2025-" + d.ID[:6],
		Status:         status,
	}
	require.NoError(t, f.store.CreateDelivery(context.Background(), dl))
	return dl
}

func TestUpdateDeliveryStatusHandler_MergesExtraFields(t *testing.T) {
	f := newFixture(t)
	dl := f.seedDelivery(t, models.DeliveryPending)

	reqBody := `{"status": "scheduled", "notes": "gate 3"}`
	req := f.signedIn(t, testutils.JSONRequest(http.MethodPut, "/api/deliveries/"+dl.ID+"/status", reqBody))
	req = testutils.WithID(req, dl.ID)
	w := httptest.NewRecorder()

	f.handler.UpdateDeliveryStatusHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	var got models.Delivery
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, models.DeliveryScheduled, got.Status)
	require.NotNil(t, got.Notes)
	require.Equal(t, "gate 3", *got.Notes)
}

func TestAdvanceDeliveryHandler(t *testing.T) {
	f := newFixture(t)

	dl := f.seedDelivery(t, models.DeliveryScheduled)
	req := f.signedIn(t, httptest.NewRequest(http.MethodPost, "/api/deliveries/"+dl.ID+"/advance", nil))
	req = testutils.WithID(req, dl.ID)
	w := httptest.NewRecorder()
	f.handler.AdvanceDeliveryHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	var got models.Delivery
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, models.DeliveryInTransit, got.Status)
	require.NotNil(t, got.ActualPickupAt)

	done := f.seedDelivery(t, models.DeliveryDelivered)
	req = f.signedIn(t, httptest.NewRequest(http.MethodPost, "/api/deliveries/"+done.ID+"/advance", nil))
	req = testutils.WithID(req, done.ID)
	w = httptest.NewRecorder()
	f.handler.AdvanceDeliveryHandler(w, req)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestMessageHandlers_AuthorOnlyEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := &models.Conversation{ParticipantIDs: models.StringList{f.userID(), "u-2"}}
	require.NoError(t, f.store.CreateConversation(ctx, conv))
	theirs := &models.Message{ConversationID: conv.ID, SenderID: "u-2", Content: "hello"}
	require.NoError(t, f.store.CreateMessage(ctx, theirs))

	req := f.signedIn(t, testutils.JSONRequest(http.MethodPatch, "/api/messages/"+theirs.ID, `{"content":"edited"}`))
	req = testutils.WithID(req, theirs.ID)
	w := httptest.NewRecorder()
	f.handler.EditMessageHandler(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req = f.signedIn(t, httptest.NewRequest(http.MethodPost, "/api/messages/"+theirs.ID+"/read", nil))
	req = testutils.WithID(req, theirs.ID)
	w = httptest.NewRecorder()
	f.handler.MarkMessageReadHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	var got models.Message
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.True(t, got.IsRead)
	require.Equal(t, "hello", got.Content)
}

func TestSendMessageHandler(t *testing.T) {
	f := newFixture(t)
	conv := &models.Conversation{ParticipantIDs: models.StringList{f.userID(), "u-2"}}
	require.NoError(t, f.store.CreateConversation(context.Background(), conv))

	req := f.signedIn(t, testutils.JSONRequest(http.MethodPost, "/api/conversations/"+conv.ID+"/messages", `{"content":"On my way"}`))
	req = testutils.WithID(req, conv.ID)
	w := httptest.NewRecorder()
	f.handler.SendMessageHandler(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/conversations/"+conv.ID+"/messages", nil))
	req = testutils.WithID(req, conv.ID)
	w = httptest.NewRecorder()
	f.handler.GetMessagesHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	require.Len(t, msgs, 1)
	require.Equal(t, f.userID(), msgs[0].SenderID)
}

func TestGetStatsHandler(t *testing.T) {
	f := newFixture(t)
	f.seedDonation(t, "Winter Coats")
	f.seedDelivery(t, models.DeliveryPending)

	req := f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	w := httptest.NewRecorder()
	f.handler.GetStatsHandler(w, req)

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	var stats models.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, 2, stats.TotalDonations)
	require.Equal(t, 1, stats.PendingDeliveries)
}

func TestGetCategoriesHandler(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.handler.GetCategoriesHandler(w, f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/categories", nil)))

	res := w.Result()
	require.Equal(t, http.StatusOK, res.StatusCode)
	env := decodeEnvelope(t, res)
	require.Equal(t, 8, env.Meta.Total)
}

func TestRealtimeHandler_RejectsUnknownTable(t *testing.T) {
	f := newFixture(t)

	req := f.signedIn(t, httptest.NewRequest(http.MethodGet, "/api/realtime/identities", nil))
	req = testutils.WithChiURLParams(req, map[string]string{"table": "identities"})
	w := httptest.NewRecorder()
	f.handler.RealtimeHandler(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/realtime/donations", nil)
	req = testutils.WithChiURLParams(req, map[string]string{"table": "donations"})
	w = httptest.NewRecorder()
	f.handler.RealtimeHandler(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func newServer(t *testing.T, f *fixture, production bool) *httptest.Server {
	t.Helper()
	opts := middleware.SessionOptions{Persist: true, TTL: time.Hour}
	cookies := middleware.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), opts)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := handlers.NewRouter(f.handler, handlers.RouterOptions{
		APIKey: "anon-key",
		Routes: config.RoutesConfig{
			ProtectedPrefixes: []string{"/dashboard", "/api"},
			AuthPaths:         []string{"/login", "/signup"},
			LoginPath:         "/login",
			DashboardPath:     "/dashboard",
		},
		Production: production,
		Sessions:   middleware.NewSessionBridge(cookies, f.provider, f.store, logger, opts),
		Logger:     logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirect клиент без перехода по Location
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
}

func TestRouter_SignInFlow(t *testing.T) {
	f := newFixture(t)
	srv := newServer(t, f, false)
	client := noRedirect()

	res, err := client.Post(srv.URL+"/login", "application/json",
		strings.NewReader(`{"email":"`+fixtureEmail+`","password":"whatever"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	cookies := res.Cookies()
	require.NotEmpty(t, cookies)
	env := decodeEnvelope(t, res)
	require.Contains(t, string(env.Data), `"redirect":"/dashboard"`)
	require.Len(t, env.Notifications, 1)

	do := func(method, path, apiKey string) *http.Response {
		req, err := http.NewRequest(method, srv.URL+path, nil)
		require.NoError(t, err)
		if apiKey != "" {
			req.Header.Set("apikey", apiKey)
		}
		for _, c := range cookies {
			req.AddCookie(c)
		}
		res, err := client.Do(req)
		require.NoError(t, err)
		return res
	}

	res = do(http.MethodGet, "/api/profile", "anon-key")
	require.Equal(t, http.StatusOK, res.StatusCode)
	env = decodeEnvelope(t, res)
	require.Contains(t, string(env.Data), fixtureEmail)

	res = do(http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()

	res = do(http.MethodPost, "/login", "")
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/dashboard", res.Header.Get("Location"))
	res.Body.Close()

	res = do(http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	env = decodeEnvelope(t, res)
	require.Contains(t, string(env.Data), `"stats"`)
	require.Contains(t, string(env.Data), "Food Bank")

	res = do(http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	// те же cookies после выхода больше не аутентифицируют
	res = do(http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()
}

func TestRouter_WrongEmailIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	srv := newServer(t, f, false)

	res, err := noRedirect().Post(srv.URL+"/login", "application/json",
		strings.NewReader(`{"email":"someone@example.org","password":"x"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	env := decodeEnvelope(t, res)
	require.Equal(t, "Invalid email or password", env.Error.Message)
	require.Len(t, env.Notifications, 1)
	require.Equal(t, notify.KindError, env.Notifications[0].Kind)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	f := newFixture(t)

	dev := newServer(t, f, false)
	res, err := noRedirect().Get(dev.URL + "/dashboard")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()

	prod := newServer(t, f, true)
	res, err = noRedirect().Get(prod.URL + "/dashboard")
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, res.StatusCode)
	require.Equal(t, "/login", res.Header.Get("Location"))
	res.Body.Close()

	res, err = noRedirect().Get(prod.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()
}
