package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"donaplus/db"
	"donaplus/internal/auth"
	"donaplus/internal/middleware"
	"donaplus/internal/notify"
	apierrors "donaplus/internal/pkg/errors"
	"donaplus/internal/pkg/response"
	"donaplus/internal/realtime"
	"donaplus/internal/resources"
	"donaplus/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// Handler обработчики HTTP поверх коллекций ресурсов
type Handler struct {
	Store    Store
	Hub      *realtime.Hub
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewHandler(store Store, hub *realtime.Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках валидации имена полей как в JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{Store: store, Hub: hub, logger: logger, validate: v, now: time.Now}
}

// request зависимости одного запроса
type request struct {
	session *auth.Session
	notes   *notify.Recorder
	env     resources.Env
}

func (h *Handler) begin(r *http.Request) request {
	ctx := r.Context()
	req := request{session: middleware.SessionFrom(ctx), notes: middleware.NotesFrom(ctx)}
	if req.notes == nil {
		req.notes = notify.NewRecorder()
	}
	req.env = resources.Env{Notifier: req.notes, Now: h.now}
	if req.session != nil {
		req.env.Session = req.session
	}
	if h.Hub != nil {
		req.env.Publisher = h.Hub
	}
	return req
}

func (rq request) ok(w http.ResponseWriter, data any) {
	response.OK(w, data, rq.notes.Drain())
}

func (rq request) created(w http.ResponseWriter, data any) {
	response.Created(w, data, rq.notes.Drain())
}

func (rq request) list(w http.ResponseWriter, data any, n int, p PaginationParams) {
	response.List(w, data, &response.Meta{Total: n, Limit: p.Limit, Offset: p.Offset}, rq.notes.Drain())
}

type totaler interface {
	Total(ctx context.Context) (int, error)
}

// page страница списка, meta.total считает все подходящие записи
func (h *Handler) page(w http.ResponseWriter, r *http.Request, rq request, resource string, data any, t totaler) {
	n, err := t.Total(r.Context())
	if err != nil {
		h.fail(w, r, rq, resource, err)
		return
	}
	rq.list(w, data, n, parsePaginationParams(r))
}

// fail ответ с ошибкой и уведомлениями, которые операция уже выпустила
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, rq request, resource string, err error) {
	apiErr := h.toAPIError(resource, err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "resource", resource, "error", err)
	}
	response.Error(w, apiErr, rq.notes.Drain())
}

func (h *Handler) toAPIError(resource string, err error) *apierrors.APIError {
	var (
		apiErr  *apierrors.APIError
		verrs   validator.ValidationErrors
		authErr *auth.Error
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &verrs):
		return validationError(verrs)
	case errors.Is(err, db.ErrNotFound):
		return apierrors.NotFound(resource)
	case errors.Is(err, db.ErrConflict):
		return apierrors.ErrConflict
	case errors.Is(err, db.ErrUnknownColumn):
		return apierrors.ErrBadRequest.WithMessage(err.Error())
	case errors.Is(err, resources.ErrOrganizationRequired):
		return apierrors.Invalid("organizationId", err.Error())
	case errors.Is(err, resources.ErrFinalStatus):
		return apierrors.ErrConflict.WithMessage("Status is already final")
	case errors.Is(err, auth.ErrUnauthenticated):
		return apierrors.ErrUnauthorized
	case errors.As(err, &authErr):
		return authError(authErr)
	}
	return apierrors.ErrInternal
}

func authError(e *auth.Error) *apierrors.APIError {
	switch {
	case errors.Is(e.Kind, auth.ErrInvalidCredentials):
		return apierrors.ErrUnauthorized.WithMessage(e.Message)
	case errors.Is(e.Kind, auth.ErrEmailNotConfirmed):
		return apierrors.ErrForbidden.WithMessage(e.Message)
	case errors.Is(e.Kind, auth.ErrRateLimited):
		return apierrors.ErrRateLimited.WithMessage(e.Message)
	}
	// отказ провайдера с понятным сообщением (email занят, слабый пароль) это ошибка запроса
	var pe *auth.ProviderError
	if errors.As(e, &pe) {
		return apierrors.ErrBadRequest.WithMessage(e.Message)
	}
	return apierrors.ErrInternal.WithMessage(e.Message)
}

func validationError(verrs validator.ValidationErrors) *apierrors.APIError {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[fe.Field()] = msg
	}
	return apierrors.InvalidFields(fields)
}

// decode читает тело ограниченного размера и проверяет теги validate
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return apierrors.ErrBadRequest.WithMessage("Failed to read request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apierrors.ErrBadRequest.WithMessage("Invalid JSON format")
	}
	return h.validate.Struct(dst)
}

// decodePatch patch-структура в непустой набор полей
func (h *Handler) decodePatch(w http.ResponseWriter, r *http.Request, patch any) (models.Fields, error) {
	if err := h.decode(w, r, patch); err != nil {
		return nil, err
	}
	fields := models.FieldsOf(patch)
	if len(fields) == 0 {
		return nil, apierrors.ErrBadRequest.WithMessage("No fields to update")
	}
	return fields, nil
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams limit 1..100, без limit выдача не ограничена
func parsePaginationParams(r *http.Request) PaginationParams {
	var params PaginationParams
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	return params
}

func urlID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

// PingHandler GET /health
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ReadyHandler GET /ready, проверяет доступность хранилища
func (h *Handler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "store not ready", "error", err)
		response.Unavailable(w)
		return
	}
	response.OK(w, map[string]string{"status": "ready"}, nil)
}
