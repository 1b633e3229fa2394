// Package response JSON-ответы обработчиков.
package response

import (
	"encoding/json"
	"net/http"

	"donaplus/internal/notify"
	apierrors "donaplus/internal/pkg/errors"
)

// Response общий конверт ответа, notifications несут toast-уведомления операции
type Response struct {
	Data          any                   `json:"data,omitempty"`
	Error         any                   `json:"error,omitempty"`
	Meta          *Meta                 `json:"meta,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// Meta Total считает все подходящие записи, а не только страницу
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, `{"error":{"code":"internal_error","message":"Failed to encode response"}}`, http.StatusInternalServerError)
	}
}

func OK(w http.ResponseWriter, data any, notes []notify.Notification) {
	write(w, http.StatusOK, Response{Data: data, Notifications: notes})
}

func Created(w http.ResponseWriter, data any, notes []notify.Notification) {
	write(w, http.StatusCreated, Response{Data: data, Notifications: notes})
}

// List страница записей с метаданными пагинации
func List(w http.ResponseWriter, data any, meta *Meta, notes []notify.Notification) {
	write(w, http.StatusOK, Response{Data: data, Meta: meta, Notifications: notes})
}

// Error пишет ошибку API вместе с уведомлениями, которые успела выпустить операция
func Error(w http.ResponseWriter, err error, notes []notify.Notification) {
	apiErr := apierrors.From(err)
	write(w, apiErr.Status, Response{Error: apiErr, Notifications: notes})
}

func NotFound(w http.ResponseWriter, resource string) {
	Error(w, apierrors.NotFound(resource), nil)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, apierrors.ErrUnauthorized.WithMessage(message), nil)
}

func Unavailable(w http.ResponseWriter) {
	Error(w, apierrors.ErrServiceUnavailable, nil)
}
