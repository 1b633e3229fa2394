// Package errors каталог ошибок HTTP API.
package errors

import (
	"errors"
	"net/http"
)

// APIError тело поля error в ответе, Status уходит в код ответа
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// WithMessage та же ошибка с другим текстом
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

func define(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

var (
	ErrBadRequest         = define(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrUnauthorized       = define(http.StatusUnauthorized, "unauthorized", "Authentication required")
	ErrForbidden          = define(http.StatusForbidden, "forbidden", "You don't have permission to perform this action")
	ErrConflict           = define(http.StatusConflict, "conflict", "Resource already exists")
	ErrRateLimited        = define(http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
	ErrInternal           = define(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrServiceUnavailable = define(http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")
)

// NotFound отсутствующая (или чужая) запись ресурса
func NotFound(resource string) *APIError {
	return define(http.StatusNotFound, "not_found", resource+" not found")
}

// Invalid одно поле не прошло проверку
func Invalid(field, message string) *APIError {
	e := define(http.StatusBadRequest, "validation_error", "Validation failed: "+message)
	e.Details = map[string]string{"field": field, "error": message}
	return e
}

// InvalidFields поле -> нарушенное правило
func InvalidFields(fields map[string]string) *APIError {
	e := define(http.StatusBadRequest, "validation_error", "One or more fields failed validation")
	e.Details = fields
	return e
}

// From APIError из цепочки, неизвестная ошибка становится ErrInternal
func From(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}
