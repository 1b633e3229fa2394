package auth

import (
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnknown            = errors.New("unknown auth error")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrProfileNotCreated  = errors.New("profile not created")
)

// Error классифицированная ошибка: Kind один из Err*, Message показывается пользователю
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

var messages = map[error]string{
	ErrInvalidCredentials: "Invalid email or password",
	ErrEmailNotConfirmed:  "Please confirm your email address before signing in",
	ErrRateLimited:        "Too many attempts. Please wait a moment and try again",
	ErrUnknown:            "Something went wrong. Please try again",
	ErrUnauthenticated:    "Please sign in to continue",
}

// Classify сводит ошибку провайдера к одному из видов
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, ErrUnauthenticated) {
		return &Error{Kind: ErrUnauthenticated, Message: messages[ErrUnauthenticated], Err: err}
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.Code {
		case CodeInvalidCredentials:
			return &Error{Kind: ErrInvalidCredentials, Message: messages[ErrInvalidCredentials], Err: err}
		case CodeEmailNotConfirmed:
			return &Error{Kind: ErrEmailNotConfirmed, Message: messages[ErrEmailNotConfirmed], Err: err}
		case CodeRateLimited:
			return &Error{Kind: ErrRateLimited, Message: messages[ErrRateLimited], Err: err}
		}
		if pe.Message != "" {
			return &Error{Kind: ErrUnknown, Message: pe.Message, Err: err}
		}
	}
	return &Error{Kind: ErrUnknown, Message: messages[ErrUnknown], Err: err}
}
