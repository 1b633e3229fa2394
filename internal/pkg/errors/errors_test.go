package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithMessage_LeavesCatalogueIntact(t *testing.T) {
	e := ErrUnauthorized.WithMessage("Invalid API key")
	require.Equal(t, "Invalid API key", e.Message)
	require.Equal(t, http.StatusUnauthorized, e.Status)
	require.Equal(t, "Authentication required", ErrUnauthorized.Message)
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NotFound("Donation"))
	got := From(wrapped)
	require.Equal(t, http.StatusNotFound, got.Status)
	require.Equal(t, "Donation not found", got.Message)

	require.Same(t, ErrInternal, From(fmt.Errorf("boom")))
}

func TestInvalidFields(t *testing.T) {
	e := InvalidFields(map[string]string{"title": "required"})
	require.Equal(t, "validation_error", e.Code)
	require.Equal(t, map[string]string{"title": "required"}, e.Details)
}
