package middleware

import (
	"crypto/subtle"
	"net/http"

	"donaplus/internal/pkg/response"
)

// APIKey требует заголовок apikey, равный публичному ключу бэкенда
func APIKey(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("apikey")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				response.Unauthorized(w, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
