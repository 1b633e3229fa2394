package middleware

import (
	"net/http"
	"strings"

	"donaplus/internal/config"
)

// RouteGuard защищает префиксы маршрутов. Анонимный запрос к защищенному префиксу
// перенаправляется на вход только в production, аутентифицированный запрос к
// странице входа или регистрации уходит на дашборд.
func RouteGuard(routes config.RoutesConfig, production bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := false
			if s := SessionFrom(r.Context()); s != nil {
				authenticated = s.Authenticated()
			}

			switch {
			case !authenticated && production && matchAny(r.URL.Path, routes.ProtectedPrefixes):
				redirectsTotal.WithLabelValues("unauthenticated").Inc()
				http.Redirect(w, r, routes.LoginPath, http.StatusFound)
				return
			case authenticated && matchAny(r.URL.Path, routes.AuthPaths):
				redirectsTotal.WithLabelValues("authenticated").Inc()
				http.Redirect(w, r, routes.DashboardPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// matchAny префикс совпадает только по границе сегмента: /api не покрывает /apis
func matchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
