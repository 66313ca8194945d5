package middleware

import (
	"log/slog"
	"net/http"

	"stowage.sh/core/log"
	"stowage.sh/core/registry/auth"
	"stowage.sh/core/registry/web/request"
)

type middlewareFunc func(http.Handler) http.Handler

func WithLogger(l *slog.Logger) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := log.IntoContext(r.Context(), l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithRequester resolves the caller's identity and passes it through
// context. Anonymous requests pass through with no requester; handlers
// that need one check for it.
func WithRequester(a *auth.Auth) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester, err := a.RequesterFromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := request.WithRequester(r.Context(), requester)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
