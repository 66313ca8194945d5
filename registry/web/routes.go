package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"stowage.sh/core/registry/auth"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/retire"
	"stowage.sh/core/registry/web/handler"
	"stowage.sh/core/registry/web/middleware"
)

// Rules
// - Use a single function for each endpoint.
// - Name handler files after the related path.
// - Pass dependencies to each handler; shared-dependency structs are
//   reserved for domain services like retire.Service.

func Router(
	logger *slog.Logger,
	d *db.DB,
	a *auth.Auth,
	rs retire.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithLogger(logger))
	r.Use(middleware.WithRequester(a))

	r.Route("/api/v1/packages", func(r chi.Router) {
		r.Get("/{name}", handler.PackageGet(d))
		r.Delete("/{name}", handler.PackageDelete(rs))
	})

	return r
}
