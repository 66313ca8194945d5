package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"stowage.sh/core/log"
	"stowage.sh/core/registry/reqerr"
	"stowage.sh/core/registry/retire"
	"stowage.sh/core/registry/web/request"
)

// PackageDelete handles DELETE /api/v1/packages/{name}. The request
// carries no body; the caller comes from the session middleware.
func PackageDelete(rs retire.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := log.FromContext(ctx).With("handler", "PackageDelete")
		name := chi.URLParam(r, "name")

		requester, ok := request.RequesterFromContext(ctx)
		if !ok {
			reqerr.WriteJSON(w, reqerr.New(reqerr.KindUnauthenticated, "this action requires authentication"))
			return
		}

		// token callers never reach the retirement core
		if !requester.Interactive {
			reqerr.WriteJSON(w, reqerr.Forbidden("this action can only be performed on the stowage website"))
			return
		}

		if err := rs.Retire(ctx, name, *requester); err != nil {
			var re *reqerr.Error
			if errors.As(err, &re) {
				if re.Kind == reqerr.KindTransient {
					l.Error("retirement failed", "package", name, "err", err)
				}
				reqerr.WriteJSON(w, re)
				return
			}

			l.Error("retirement failed", "package", name, "err", err)
			reqerr.WriteJSON(w, reqerr.Transient(err))
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
