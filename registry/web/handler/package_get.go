package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"stowage.sh/core/log"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/reqerr"
)

type packageResponse struct {
	Name      string    `json:"name"`
	Created   time.Time `json:"created_at"`
	Downloads uint64    `json:"downloads"`
}

// PackageGet handles GET /api/v1/packages/{name}.
func PackageGet(d *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		l := log.FromContext(ctx).With("handler", "PackageGet")
		name := chi.URLParam(r, "name")

		pkg, err := db.GetPackage(d, db.FilterEq("name", name))
		if errors.Is(err, sql.ErrNoRows) {
			reqerr.WriteJSON(w, reqerr.NotFound(fmt.Sprintf("crate `%s` does not exist", name)))
			return
		}
		if err != nil {
			l.Error("failed to look up package", "package", name, "err", err)
			reqerr.WriteJSON(w, reqerr.Transient(err))
			return
		}

		downloads, err := db.GetDownloads(d, pkg.ID)
		if err != nil {
			l.Error("failed to read downloads", "package", name, "err", err)
			reqerr.WriteJSON(w, reqerr.Transient(err))
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(packageResponse{
			Name:      pkg.Name,
			Created:   pkg.Created,
			Downloads: downloads,
		})
	}
}
