// internal/app/features/fabrics/routes.go
package fabrics

import (
	"github.com/go-chi/chi/v5"
	"github.com/loomhub/loomhub/internal/app/system/auth"
)

// Routes mounts the fabric API under whatever base path the caller
// chooses (typically "/fabrics" from bootstrap).
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)

		pr.Post("/", h.HandleCreateFabric)
		pr.Get("/", h.HandleListFabrics)
		pr.Get("/{fabricID}", h.HandleGetFabric)
		pr.Put("/{fabricID}", h.HandleUpdateFabric)
		pr.Post("/{fabricID}/assign", h.HandleAssignWorker)
	})

	return r
}
