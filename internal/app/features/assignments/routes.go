// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/go-chi/chi/v5"
	"github.com/loomhub/loomhub/internal/app/system/auth"
)

// Routes mounts the assignment API under whatever base path the caller
// chooses (typically "/assignments" from bootstrap).
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)

		pr.Put("/update-status/{assignmentID}", h.HandleUpdateStatus)
	})

	return r
}
