// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"
	"github.com/loomhub/loomhub/internal/app/system/auth"
)

// Routes mounts the notification inbox under whatever base path the
// caller chooses (typically "/notifications" from bootstrap).
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)

		pr.Get("/", h.HandleList)
		pr.Patch("/read-all", h.HandleMarkAllRead)
		pr.Patch("/{notificationID}/read", h.HandleMarkRead)
		pr.Delete("/clear-all", h.HandleClearAll)
		pr.Delete("/{notificationID}", h.HandleDelete)
	})

	return r
}
