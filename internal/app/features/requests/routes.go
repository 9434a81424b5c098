// internal/app/features/requests/routes.go
package requests

import (
	"github.com/go-chi/chi/v5"
	"github.com/loomhub/loomhub/internal/app/system/auth"
)

// Routes mounts the connection-request API under whatever base path the
// caller chooses (typically "/requests" from bootstrap).
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)

		pr.Post("/", h.HandleSendRequest)
		pr.Put("/{requestID}/accept", h.HandleAcceptRequest)
		pr.Put("/{requestID}/reject", h.HandleRejectRequest)
		pr.Get("/", h.HandleGetUserRequests)
		pr.Get("/available/workers", h.HandleAvailableWorkers)
		pr.Get("/connections", h.HandleConnections)
	})

	return r
}
