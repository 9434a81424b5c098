// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/go-chi/chi/v5"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/domain/models"
)

// Routes mounts the account API under whatever base path the caller
// chooses (typically "/auth" from bootstrap).
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)

		pr.Post("/logout", h.HandleLogout)
		pr.Get("/me", h.HandleMe)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)
		pr.Use(mw.RequireRole(models.RoleAdmin))

		pr.Put("/users/{userID}/role", h.HandleSetRole)
	})

	return r
}
