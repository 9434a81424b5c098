// internal/app/features/accounts/role.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	userstore "github.com/loomhub/loomhub/internal/app/store/users"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type roleInput struct {
	Role string `json:"role"`
}

// HandleSetRole is the admin-only role override. Role is otherwise
// immutable after signup. Changing role does not create or delete
// profiles; that cleanup is an operator action.
// PUT /auth/users/{userID}/role
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid user id"))
		return
	}
	var in roleInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !models.IsValidRole(role) {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid role %q", in.Role))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := userstore.New(h.DB).SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	h.notifyRoleChange(ctx, userID, role)
	httpjson.Message(w, http.StatusOK, "role updated")
}

func (h *Handler) notifyRoleChange(ctx context.Context, userID primitive.ObjectID, role string) {
	if _, err := h.Notifier.Create(ctx, userID, models.NotificationTypeSystem,
		"Your account role was changed to "+role, nil); err != nil {
		h.Log.Warn("role change notification failed")
	}
}
