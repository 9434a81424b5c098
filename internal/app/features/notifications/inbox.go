// internal/app/features/notifications/inbox.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	notificationstore "github.com/loomhub/loomhub/internal/app/store/notifications"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleList returns the caller's most recent notifications, newest
// first, capped at the store's list limit.
// GET /notifications
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	list, err := notificationstore.New(h.DB).ListByUser(ctx, userID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, map[string]any{"notifications": list})
}

// HandleMarkRead marks one notification read. A notification owned by
// someone else reads as not found.
// PATCH /notifications/{notificationID}/read
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid notification id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := notificationstore.New(h.DB).MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, h.Log, apperr.NotFound("notification not found"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Message(w, http.StatusOK, "notification marked as read")
}

// HandleMarkAllRead marks every unread notification read, reporting
// whether anything was actually unread.
// PATCH /notifications/read-all
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	updated, err := notificationstore.New(h.DB).MarkAllRead(ctx, userID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if updated == 0 {
		httpjson.Message(w, http.StatusOK, "no unread notifications")
		return
	}
	httpjson.OK(w, http.StatusOK, map[string]any{
		"message": "notifications marked as read",
		"updated": updated,
	})
}

// HandleDelete removes one notification, scoped to the owner.
// DELETE /notifications/{notificationID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid notification id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := notificationstore.New(h.DB).Delete(ctx, id, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, h.Log, apperr.NotFound("notification not found"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.Message(w, http.StatusOK, "notification deleted")
}

// HandleClearAll removes every notification the caller owns.
// DELETE /notifications/clear-all
func (h *Handler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	deleted, err := notificationstore.New(h.DB).DeleteAll(ctx, userID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, map[string]any{
		"message": "notifications cleared",
		"deleted": deleted,
	})
}
