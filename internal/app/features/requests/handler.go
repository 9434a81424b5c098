// internal/app/features/requests/handler.go
// Package requests implements the buyer→worker connection request
// lifecycle: send (pending), accept/reject (terminal), the request
// inbox, the connected-peer list, and the available-worker discovery
// feed.
package requests

import (
	"context"
	"errors"
	"net/http"

	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/notify"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the requests feature.
type Handler struct {
	DB       *mongo.Database
	Notifier *notify.Notifier
	Log      *zap.Logger
}

// NewHandler constructs a requests Handler. The Notifier carries the
// injected Broadcaster; handlers never look a live channel up from
// ambient state.
func NewHandler(db *mongo.Database, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Notifier: notifier, Log: logger}
}

// currentUserID returns the authenticated user's ObjectID.
func currentUserID(r *http.Request) (primitive.ObjectID, error) {
	u, ok := auth.UserFromRequest(r)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("authentication required")
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("invalid credential subject")
	}
	return id, nil
}

// currentBuyer resolves the acting user's buyer profile.
func (h *Handler) currentBuyer(ctx context.Context, r *http.Request) (*models.Buyer, error) {
	userID, err := currentUserID(r)
	if err != nil {
		return nil, err
	}
	buyer, err := buyerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("buyer profile not found")
		}
		return nil, err
	}
	return buyer, nil
}

// currentWorker resolves the acting user's worker profile.
func (h *Handler) currentWorker(ctx context.Context, r *http.Request) (*models.Worker, error) {
	userID, err := currentUserID(r)
	if err != nil {
		return nil, err
	}
	worker, err := workerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("worker profile not found")
		}
		return nil, err
	}
	return worker, nil
}
