// internal/app/features/fabrics/handler.go
//
// Fabric postings, the field-edit change ledger, and worker assignment.
package fabrics

import (
	"context"
	"errors"
	"net/http"

	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/notify"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Notifier *notify.Notifier
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, notifier *notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Notifier: notifier, Log: logger}
}

func currentUserID(r *http.Request) (primitive.ObjectID, error) {
	u, ok := auth.UserFromRequest(r)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("sign in required")
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("invalid user identity")
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

// notFoundOr maps a missing-document error onto the API's NotFound;
// anything else passes through for the 500 path.
func notFoundOr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("fabric not found")
	}
	return err
}

func pathObjectID(raw, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid %s", field)
	}
	return id, nil
}
