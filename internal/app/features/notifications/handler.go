// internal/app/features/notifications/handler.go
//
// The owner-scoped notification inbox: list, mark read, delete.
package notifications

import (
	"net/http"

	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
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
