// internal/app/features/assignments/handler.go
//
// Assignment status transitions for the worker side of a fabric
// assignment.
package assignments

import (
	"net/http"

	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/notify"
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
