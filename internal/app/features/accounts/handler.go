// internal/app/features/accounts/handler.go
//
// Signup, login, and the session surface. A signup creates the User
// and exactly one role profile (buyer or worker) in application order;
// the credential is an HS256 JWT set as an HTTP-only cookie.
package accounts

import (
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	JWT      *auth.JWTManager
	Notifier *notify.Notifier
	Log      *zap.Logger

	// SecureCookies mirrors the deployment's TLS posture.
	SecureCookies bool
}

func NewHandler(db *mongo.Database, jwt *auth.JWTManager, notifier *notify.Notifier, logger *zap.Logger, secureCookies bool) *Handler {
	return &Handler{DB: db, JWT: jwt, Notifier: notifier, Log: logger, SecureCookies: secureCookies}
}
