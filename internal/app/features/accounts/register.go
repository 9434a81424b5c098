// internal/app/features/accounts/register.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	userstore "github.com/loomhub/loomhub/internal/app/store/users"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/sanitize"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type registerInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Contact  string `json:"contact,omitempty"`
}

// HandleRegister creates a user plus its role profile and signs the
// caller in. Admin accounts are not self-service; they come from the
// role override endpoint.
// POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	in.FullName = sanitize.Text(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))

	if in.FullName == "" || in.Email == "" || in.Password == "" {
		httpjson.Fail(w, h.Log, apperr.BadRequest("full_name, email, and password are required"))
		return
	}
	if len(in.Password) < 8 {
		httpjson.Fail(w, h.Log, apperr.BadRequest("password must be at least 8 characters"))
		return
	}
	if in.Role != models.RoleBuyer && in.Role != models.RoleWorker {
		httpjson.Fail(w, h.Log, apperr.BadRequest("role must be buyer or worker"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user := &models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := userstore.New(h.DB).Insert(ctx, user); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Fail(w, h.Log, apperr.Conflict("a user with this email already exists"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := h.createProfile(ctx, user, sanitize.Text(in.Contact)); err != nil {
		// The user document exists but the profile write failed; the
		// account is unusable until re-registered under support.
		h.Log.Error("user created but profile insert failed",
			zap.String("user_id", user.ID.Hex()), zap.Error(err))
		httpjson.Fail(w, h.Log, err)
		return
	}

	if _, err := h.Notifier.Create(ctx, user.ID, models.NotificationTypeSystem,
		"Welcome to LoomHub", nil); err != nil {
		h.Log.Warn("welcome notification failed", zap.Error(err))
	}

	token, err := h.JWT.GenerateToken(user)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	auth.SetAuthCookie(w, token, h.JWT.TokenDuration(), h.SecureCookies)
	httpjson.OK(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

func (h *Handler) createProfile(ctx context.Context, user *models.User, contact string) error {
	switch user.Role {
	case models.RoleBuyer:
		return buyerstore.New(h.DB).Insert(ctx, &models.Buyer{
			UserID:  user.ID,
			Name:    user.FullName,
			Contact: contact,
		})
	case models.RoleWorker:
		return workerstore.New(h.DB).Insert(ctx, &models.Worker{
			UserID:  &user.ID,
			Name:    user.FullName,
			Contact: contact,
		})
	}
	return nil
}
