// internal/app/features/accounts/login.go
package accounts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/loomhub/loomhub/internal/app/store/users"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies the password and sets the credential cookie.
// A wrong email and a wrong password produce the same response.
// POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		httpjson.Fail(w, h.Log, apperr.BadRequest("email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, h.Log, apperr.Unauthorized("invalid email or password"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		httpjson.Fail(w, h.Log, apperr.Unauthorized("invalid email or password"))
		return
	}

	token, err := h.JWT.GenerateToken(user)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	auth.SetAuthCookie(w, token, h.JWT.TokenDuration(), h.SecureCookies)
	httpjson.OK(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

// HandleLogout clears the credential cookie.
// POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAuthCookie(w, h.SecureCookies)
	httpjson.Message(w, http.StatusOK, "signed out")
}

// HandleMe returns the signed-in user's account record.
// GET /auth/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromRequest(r)
	if !ok {
		httpjson.Fail(w, h.Log, apperr.Unauthorized("sign in required"))
		return
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, apperr.Unauthorized("invalid user identity"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, h.Log, apperr.NotFound("user not found"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, map[string]any{"user": user})
}
