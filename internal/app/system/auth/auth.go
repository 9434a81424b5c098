// internal/app/system/auth/auth.go
// Package auth carries the JWT credential through HTTP middleware.
//
// The token travels in an HTTP-only cookie for REST calls (with an
// Authorization: Bearer fallback for non-browser clients) and in the
// websocket handshake for the live channel. There is exactly one
// middleware chain; every route that needs a principal goes through
// LoadUser and RequireSignedIn.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// CookieName is the cookie that carries the JWT for REST calls.
const CookieName = "loomhub_token"

// CurrentUser is the authenticated principal injected into the request
// context.
type CurrentUser struct {
	ID   string
	Name string
	Role string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// UserFromContext returns the principal and a found flag.
func UserFromContext(ctx context.Context) (*CurrentUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*CurrentUser)
	return u, ok
}

// UserFromRequest returns the principal set by LoadUser.
func UserFromRequest(r *http.Request) (*CurrentUser, bool) {
	return UserFromContext(r.Context())
}

// WithTestUser injects a principal directly, bypassing token
// verification. Only for handler tests.
func WithTestUser(r *http.Request, u *CurrentUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// Middleware validates credentials and gates routes.
type Middleware struct {
	jwt *JWTManager
	log *zap.Logger
}

// NewMiddleware builds the auth middleware around a JWT manager.
func NewMiddleware(jwt *JWTManager, logger *zap.Logger) *Middleware {
	return &Middleware{jwt: jwt, log: logger}
}

// TokenFromRequest extracts the raw token from the cookie or the
// Authorization header. Empty string when absent.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// LoadUser injects the principal into context when a valid token is
// present. Invalid tokens are ignored here; RequireSignedIn decides
// whether the route needs one.
func (m *Middleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token != "" {
			claims, err := m.jwt.VerifyToken(token)
			if err == nil {
				u := &CurrentUser{ID: claims.UserID, Name: claims.FullName, Role: claims.Role}
				r = r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
			} else {
				m.log.Debug("credential rejected", zap.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a principal with a JSON 401.
func (m *Middleware) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromRequest(r); !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole requires a principal with one of the allowed roles.
func (m *Middleware) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromRequest(r)
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetAuthCookie writes the token into the HTTP-only credential cookie.
func SetAuthCookie(w http.ResponseWriter, token string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the credential cookie.
func ClearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	httpjson.Error(w, status, msg)
}
