package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID   string
	Name string
	Role string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test Admin",
		Role: models.RoleAdmin,
	}
}

// BuyerUser returns a TestUser with buyer role and the given user ID.
func BuyerUser(userID primitive.ObjectID) TestUser {
	return TestUser{
		ID:   userID.Hex(),
		Name: "Test Buyer",
		Role: models.RoleBuyer,
	}
}

// WorkerUser returns a TestUser with worker role and the given user ID.
func WorkerUser(userID primitive.ObjectID) TestUser {
	return TestUser{
		ID:   userID.Hex(),
		Name: "Test Worker",
		Role: models.RoleWorker,
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses credential verification and injects the
// principal directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.CurrentUser{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewJSONRequest creates an HTTP request carrying a JSON body, with a
// user in context.
func NewJSONRequest(t *testing.T, method, target string, body any, user TestUser) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return WithUser(req, user)
}

// DecodeEnvelope parses the standard response envelope from a recorder.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (success bool, data map[string]any, message string) {
	t.Helper()
	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Message string         `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response envelope: %v (body: %s)", err, rec.Body.String())
	}
	return env.Success, env.Data, env.Message
}
