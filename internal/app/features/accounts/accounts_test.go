// internal/app/features/accounts/accounts_test.go
package accounts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/loomhub/loomhub/internal/app/features/accounts"
	notificationstore "github.com/loomhub/loomhub/internal/app/store/notifications"
	"github.com/loomhub/loomhub/internal/app/system/auth"
	"github.com/loomhub/loomhub/internal/app/system/notify"
	"github.com/loomhub/loomhub/internal/domain/models"
	"github.com/loomhub/loomhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, db *mongo.Database) *accounts.Handler {
	t.Helper()
	notifier := notify.New(notificationstore.New(db), &testutil.RecordingBroadcaster{}, zap.NewNop())
	jwt := auth.NewJWTManager("test-secret-0123456789ABCDEF", time.Hour)
	return accounts.NewHandler(db, jwt, notifier, zap.NewNop(), false)
}

// ensureEmailIndex mirrors the schema hook so duplicate-email inserts
// fail the way they do in a deployed database.
func ensureEmailIndex(t *testing.T, db *mongo.Database) {
	t.Helper()
	_, err := db.Collection("users").Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		t.Fatalf("create email index: %v", err)
	}
}

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ensureEmailIndex(t, db)
	h := newTestHandler(t, db)
	ctx := context.Background()

	register := func(body map[string]string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", body, testutil.TestUser{})
		rec := httptest.NewRecorder()
		h.HandleRegister(rec, req)
		return rec
	}

	rec := register(map[string]string{
		"full_name": "Mira Chen",
		"email":     "Mira@Example.com",
		"password":  "correct horse",
		"role":      "buyer",
		"contact":   "+1 555 0100",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	success, data, _ := testutil.DecodeEnvelope(t, rec)
	if !success || data["token"] == "" {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}

	// Email is stored lowercased and the role profile exists.
	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": "mira@example.com"}).Decode(&user); err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != models.RoleBuyer {
		t.Fatalf("role: got %s", user.Role)
	}
	if user.PasswordHash == "correct horse" {
		t.Fatal("password stored in the clear")
	}
	count, err := db.Collection("buyers").CountDocuments(ctx, bson.M{"user_id": user.ID})
	if err != nil {
		t.Fatalf("count buyers: %v", err)
	}
	if count != 1 {
		t.Fatalf("buyer profiles: got %d, want 1", count)
	}

	// A welcome notification is waiting in the inbox.
	nc, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"user_id": user.ID})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if nc != 1 {
		t.Fatalf("notifications: got %d, want 1", nc)
	}

	// The credential cookie is set.
	cookieSet := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Fatal("auth cookie not set on register")
	}

	t.Run("duplicate email", func(t *testing.T) {
		rec := register(map[string]string{
			"full_name": "Mira Again",
			"email":     "mira@example.com",
			"password":  "correct horse",
			"role":      "worker",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("short password", func(t *testing.T) {
		rec := register(map[string]string{
			"full_name": "Sam Low",
			"email":     "sam@example.com",
			"password":  "short",
			"role":      "buyer",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin role is not self-service", func(t *testing.T) {
		rec := register(map[string]string{
			"full_name": "Wannabe Admin",
			"email":     "admin@example.com",
			"password":  "correct horse",
			"role":      "admin",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
	})
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	// Register a real account so the stored hash is genuine.
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/register", map[string]string{
		"full_name": "Mira Chen",
		"email":     "mira@example.com",
		"password":  "correct horse",
		"role":      "buyer",
	}, testutil.TestUser{})
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d, body %s", rec.Code, rec.Body.String())
	}

	login := func(email, password string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
			map[string]string{"email": email, "password": password}, testutil.TestUser{})
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)
		return rec
	}

	rec = login("mira@example.com", "correct horse")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	_, data, _ := testutil.DecodeEnvelope(t, rec)
	if data["token"] == "" {
		t.Fatalf("no token in login response: %s", rec.Body.String())
	}

	// Wrong password and unknown email are indistinguishable.
	wrongPass := login("mira@example.com", "wrong")
	unknownEmail := login("nobody@example.com", "correct horse")
	for _, rec := range []*httptest.ResponseRecorder{wrongPass, unknownEmail} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
		_, _, msg := testutil.DecodeEnvelope(t, rec)
		if msg != "invalid email or password" {
			t.Fatalf("message: %q", msg)
		}
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(t, db)

	req := testutil.NewRequest(http.MethodPost, "/auth/logout")
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("auth cookie not cleared on logout")
	}
}

func TestSetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newTestHandler(t, db)
	ctx := context.Background()

	target := fx.CreateUser(ctx, "Tomas Reyes", "tomas@example.com", models.RoleWorker)

	setRole := func(userID, role string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/auth/users/"+userID+"/role",
			map[string]string{"role": role}, testutil.AdminUser())
		req = testutil.WithChiURLParam(req, "userID", userID)
		rec := httptest.NewRecorder()
		h.HandleSetRole(rec, req)
		return rec
	}

	rec := setRole(target.ID.Hex(), "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var stored models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": target.ID}).Decode(&stored); err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.Role != models.RoleAdmin {
		t.Fatalf("role: got %s, want admin", stored.Role)
	}

	if rec := setRole(target.ID.Hex(), "overlord"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus role: got %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := setRole(strings.Repeat("f", 24), "buyer"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: got %d, body %s", rec.Code, rec.Body.String())
	}
}
