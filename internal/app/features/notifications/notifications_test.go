// internal/app/features/notifications/notifications_test.go
package notifications_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loomhub/loomhub/internal/app/features/notifications"
	"github.com/loomhub/loomhub/internal/domain/models"
	"github.com/loomhub/loomhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestListNotificationsNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := notifications.NewHandler(db, zap.NewNop())
	ctx := context.Background()

	user := fx.CreateUser(ctx, "Mira Chen", "mira@example.com", models.RoleBuyer)
	old := fx.CreateNotification(ctx, user.ID, models.NotificationTypeRequest, "older")
	// Push the first one back so ordering is unambiguous.
	if _, err := db.Collection("notifications").UpdateOne(ctx,
		bson.M{"_id": old.ID},
		bson.M{"$set": bson.M{"created_at": time.Now().UTC().Add(-time.Hour)}}); err != nil {
		t.Fatalf("age notification: %v", err)
	}
	fx.CreateNotification(ctx, user.ID, models.NotificationTypeStatusUpdate, "newer")

	// Someone else's notification must not leak into the list.
	other := fx.CreateUser(ctx, "Eve Smith", "eve@example.com", models.RoleBuyer)
	fx.CreateNotification(ctx, other.ID, models.NotificationTypeSystem, "not yours")

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/notifications", testutil.BuyerUser(user.ID))
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	_, data, _ := testutil.DecodeEnvelope(t, rec)
	list, ok := data["notifications"].([]any)
	if !ok {
		t.Fatalf("notifications payload: %T", data["notifications"])
	}
	if len(list) != 2 {
		t.Fatalf("list length: got %d, want 2", len(list))
	}
	first := list[0].(map[string]any)
	if first["message"] != "newer" {
		t.Fatalf("first item: %v", first["message"])
	}
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := notifications.NewHandler(db, zap.NewNop())
	ctx := context.Background()

	owner := fx.CreateUser(ctx, "Mira Chen", "mira@example.com", models.RoleBuyer)
	n := fx.CreateNotification(ctx, owner.ID, models.NotificationTypeRequest, "hello")

	markRead := func(id primitive.ObjectID, user testutil.TestUser) *httptest.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPatch, "/notifications/"+id.Hex()+"/read", user)
		req = testutil.WithChiURLParam(req, "notificationID", id.Hex())
		rec := httptest.NewRecorder()
		h.HandleMarkRead(rec, req)
		return rec
	}

	// A non-owner sees not found, not forbidden; existence stays hidden.
	stranger := fx.CreateUser(ctx, "Eve Smith", "eve@example.com", models.RoleBuyer)
	if rec := markRead(n.ID, testutil.BuyerUser(stranger.ID)); rec.Code != http.StatusNotFound {
		t.Fatalf("stranger: got %d, body %s", rec.Code, rec.Body.String())
	}
	var stored models.Notification
	if err := db.Collection("notifications").FindOne(ctx, bson.M{"_id": n.ID}).Decode(&stored); err != nil {
		t.Fatalf("reload notification: %v", err)
	}
	if stored.Read {
		t.Fatal("notification marked read by a stranger")
	}

	if rec := markRead(n.ID, testutil.BuyerUser(owner.ID)); rec.Code != http.StatusOK {
		t.Fatalf("owner: got %d, body %s", rec.Code, rec.Body.String())
	}
	if err := db.Collection("notifications").FindOne(ctx, bson.M{"_id": n.ID}).Decode(&stored); err != nil {
		t.Fatalf("reload notification: %v", err)
	}
	if !stored.Read {
		t.Fatal("notification still unread after owner marked it")
	}
}

func TestMarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := notifications.NewHandler(db, zap.NewNop())
	ctx := context.Background()

	user := fx.CreateUser(ctx, "Mira Chen", "mira@example.com", models.RoleBuyer)
	fx.CreateNotification(ctx, user.ID, models.NotificationTypeRequest, "one")
	fx.CreateNotification(ctx, user.ID, models.NotificationTypeRequest, "two")

	markAll := func() *httptest.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPatch, "/notifications/read-all", testutil.BuyerUser(user.ID))
		rec := httptest.NewRecorder()
		h.HandleMarkAllRead(rec, req)
		return rec
	}

	rec := markAll()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	_, data, _ := testutil.DecodeEnvelope(t, rec)
	if data["updated"] != 2.0 {
		t.Fatalf("updated: got %v, want 2", data["updated"])
	}

	// Second pass finds nothing unread.
	rec = markAll()
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	_, _, msg := testutil.DecodeEnvelope(t, rec)
	if msg != "no unread notifications" {
		t.Fatalf("message: %q", msg)
	}
}

func TestClearAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := notifications.NewHandler(db, zap.NewNop())
	ctx := context.Background()

	user := fx.CreateUser(ctx, "Mira Chen", "mira@example.com", models.RoleBuyer)
	fx.CreateNotification(ctx, user.ID, models.NotificationTypeRequest, "one")
	fx.CreateNotification(ctx, user.ID, models.NotificationTypeRequest, "two")
	other := fx.CreateUser(ctx, "Eve Smith", "eve@example.com", models.RoleBuyer)
	keep := fx.CreateNotification(ctx, other.ID, models.NotificationTypeSystem, "keep")

	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/notifications/clear-all", testutil.BuyerUser(user.ID))
	rec := httptest.NewRecorder()
	h.HandleClearAll(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	_, data, _ := testutil.DecodeEnvelope(t, rec)
	if data["deleted"] != 2.0 {
		t.Fatalf("deleted: got %v, want 2", data["deleted"])
	}

	count, err := db.Collection("notifications").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 1 {
		t.Fatalf("remaining notifications: got %d, want 1", count)
	}
	var stored models.Notification
	if err := db.Collection("notifications").FindOne(ctx, bson.M{"_id": keep.ID}).Decode(&stored); err != nil {
		t.Fatalf("the other user's notification was deleted: %v", err)
	}
}
