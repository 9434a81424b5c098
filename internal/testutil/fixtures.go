package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("fixture insert into %s failed: %v", coll, err)
	}
}

// CreateUser creates a test user with the given name and role.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateBuyer creates a buyer profile linked to the given user.
func (f *Fixtures) CreateBuyer(ctx context.Context, userID primitive.ObjectID, name string) models.Buyer {
	f.t.Helper()
	now := time.Now().UTC()
	b := models.Buyer{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		Name:             name,
		Contact:          name + "@example.com",
		Fabrics:          []primitive.ObjectID{},
		AssignedFabrics:  []primitive.ObjectID{},
		SentRequests:     []primitive.ObjectID{},
		ConnectedWorkers: []primitive.ObjectID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.insert(ctx, "buyers", b)
	return b
}

// CreateWorker creates a worker profile linked to the given user. Pass
// nil for an orphaned worker without a linked user.
func (f *Fixtures) CreateWorker(ctx context.Context, userID *primitive.ObjectID, name string) models.Worker {
	f.t.Helper()
	now := time.Now().UTC()
	w := models.Worker{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		Name:             name,
		Contact:          name + "@example.com",
		ReceivedRequests: []primitive.ObjectID{},
		ConnectedBuyers:  []primitive.ObjectID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.insert(ctx, "workers", w)
	return w
}

// CreateRequest creates a connection request between the given buyer
// and worker with the given status.
func (f *Fixtures) CreateRequest(ctx context.Context, buyerID, workerID primitive.ObjectID, status models.RequestStatus) models.Request {
	f.t.Helper()
	now := time.Now().UTC()
	r := models.Request{
		ID:         primitive.NewObjectID(),
		SenderID:   buyerID,
		ReceiverID: workerID,
		Message:    "test request",
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "requests", r)
	return r
}

// CreateFabric creates a complete fabric owned by the given buyer with
// the given status.
func (f *Fixtures) CreateFabric(ctx context.Context, buyerID primitive.ObjectID, name, status string) models.Fabric {
	f.t.Helper()
	now := time.Now().UTC()
	fab := models.Fabric{
		ID:            primitive.NewObjectID(),
		BuyerID:       buyerID,
		Name:          name,
		Description:   "test fabric",
		Unit:          models.UnitMeters,
		Quantity:      100,
		UnitPrice:     5,
		TotalPrice:    500,
		ImageURL:      "https://example.com/fabric.jpg",
		Status:        status,
		Assignments:   []primitive.ObjectID{},
		ChangeHistory: []models.FieldChange{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, "fabrics", fab)
	return fab
}

// CreateAssignment creates an assignment binding the fabric to the
// worker for the buyer, with the given status.
func (f *Fixtures) CreateAssignment(ctx context.Context, fabricID, workerID, buyerID primitive.ObjectID, status models.AssignmentStatus) models.FabricAssignment {
	f.t.Helper()
	now := time.Now().UTC()
	a := models.FabricAssignment{
		ID:            primitive.NewObjectID(),
		FabricID:      fabricID,
		WorkerID:      workerID,
		BuyerID:       buyerID,
		Status:        status,
		StatusHistory: []models.StatusChange{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, "fabric_assignments", a)
	return a
}

// CreateNotification creates an unread notification for the user.
func (f *Fixtures) CreateNotification(ctx context.Context, userID primitive.ObjectID, typ models.NotificationType, message string) models.Notification {
	f.t.Helper()
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      typ,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "notifications", n)
	return n
}
