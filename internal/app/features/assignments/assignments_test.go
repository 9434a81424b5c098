// internal/app/features/assignments/assignments_test.go
package assignments_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/loomhub/loomhub/internal/app/features/assignments"
	notificationstore "github.com/loomhub/loomhub/internal/app/store/notifications"
	"github.com/loomhub/loomhub/internal/app/system/notify"
	"github.com/loomhub/loomhub/internal/domain/models"
	"github.com/loomhub/loomhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type world struct {
	db         *mongo.Database
	fx         *testutil.Fixtures
	h          *assignments.Handler
	buyerUser  models.User
	buyer      models.Buyer
	workerUser models.User
	worker     models.Worker
	fabric     models.Fabric
	assignment models.FabricAssignment
}

func setup(t *testing.T) *world {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	notifier := notify.New(notificationstore.New(db), &testutil.RecordingBroadcaster{}, zap.NewNop())
	h := assignments.NewHandler(db, notifier, zap.NewNop())

	buyerUser := fx.CreateUser(ctx, "Mira Chen", "mira@example.com", models.RoleBuyer)
	buyer := fx.CreateBuyer(ctx, buyerUser.ID, "Mira Textiles")
	workerUser := fx.CreateUser(ctx, "Tomas Reyes", "tomas@example.com", models.RoleWorker)
	worker := fx.CreateWorker(ctx, &workerUser.ID, "Reyes Weaving")
	fabric := fx.CreateFabric(ctx, buyer.ID, "Raw Silk", models.FabricStatusActive)
	assignment := fx.CreateAssignment(ctx, fabric.ID, worker.ID, buyer.ID, models.AssignmentStatusAssigned)

	return &world{db: db, fx: fx, h: h,
		buyerUser: buyerUser, buyer: buyer,
		workerUser: workerUser, worker: worker,
		fabric: fabric, assignment: assignment}
}

func (w *world) updateStatus(t *testing.T, status, notes string, user testutil.TestUser) *httptest.ResponseRecorder {
	t.Helper()
	body := map[string]string{"status": status}
	if notes != "" {
		body["notes"] = notes
	}
	req := testutil.NewJSONRequest(t, http.MethodPut,
		"/assignments/update-status/"+w.assignment.ID.Hex(), body, user)
	req = testutil.WithChiURLParam(req, "assignmentID", w.assignment.ID.Hex())
	rec := httptest.NewRecorder()
	w.h.HandleUpdateStatus(rec, req)
	return rec
}

func (w *world) reload(t *testing.T) models.FabricAssignment {
	t.Helper()
	var a models.FabricAssignment
	if err := w.db.Collection("fabric_assignments").FindOne(context.Background(), bson.M{"_id": w.assignment.ID}).Decode(&a); err != nil {
		t.Fatalf("reload assignment: %v", err)
	}
	return a
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	w := setup(t)

	rec := w.updateStatus(t, "in-progress", "warp threaded", testutil.WorkerUser(w.workerUser.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	a := w.reload(t)
	if a.Status != models.AssignmentStatusInProgress {
		t.Fatalf("assignment status: got %s", a.Status)
	}
	if len(a.StatusHistory) != 1 {
		t.Fatalf("history length: got %d, want 1", len(a.StatusHistory))
	}
	entry := a.StatusHistory[0]
	if entry.PreviousStatus != models.AssignmentStatusAssigned || entry.NewStatus != models.AssignmentStatusInProgress {
		t.Fatalf("history entry: %+v", entry)
	}
	if entry.ChangedBy != w.workerUser.ID {
		t.Fatalf("changed_by: got %s", entry.ChangedBy.Hex())
	}
	if entry.Notes != "warp threaded" {
		t.Fatalf("notes: %q", entry.Notes)
	}

	// A second transition chains previous_status off the new state.
	rec = w.updateStatus(t, "completed", "", testutil.WorkerUser(w.workerUser.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	a = w.reload(t)
	if len(a.StatusHistory) != 2 {
		t.Fatalf("history length: got %d, want 2", len(a.StatusHistory))
	}
	if a.StatusHistory[1].PreviousStatus != models.AssignmentStatusInProgress {
		t.Fatalf("second entry previous_status: %s", a.StatusHistory[1].PreviousStatus)
	}

	// The buyer got a persisted notification per transition.
	count, err := w.db.Collection("notifications").CountDocuments(context.Background(), bson.M{"user_id": w.buyerUser.ID})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 2 {
		t.Fatalf("buyer notifications: got %d, want 2", count)
	}
}

func TestUpdateStatusDirectCompletion(t *testing.T) {
	w := setup(t)

	// assigned jumps straight to completed without passing in-progress.
	rec := w.updateStatus(t, "completed", "", testutil.WorkerUser(w.workerUser.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if a := w.reload(t); a.Status != models.AssignmentStatusCompleted {
		t.Fatalf("assignment status: got %s", a.Status)
	}
}

func TestUpdateStatusTerminalIsImmutable(t *testing.T) {
	w := setup(t)

	if rec := w.updateStatus(t, "cancelled", "", testutil.WorkerUser(w.workerUser.ID)); rec.Code != http.StatusOK {
		t.Fatalf("cancel: got %d, body %s", rec.Code, rec.Body.String())
	}
	rec := w.updateStatus(t, "in-progress", "", testutil.WorkerUser(w.workerUser.ID))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	_, _, msg := testutil.DecodeEnvelope(t, rec)
	if msg != "cannot change status of a cancelled assignment" {
		t.Fatalf("message: %q", msg)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	w := setup(t)

	rec := w.updateStatus(t, "paused", "", testutil.WorkerUser(w.workerUser.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if a := w.reload(t); a.Status != models.AssignmentStatusAssigned || len(a.StatusHistory) != 0 {
		t.Fatalf("assignment mutated by rejected update: %+v", a)
	}
}

func TestUpdateStatusAuthorization(t *testing.T) {
	w := setup(t)
	ctx := context.Background()

	t.Run("unrelated worker", func(t *testing.T) {
		otherUser := w.fx.CreateUser(ctx, "Lena Ortiz", "lena@example.com", models.RoleWorker)
		w.fx.CreateWorker(ctx, &otherUser.ID, "Ortiz Looms")
		rec := w.updateStatus(t, "in-progress", "", testutil.WorkerUser(otherUser.ID))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("buyer cannot drive the worker lifecycle", func(t *testing.T) {
		rec := w.updateStatus(t, "in-progress", "", testutil.BuyerUser(w.buyerUser.ID))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
	})

	if a := w.reload(t); a.Status != models.AssignmentStatusAssigned {
		t.Fatalf("assignment mutated by forbidden update: %s", a.Status)
	}
}

func TestUpdateStatusConcurrentWritersAllLand(t *testing.T) {
	w := setup(t)

	// Three writers race the same assignment. Each revision conflict
	// implies another writer committed, so with three writers nobody
	// can lose more often than the retry budget allows: every request
	// must succeed and every history entry must survive.
	const writers = 3
	recs := make([]*httptest.ResponseRecorder, writers)
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			recs[i] = w.updateStatus(t, "in-progress", "", testutil.WorkerUser(w.workerUser.ID))
		}(i)
	}
	wg.Wait()

	for i, rec := range recs {
		if rec.Code != http.StatusOK {
			t.Fatalf("writer %d: got %d, body %s", i, rec.Code, rec.Body.String())
		}
	}
	a := w.reload(t)
	if len(a.StatusHistory) != writers {
		t.Fatalf("history length: got %d, want %d", len(a.StatusHistory), writers)
	}
	if a.Revision != writers {
		t.Fatalf("revision: got %d, want %d", a.Revision, writers)
	}
}

func TestUpdateStatusBumpsRevision(t *testing.T) {
	w := setup(t)

	before := w.reload(t)
	rec := w.updateStatus(t, "in-progress", "", testutil.WorkerUser(w.workerUser.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	after := w.reload(t)
	if after.Revision != before.Revision+1 {
		t.Fatalf("revision: got %d, want %d", after.Revision, before.Revision+1)
	}
}
