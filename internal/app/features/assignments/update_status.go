// internal/app/features/assignments/update_status.go
package assignments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	assignmentstore "github.com/loomhub/loomhub/internal/app/store/assignments"
	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/sanitize"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxStatusRetries bounds how many times a status update is retried
// after losing the revision race to a concurrent writer.
const maxStatusRetries = 3

type updateStatusInput struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// HandleUpdateStatus moves an assignment to a new status. Only the
// assigned worker's linked user may do this, the transition table is
// permissive, and only transitions out of a terminal state are
// rejected.
// PUT /assignments/update-status/{assignmentID}
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in updateStatusInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	newStatus := models.AssignmentStatus(in.Status)
	if !models.IsValidAssignmentStatus(newStatus) {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid assignment status %q", in.Status))
		return
	}
	assignmentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "assignmentID"))
	if err != nil {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid assignment id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	updated, err := h.applyTransition(ctx, assignmentID, newStatus, userID, sanitize.Text(in.Notes))
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	h.notifyBuyer(ctx, updated)
	httpjson.OK(w, http.StatusOK, map[string]any{"assignment": updated})
}

// applyTransition runs the read-check-write cycle, retrying when a
// concurrent writer bumps the revision between the read and the
// conditional write. Each retry re-reads and re-checks the transition
// against the fresh state.
func (h *Handler) applyTransition(ctx context.Context, assignmentID primitive.ObjectID, newStatus models.AssignmentStatus, userID primitive.ObjectID, notes string) (*models.FabricAssignment, error) {
	store := assignmentstore.New(h.DB)

	for attempt := 0; ; attempt++ {
		assignment, err := store.GetByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.NotFound("assignment not found")
			}
			return nil, err
		}

		if err := h.authorizeWorker(ctx, userID, assignment); err != nil {
			return nil, err
		}
		if !assignment.Status.CanTransition(newStatus) {
			return nil, apperr.InvalidState("cannot change status of a %s assignment", assignment.Status)
		}

		entry := models.StatusChange{
			PreviousStatus: assignment.Status,
			NewStatus:      newStatus,
			ChangedBy:      userID,
			ChangedAt:      time.Now().UTC(),
			Notes:          notes,
		}
		err = store.ApplyStatus(ctx, assignmentID, assignment.Revision, newStatus, entry)
		if err == nil {
			return store.GetByID(ctx, assignmentID)
		}
		if !errors.Is(err, assignmentstore.ErrRevisionConflict) {
			return nil, err
		}
		if attempt+1 >= maxStatusRetries {
			return nil, apperr.Conflict("assignment was modified concurrently, please retry")
		}
		h.Log.Debug("status update lost revision race, retrying",
			zap.String("assignment_id", assignmentID.Hex()),
			zap.Int("attempt", attempt+1))
	}
}

// authorizeWorker requires the acting user to be the linked user of
// the assignment's worker. Buyers and unrelated workers get Forbidden.
func (h *Handler) authorizeWorker(ctx context.Context, userID primitive.ObjectID, a *models.FabricAssignment) error {
	worker, err := workerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.Forbidden("only the assigned worker may update this assignment")
		}
		return err
	}
	if worker.ID != a.WorkerID {
		return apperr.Forbidden("only the assigned worker may update this assignment")
	}
	return nil
}

// notifyBuyer records the status change for the fabric's buyer. The
// transition itself is already durable; a delivery failure is logged,
// not surfaced as an operation failure.
func (h *Handler) notifyBuyer(ctx context.Context, a *models.FabricAssignment) {
	buyer, err := buyerstore.New(h.DB).GetByID(ctx, a.BuyerID)
	if err != nil {
		h.Log.Error("status updated but buyer lookup failed",
			zap.String("assignment_id", a.ID.Hex()), zap.Error(err))
		return
	}
	msg := fmt.Sprintf("Assignment status changed to %s", a.Status)
	if _, err := h.Notifier.Create(ctx, buyer.UserID, models.NotificationTypeStatusUpdate, msg, map[string]any{
		"assignment_id": a.ID.Hex(),
		"fabric_id":     a.FabricID.Hex(),
		"status":        string(a.Status),
	}); err != nil {
		h.Log.Error("status updated but notification failed",
			zap.String("assignment_id", a.ID.Hex()), zap.Error(err))
	}
}
