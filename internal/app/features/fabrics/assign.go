// internal/app/features/fabrics/assign.go
package fabrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	assignmentstore "github.com/loomhub/loomhub/internal/app/store/assignments"
	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	fabricstore "github.com/loomhub/loomhub/internal/app/store/fabrics"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type assignInput struct {
	WorkerID string `json:"worker_id"`
}

// HandleAssignWorker assigns a worker to a non-draft fabric, or moves
// the fabric's existing assignment to a different worker. Reassignment
// mutates the assignment in place and keeps its status history.
// POST /fabrics/{fabricID}/assign
func (h *Handler) HandleAssignWorker(w http.ResponseWriter, r *http.Request) {
	fabricID, err := pathObjectID(chi.URLParam(r, "fabricID"), "fabric id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	var in assignInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	workerID, err := pathObjectID(in.WorkerID, "worker_id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	buyer, err := h.currentBuyer(ctx, r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	fabric, err := fabricstore.New(h.DB).GetByID(ctx, fabricID)
	if err != nil {
		httpjson.Fail(w, h.Log, notFoundOr(err))
		return
	}
	if fabric.BuyerID != buyer.ID {
		httpjson.Fail(w, h.Log, apperr.Forbidden("fabric belongs to another buyer"))
		return
	}
	if fabric.Status == models.FabricStatusDraft {
		httpjson.Fail(w, h.Log, apperr.InvalidState("cannot assign a worker to a draft fabric"))
		return
	}

	worker, err := workerstore.New(h.DB).GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, h.Log, apperr.NotFound("worker not found"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	if worker.UserID == nil {
		httpjson.Fail(w, h.Log, apperr.InvalidState("worker profile has no linked user account"))
		return
	}

	store := assignmentstore.New(h.DB)
	assignment, err := store.GetByFabric(ctx, fabric.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	switch {
	case assignment == nil:
		assignment = &models.FabricAssignment{
			FabricID: fabric.ID,
			WorkerID: worker.ID,
			BuyerID:  buyer.ID,
		}
		if err := store.Insert(ctx, assignment); err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		if err := fabricstore.New(h.DB).AppendAssignment(ctx, fabric.ID, assignment.ID); err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		if err := buyerstore.New(h.DB).AppendAssignedFabric(ctx, buyer.ID, assignment.ID); err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
	case assignment.WorkerID == worker.ID:
		httpjson.Fail(w, h.Log, apperr.Conflict("fabric is already assigned to this worker"))
		return
	default:
		if err := store.Reassign(ctx, assignment.ID, worker.ID); err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		assignment, err = store.GetByID(ctx, assignment.ID)
		if err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
	}

	// The assignment is durable; persist the notification, then push.
	buyerView := buyerParty(buyer)
	msg := fmt.Sprintf("%s assigned you the fabric %q", buyer.Name, fabric.Name)
	if _, err := h.Notifier.Send(ctx, *worker.UserID, models.NotificationTypeStatusUpdate, msg, map[string]any{
		"fabric_id":     fabric.ID.Hex(),
		"assignment_id": assignment.ID.Hex(),
		"buyer_id":      buyer.ID.Hex(),
	}, live.EventNewFabricAssignment, map[string]any{
		"assignment": assignment,
		"fabric":     fabric,
		"buyer":      buyerView,
	}); err != nil {
		h.Log.Error("assignment created but notification failed",
			zap.String("assignment_id", assignment.ID.Hex()), zap.Error(err))
		httpjson.Fail(w, h.Log, err)
		return
	}

	httpjson.OK(w, http.StatusOK, map[string]any{"assignment": assignment})
}
