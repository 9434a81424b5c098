// internal/app/features/fabrics/get.go
package fabrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	assignmentstore "github.com/loomhub/loomhub/internal/app/store/assignments"
	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	fabricstore "github.com/loomhub/loomhub/internal/app/store/fabrics"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleListFabrics returns the acting buyer's fabrics, newest first.
// GET /fabrics
func (h *Handler) HandleListFabrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	buyer, err := h.currentBuyer(ctx, r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	list, err := fabricstore.New(h.DB).ListByBuyer(ctx, buyer.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, map[string]any{"fabrics": list})
}

// HandleGetFabric assembles the fabric detail view: buyer identity,
// every assignment with its worker and resolved status history, and
// the change ledger with actors resolved to names. Visible to the
// owning buyer and to workers assigned to the fabric.
// GET /fabrics/{fabricID}
func (h *Handler) HandleGetFabric(w http.ResponseWriter, r *http.Request) {
	fabricID, err := pathObjectID(chi.URLParam(r, "fabricID"), "fabric id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	fabric, err := fabricstore.New(h.DB).GetByID(ctx, fabricID)
	if err != nil {
		httpjson.Fail(w, h.Log, notFoundOr(err))
		return
	}
	buyer, err := buyerstore.New(h.DB).GetByID(ctx, fabric.BuyerID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	assignments, err := assignmentstore.New(h.DB).ListByFabricIDs(ctx, []primitive.ObjectID{fabric.ID})
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	workerIDs := make([]primitive.ObjectID, 0, len(assignments))
	for i := range assignments {
		workerIDs = append(workerIDs, assignments[i].WorkerID)
	}
	workers, err := workerstore.New(h.DB).GetByIDs(ctx, workerIDs)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	workerByID := make(map[primitive.ObjectID]*models.Worker, len(workers))
	for i := range workers {
		workerByID[workers[i].ID] = &workers[i]
	}

	viewerWorker, err := h.authorizeDetail(ctx, userID, buyer, assignments)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	var actorIDs []primitive.ObjectID
	for _, fc := range fabric.ChangeHistory {
		actorIDs = append(actorIDs, fc.ChangedBy)
	}
	for i := range assignments {
		for _, sc := range assignments[i].StatusHistory {
			actorIDs = append(actorIDs, sc.ChangedBy)
		}
	}
	names, err := resolveNames(ctx, h.DB, actorIDs)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	views := make([]AssignmentView, 0, len(assignments))
	for i := range assignments {
		views = append(views, projectAssignment(&assignments[i], workerByID[assignments[i].WorkerID], names))
	}

	detail := fabricDetail{
		Fabric:        fabric,
		Buyer:         buyerParty(buyer),
		Assignments:   views,
		ChangeHistory: projectChanges(fabric.ChangeHistory, names),
	}
	detail.RelevantAssignment = relevantAssignment(assignments, views, viewerWorker)

	httpjson.OK(w, http.StatusOK, map[string]any{"fabric_detail": detail})
}

// authorizeDetail admits the owning buyer or a worker holding an
// assignment on the fabric. It returns the viewer's worker profile
// when they are a worker, so the caller can pick the relevant
// assignment.
func (h *Handler) authorizeDetail(ctx context.Context, userID primitive.ObjectID, buyer *models.Buyer, assignments []models.FabricAssignment) (*models.Worker, error) {
	if buyer.UserID == userID {
		return nil, nil
	}
	worker, err := workerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Forbidden("no access to this fabric")
		}
		return nil, err
	}
	for i := range assignments {
		if assignments[i].WorkerID == worker.ID {
			return worker, nil
		}
	}
	return nil, apperr.Forbidden("no access to this fabric")
}

// relevantAssignment is the viewer's own assignment for a worker, and
// the first assignment otherwise.
func relevantAssignment(assignments []models.FabricAssignment, views []AssignmentView, viewer *models.Worker) *AssignmentView {
	if len(views) == 0 {
		return nil
	}
	if viewer != nil {
		for i := range assignments {
			if assignments[i].WorkerID == viewer.ID {
				return &views[i]
			}
		}
	}
	return &views[0]
}
