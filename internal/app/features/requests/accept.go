// internal/app/features/requests/accept.go
package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	requeststore "github.com/loomhub/loomhub/internal/app/store/requests"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleAcceptRequest moves a pending request to accepted and links the
// two profiles.
// PUT /requests/{requestID}/accept
func (h *Handler) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	worker, request, buyer, err := h.loadForDecision(ctx, r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	if err := requeststore.New(h.DB).SetStatus(ctx, request.ID, models.RequestStatusAccepted); err != nil {
		if errors.Is(err, requeststore.ErrNotPending) {
			httpjson.Fail(w, h.Log, apperr.InvalidState("request is no longer pending"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	request.Status = models.RequestStatusAccepted

	// Connection graph grows symmetrically; both adds are idempotent
	// set inserts, so a retry after a partial failure converges.
	if err := buyerstore.New(h.DB).AddConnectedWorker(ctx, buyer.ID, worker.ID); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := workerstore.New(h.DB).AddConnectedBuyer(ctx, worker.ID, buyer.ID); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	workerView := workerParty(worker)
	buyerView := buyerParty(buyer)

	// Buyer's room gets the worker's identity; the worker's own room
	// gets the buyer's. The notification goes to the buyer only.
	msg := fmt.Sprintf("Your request was accepted by %s", worker.Name)
	if _, err := h.Notifier.Send(ctx, buyer.UserID, models.NotificationTypeStatusUpdate, msg, map[string]any{
		"request_id": request.ID.Hex(),
		"worker_id":  worker.ID.Hex(),
	}, live.EventRequestStatusUpdate, map[string]any{
		"request": projectRequest(*request, &workerView),
		"worker":  workerView,
	}); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if worker.UserID != nil {
		h.Notifier.Emit(*worker.UserID, live.EventRequestStatusUpdate, map[string]any{
			"request": projectRequest(*request, &buyerView),
			"buyer":   buyerView,
		})
	}

	httpjson.OK(w, http.StatusOK, map[string]any{
		"request": projectRequest(*request, &buyerView),
		"buyer":   buyerView,
		"worker":  workerView,
	})
}

// loadForDecision resolves the acting worker, the request, and its
// sending buyer, applying the shared accept/reject preconditions.
func (h *Handler) loadForDecision(ctx context.Context, r *http.Request) (*models.Worker, *models.Request, *models.Buyer, error) {
	worker, err := h.currentWorker(ctx, r)
	if err != nil {
		return nil, nil, nil, err
	}

	requestID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		return nil, nil, nil, apperr.BadRequest("invalid request id")
	}

	request, err := requeststore.New(h.DB).GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, nil, apperr.NotFound("request not found")
		}
		return nil, nil, nil, err
	}
	if request.ReceiverID != worker.ID {
		return nil, nil, nil, apperr.Forbidden("this request was not sent to you")
	}
	if request.Status != models.RequestStatusPending {
		return nil, nil, nil, apperr.InvalidState("request is already %s", request.Status)
	}

	buyer, err := buyerstore.New(h.DB).GetByID(ctx, request.SenderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, nil, apperr.NotFound("sender buyer profile not found")
		}
		return nil, nil, nil, err
	}
	return worker, request, buyer, nil
}
