// internal/app/features/requests/reject.go
package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	requeststore "github.com/loomhub/loomhub/internal/app/store/requests"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
)

// HandleRejectRequest moves a pending request to rejected. No
// connection-set mutation happens; only the buyer is notified, with
// the worker's identity.
// PUT /requests/{requestID}/reject
func (h *Handler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	worker, request, buyer, err := h.loadForDecision(ctx, r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	if err := requeststore.New(h.DB).SetStatus(ctx, request.ID, models.RequestStatusRejected); err != nil {
		if errors.Is(err, requeststore.ErrNotPending) {
			httpjson.Fail(w, h.Log, apperr.InvalidState("request is no longer pending"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	request.Status = models.RequestStatusRejected

	workerView := workerParty(worker)
	msg := fmt.Sprintf("Your request was rejected by %s", worker.Name)
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

	httpjson.OK(w, http.StatusOK, map[string]any{
		"request": projectRequest(*request, &workerView),
	})
}
