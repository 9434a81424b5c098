// internal/app/features/requests/available.go
package requests

import (
	"context"
	"net/http"

	requeststore "github.com/loomhub/loomhub/internal/app/store/requests"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/paging"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
)

// HandleAvailableWorkers is the discovery feed: workers the acting
// buyer has never sent a request to, paginated. Not a state
// transition.
// GET /requests/available/workers?page&limit
func (h *Handler) HandleAvailableWorkers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	buyer, err := h.currentBuyer(ctx, r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	contacted, err := requeststore.New(h.DB).ReceiverIDsBySender(ctx, buyer.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	page := paging.Parse(r)
	workers, total, err := workerstore.New(h.DB).ListExcluding(ctx, contacted, page.Skip(), int64(page.Limit))
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	views := make([]PartyView, 0, len(workers))
	for i := range workers {
		views = append(views, workerParty(&workers[i]))
	}
	httpjson.OK(w, http.StatusOK, map[string]any{
		"workers":     views,
		"page":        page.Number,
		"limit":       page.Limit,
		"total":       total,
		"total_pages": page.TotalPages(total),
	})
}

// HandleConnections returns the acting profile's connected peers, each
// with the request history between the pair.
// GET /requests/connections
func (h *Handler) HandleConnections(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	inbox, views, err := h.connectionsFor(ctx, userID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, map[string]any{
		"user_type":   inbox,
		"connections": views,
	})
}
