// internal/app/features/requests/list.go
package requests

import (
	"context"
	"errors"
	"net/http"

	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	requeststore "github.com/loomhub/loomhub/internal/app/store/requests"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HandleGetUserRequests returns the acting profile's sent and received
// requests (each joined with counterpart identity) plus its connected
// peers.
// GET /requests
func (h *Handler) HandleGetUserRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	// Exactly one of the two profiles exists per non-admin user.
	buyer, err := buyerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if buyer != nil {
		view, err := h.buyerInbox(ctx, buyer)
		if err != nil {
			httpjson.Fail(w, h.Log, err)
			return
		}
		httpjson.OK(w, http.StatusOK, view)
		return
	}

	worker, err := workerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, h.Log, apperr.NotFound("no buyer or worker profile for this user"))
			return
		}
		httpjson.Fail(w, h.Log, err)
		return
	}
	view, err := h.workerInbox(ctx, worker)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, view)
}

func (h *Handler) buyerInbox(ctx context.Context, buyer *models.Buyer) (*inboxView, error) {
	sent, err := h.requestViews(ctx, buyer.SentRequests, true)
	if err != nil {
		return nil, err
	}
	peers, err := workerstore.New(h.DB).GetByIDs(ctx, buyer.ConnectedWorkers)
	if err != nil {
		return nil, err
	}
	connections := make([]PartyView, 0, len(peers))
	for i := range peers {
		connections = append(connections, workerParty(&peers[i]))
	}
	return &inboxView{
		UserType:         models.RoleBuyer,
		SentRequests:     sent,
		ReceivedRequests: []RequestView{},
		Connections:      connections,
	}, nil
}

func (h *Handler) workerInbox(ctx context.Context, worker *models.Worker) (*inboxView, error) {
	received, err := h.requestViews(ctx, worker.ReceivedRequests, false)
	if err != nil {
		return nil, err
	}
	peers, err := buyerstore.New(h.DB).GetByIDs(ctx, worker.ConnectedBuyers)
	if err != nil {
		return nil, err
	}
	connections := make([]PartyView, 0, len(peers))
	for i := range peers {
		connections = append(connections, buyerParty(&peers[i]))
	}
	return &inboxView{
		UserType:         models.RoleWorker,
		SentRequests:     []RequestView{},
		ReceivedRequests: received,
		Connections:      connections,
	}, nil
}

// requestViews loads the referenced requests in list order and joins
// each with its counterpart's display identity. counterpartIsWorker
// selects which side of the request to resolve.
func (h *Handler) requestViews(ctx context.Context, ids []primitive.ObjectID, counterpartIsWorker bool) ([]RequestView, error) {
	reqs, err := requeststore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	counterpartIDs := make([]primitive.ObjectID, 0, len(reqs))
	for _, req := range reqs {
		if counterpartIsWorker {
			counterpartIDs = append(counterpartIDs, req.ReceiverID)
		} else {
			counterpartIDs = append(counterpartIDs, req.SenderID)
		}
	}

	parties := make(map[primitive.ObjectID]PartyView, len(counterpartIDs))
	if counterpartIsWorker {
		workers, err := workerstore.New(h.DB).GetByIDs(ctx, counterpartIDs)
		if err != nil {
			return nil, err
		}
		for i := range workers {
			parties[workers[i].ID] = workerParty(&workers[i])
		}
	} else {
		buyers, err := buyerstore.New(h.DB).GetByIDs(ctx, counterpartIDs)
		if err != nil {
			return nil, err
		}
		for i := range buyers {
			parties[buyers[i].ID] = buyerParty(&buyers[i])
		}
	}

	views := make([]RequestView, 0, len(reqs))
	for _, req := range reqs {
		cid := req.SenderID
		if counterpartIsWorker {
			cid = req.ReceiverID
		}
		var counterpart *PartyView
		if p, ok := parties[cid]; ok {
			counterpart = &p
		}
		views = append(views, projectRequest(req, counterpart))
	}
	return views, nil
}
