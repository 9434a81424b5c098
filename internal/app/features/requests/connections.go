// internal/app/features/requests/connections.go
package requests

import (
	"context"
	"errors"

	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// connectionsFor resolves the acting profile and assembles one
// connectionView per connected peer, carrying the request history
// between the two parties.
func (h *Handler) connectionsFor(ctx context.Context, userID primitive.ObjectID) (string, []connectionView, error) {
	buyer, err := buyerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil, err
	}
	if buyer != nil {
		views, err := h.buyerConnections(ctx, buyer)
		return models.RoleBuyer, views, err
	}

	worker, err := workerstore.New(h.DB).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, apperr.NotFound("no buyer or worker profile for this user")
		}
		return "", nil, err
	}
	views, err := h.workerConnections(ctx, worker)
	return models.RoleWorker, views, err
}

func (h *Handler) buyerConnections(ctx context.Context, buyer *models.Buyer) ([]connectionView, error) {
	peers, err := workerstore.New(h.DB).GetByIDs(ctx, buyer.ConnectedWorkers)
	if err != nil {
		return nil, err
	}
	sent, err := h.requestViews(ctx, buyer.SentRequests, true)
	if err != nil {
		return nil, err
	}

	views := make([]connectionView, 0, len(peers))
	for i := range peers {
		peer := workerParty(&peers[i])
		views = append(views, connectionView{
			Peer:     peer,
			Requests: requestsWithCounterpart(sent, peer.ID),
		})
	}
	return views, nil
}

func (h *Handler) workerConnections(ctx context.Context, worker *models.Worker) ([]connectionView, error) {
	peers, err := buyerstore.New(h.DB).GetByIDs(ctx, worker.ConnectedBuyers)
	if err != nil {
		return nil, err
	}
	received, err := h.requestViews(ctx, worker.ReceivedRequests, false)
	if err != nil {
		return nil, err
	}

	views := make([]connectionView, 0, len(peers))
	for i := range peers {
		peer := buyerParty(&peers[i])
		views = append(views, connectionView{
			Peer:     peer,
			Requests: requestsWithCounterpart(received, peer.ID),
		})
	}
	return views, nil
}

// requestsWithCounterpart filters a joined request list down to the
// entries whose counterpart matches the given peer.
func requestsWithCounterpart(views []RequestView, peerID string) []RequestView {
	out := []RequestView{}
	for _, v := range views {
		if v.Counterpart != nil && v.Counterpart.ID == peerID {
			out = append(out, v)
		}
	}
	return out
}
