// internal/app/features/requests/send.go
package requests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	requeststore "github.com/loomhub/loomhub/internal/app/store/requests"
	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"github.com/loomhub/loomhub/internal/app/system/sanitize"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type sendRequestInput struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message,omitempty"`
}

// HandleSendRequest creates a pending connection request.
// POST /requests
func (h *Handler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	var in sendRequestInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if in.SenderID == "" || in.ReceiverID == "" {
		httpjson.Fail(w, h.Log, apperr.BadRequest("sender_id and receiver_id are required"))
		return
	}
	senderID, err := primitive.ObjectIDFromHex(in.SenderID)
	if err != nil {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid sender_id"))
		return
	}
	receiverID, err := primitive.ObjectIDFromHex(in.ReceiverID)
	if err != nil {
		httpjson.Fail(w, h.Log, apperr.BadRequest("invalid receiver_id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	buyer, worker, err := h.resolvePair(ctx, senderID, receiverID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	// Only the buyer behind the credential may send in its name.
	actingUserID, err := currentUserID(r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if buyer.UserID != actingUserID {
		httpjson.Fail(w, h.Log, apperr.Forbidden("cannot send a request on behalf of another buyer"))
		return
	}

	// A worker with no linked user could never see the notification;
	// that is corrupt data, not a silent skip.
	if worker.UserID == nil {
		httpjson.Fail(w, h.Log, apperr.InvalidState("worker profile has no linked user account"))
		return
	}

	reqStore := requeststore.New(h.DB)
	existing, err := reqStore.FindActive(ctx, buyer.ID, worker.ID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if existing != nil {
		if existing.Status == models.RequestStatusPending {
			httpjson.Fail(w, h.Log, apperr.Conflict("Request already sent and pending"))
		} else {
			httpjson.Fail(w, h.Log, apperr.Conflict("Already connected with this worker"))
		}
		return
	}

	request := &models.Request{
		SenderID:   buyer.ID,
		ReceiverID: worker.ID,
		Message:    sanitize.Text(in.Message),
	}
	if err := reqStore.Insert(ctx, request); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := buyerstore.New(h.DB).AppendSentRequest(ctx, buyer.ID, request.ID); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := workerstore.New(h.DB).AppendReceivedRequest(ctx, worker.ID, request.ID); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	// Durable state is written; persist the notification, then push.
	sender := buyerParty(buyer)
	payload := map[string]any{
		"request": projectRequest(*request, &sender),
		"buyer":   sender,
	}
	msg := fmt.Sprintf("New connection request from %s", buyer.Name)
	if _, err := h.Notifier.Send(ctx, *worker.UserID, models.NotificationTypeRequest, msg, map[string]any{
		"request_id": request.ID.Hex(),
		"buyer_id":   buyer.ID.Hex(),
	}, live.EventNewRequest, payload); err != nil {
		// The request itself is committed; surface the delivery
		// failure instead of pretending nothing happened.
		h.Log.Error("request created but notification failed",
			zap.String("request_id", request.ID.Hex()), zap.Error(err))
		httpjson.Fail(w, h.Log, err)
		return
	}

	receiver := workerParty(worker)
	httpjson.OK(w, http.StatusCreated, map[string]any{
		"request": projectRequest(*request, &receiver),
	})
}

// resolvePair loads the sender's buyer profile and the receiver's
// worker profile concurrently; the two reads have no data dependency.
func (h *Handler) resolvePair(ctx context.Context, senderID, receiverID primitive.ObjectID) (*models.Buyer, *models.Worker, error) {
	var (
		wg        sync.WaitGroup
		buyer     *models.Buyer
		worker    *models.Worker
		buyerErr  error
		workerErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		buyer, buyerErr = buyerstore.New(h.DB).GetByID(ctx, senderID)
	}()
	go func() {
		defer wg.Done()
		worker, workerErr = workerstore.New(h.DB).GetByID(ctx, receiverID)
	}()
	wg.Wait()

	if buyerErr != nil {
		if errors.Is(buyerErr, mongo.ErrNoDocuments) {
			return nil, nil, apperr.NotFound("sender buyer profile not found")
		}
		return nil, nil, buyerErr
	}
	if workerErr != nil {
		if errors.Is(workerErr, mongo.ErrNoDocuments) {
			return nil, nil, apperr.NotFound("receiver worker profile not found")
		}
		return nil, nil, workerErr
	}
	return buyer, worker, nil
}
