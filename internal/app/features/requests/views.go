// internal/app/features/requests/views.go
package requests

import (
	"time"

	"github.com/loomhub/loomhub/internal/domain/models"
)

// PartyView is the denormalized identity of a buyer or worker included
// in responses and live payloads so clients can render without a
// follow-up fetch.
type PartyView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// RequestView is one request joined with its counterpart's identity.
// The counterpart is the worker for a buyer's sent list and the buyer
// for a worker's received list.
type RequestView struct {
	ID          string               `json:"id"`
	Message     string               `json:"message,omitempty"`
	Status      models.RequestStatus `json:"status"`
	Counterpart *PartyView           `json:"counterpart,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// inboxView is the response of GET /requests.
type inboxView struct {
	UserType         string        `json:"user_type"`
	SentRequests     []RequestView `json:"sent_requests"`
	ReceivedRequests []RequestView `json:"received_requests"`
	Connections      []PartyView   `json:"connections"`
}

// connectionView pairs one connected peer with the request history
// between the two parties.
type connectionView struct {
	Peer     PartyView     `json:"peer"`
	Requests []RequestView `json:"requests"`
}

func buyerParty(b *models.Buyer) PartyView {
	return PartyView{ID: b.ID.Hex(), Name: b.Name, Contact: b.Contact}
}

func workerParty(w *models.Worker) PartyView {
	return PartyView{ID: w.ID.Hex(), Name: w.Name, Contact: w.Contact}
}

// projectRequest builds a RequestView without mutating the loaded
// entities.
func projectRequest(r models.Request, counterpart *PartyView) RequestView {
	return RequestView{
		ID:          r.ID.Hex(),
		Message:     r.Message,
		Status:      r.Status,
		Counterpart: counterpart,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
