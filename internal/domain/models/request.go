// internal/domain/models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a connection request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transitions.
// Requests are created pending and move exactly once, to accepted or
// rejected, by the receiving worker.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusAccepted || s == RequestStatusRejected
}

// Request is a single buyer-to-worker outreach. The Request document is
// the source of truth for status; both profiles only reference it by ID.
//
// At most one request with status pending or accepted may exist for a
// given (sender, receiver) pair. The check happens before insert in the
// store, not as a database constraint.
type Request struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   primitive.ObjectID `bson:"sender_id" json:"sender_id"`     // Buyer profile
	ReceiverID primitive.ObjectID `bson:"receiver_id" json:"receiver_id"` // Worker profile
	Message    string             `bson:"message,omitempty" json:"message,omitempty"`
	Status     RequestStatus      `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
