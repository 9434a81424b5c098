// internal/domain/models/buyer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Buyer is the buyer-side profile aggregate. It is owned 1:1 by its
// User and tracks the buyer's fabrics, outbound connection requests,
// and the set of workers connected through accepted requests.
//
// SentRequests is append-only. ConnectedWorkers grows on acceptance
// and is never auto-shrunk.
type Buyer struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name    string             `bson:"name" json:"name"`
	Contact string             `bson:"contact,omitempty" json:"contact,omitempty"`

	Fabrics          []primitive.ObjectID `bson:"fabrics" json:"fabrics"`
	AssignedFabrics  []primitive.ObjectID `bson:"assigned_fabrics" json:"assigned_fabrics"`
	SentRequests     []primitive.ObjectID `bson:"sent_requests" json:"sent_requests"`
	ConnectedWorkers []primitive.ObjectID `bson:"connected_workers" json:"connected_workers"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
