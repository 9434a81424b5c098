// internal/domain/models/worker.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Worker is the worker-side profile aggregate, owned 1:1 by its User.
//
// UserID is a pointer because legacy imports can leave a Worker without
// a linked user. Such a worker cannot receive notifications, so
// operations that need to notify treat a nil UserID as a data-integrity
// error rather than silently skipping delivery.
type Worker struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID  *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Name    string              `bson:"name" json:"name"`
	Contact string              `bson:"contact,omitempty" json:"contact,omitempty"`

	ReceivedRequests []primitive.ObjectID `bson:"received_requests" json:"received_requests"`
	ConnectedBuyers  []primitive.ObjectID `bson:"connected_buyers" json:"connected_buyers"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
