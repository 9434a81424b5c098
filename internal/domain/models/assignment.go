// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus is the lifecycle state of a fabric assignment.
type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusInProgress AssignmentStatus = "in-progress"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusCancelled  AssignmentStatus = "cancelled"
)

// IsValidAssignmentStatus reports whether s is one of the four
// enumerated assignment statuses.
func IsValidAssignmentStatus(s AssignmentStatus) bool {
	switch s {
	case AssignmentStatusAssigned, AssignmentStatusInProgress,
		AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentStatusCompleted || s == AssignmentStatusCancelled
}

// CanTransition reports whether an assignment may move from one status
// to another. The table is permissive: a direct assigned→completed jump
// is allowed and cancellation is reachable from any non-terminal state.
// Only transitions *from* a terminal state are rejected.
func (s AssignmentStatus) CanTransition(to AssignmentStatus) bool {
	if !IsValidAssignmentStatus(to) {
		return false
	}
	return !s.IsTerminal()
}

// StatusChange is one entry in an assignment's status-history ledger.
type StatusChange struct {
	PreviousStatus AssignmentStatus   `bson:"previous_status" json:"previous_status"`
	NewStatus      AssignmentStatus   `bson:"new_status" json:"new_status"`
	ChangedBy      primitive.ObjectID `bson:"changed_by" json:"changed_by"` // user ID
	ChangedAt      time.Time          `bson:"changed_at" json:"changed_at"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// FabricAssignment binds one Fabric to one Worker for one Buyer.
//
// Reassignment to a different worker updates WorkerID on this same
// document, resets Status to assigned, stamps ReassignedAt, and leaves
// StatusHistory intact. Revision is bumped on every status update so
// concurrent read-modify-write cycles cannot silently drop a history
// entry (conditional update on the expected revision).
type FabricAssignment struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FabricID primitive.ObjectID `bson:"fabric_id" json:"fabric_id"`
	WorkerID primitive.ObjectID `bson:"worker_id" json:"worker_id"`
	BuyerID  primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	Status   AssignmentStatus   `bson:"status" json:"status"`

	StatusHistory []StatusChange `bson:"status_history" json:"status_history"`
	Revision      int64          `bson:"revision" json:"-"`

	// PaymentRemindedAt marks that the payment-due sweep already
	// notified the buyer; it keeps the daily job from re-sending.
	PaymentRemindedAt *time.Time `bson:"payment_reminded_at,omitempty" json:"-"`

	ReassignedAt *time.Time `bson:"reassigned_at,omitempty" json:"reassigned_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}
