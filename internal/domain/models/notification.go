// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies what a notification is about.
type NotificationType string

const (
	NotificationTypeRequest         NotificationType = "request"
	NotificationTypeStatusUpdate    NotificationType = "status_update"
	NotificationTypePaymentReceived NotificationType = "payment_received"
	NotificationTypePaymentDue      NotificationType = "payment_due"
	NotificationTypeInvoiceCreated  NotificationType = "invoice_created"
	NotificationTypeInvoicePaid     NotificationType = "invoice_paid"
	NotificationTypeReminder        NotificationType = "reminder"
	NotificationTypeRefund          NotificationType = "refund"
	NotificationTypeSystem          NotificationType = "system"
)

// Notification is a persisted, per-user notification row. Notifications
// are created server-side as a side effect of domain actions and are
// the durable fallback for the best-effort live channel. Only the
// owning user may mark them read or delete them.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type    NotificationType   `bson:"type" json:"type"`
	Message string             `bson:"message" json:"message"`
	Data    map[string]any     `bson:"data,omitempty" json:"data,omitempty"`
	Read    bool               `bson:"read" json:"read"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
