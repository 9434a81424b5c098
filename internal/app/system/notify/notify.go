// internal/app/system/notify/notify.go
// Package notify pairs the durable notification write with the
// best-effort live push, in that order. Domain handlers must not emit
// a live event for a mutation whose notification failed to persist:
// the notification is the fallback a client can poll for, the live
// event is not.
package notify

import (
	"context"

	"github.com/loomhub/loomhub/internal/app/store/notifications"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/live"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier is the single writer for notifications plus the emitter for
// their live counterparts.
type Notifier struct {
	store *notificationstore.Store
	bc    live.Broadcaster
	log   *zap.Logger
}

func New(store *notificationstore.Store, bc live.Broadcaster, logger *zap.Logger) *Notifier {
	return &Notifier{store: store, bc: bc, log: logger}
}

// Create validates and persists a notification without a live event.
// External callers (the payment-reminder sweep) use this path.
func (n *Notifier) Create(ctx context.Context, userID primitive.ObjectID, typ models.NotificationType, message string, data map[string]any) (*models.Notification, error) {
	if userID.IsZero() {
		return nil, apperr.BadRequest("notification recipient is required")
	}
	if typ == "" {
		return nil, apperr.BadRequest("notification type is required")
	}
	if message == "" {
		return nil, apperr.BadRequest("notification message is required")
	}
	doc := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
		Data:    data,
	}
	if err := n.store.Insert(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Send persists the notification and, only after the insert succeeds,
// pushes the live event to the recipient's room.
func (n *Notifier) Send(ctx context.Context, userID primitive.ObjectID, typ models.NotificationType, message string, data map[string]any, event string, payload any) (*models.Notification, error) {
	doc, err := n.Create(ctx, userID, typ, message, data)
	if err != nil {
		return nil, err
	}
	if event != "" {
		n.bc.EmitToUser(userID.Hex(), event, payload)
	}
	return doc, nil
}

// Emit pushes a live event without persisting anything. Used for the
// secondary room of a transition that already wrote its notification
// (e.g. the worker's own confirmation on accept).
func (n *Notifier) Emit(userID primitive.ObjectID, event string, payload any) {
	n.bc.EmitToUser(userID.Hex(), event, payload)
}
