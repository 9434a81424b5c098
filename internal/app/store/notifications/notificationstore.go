// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit is how many notifications a poll returns, newest first.
const ListLimit = 50

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Insert is the single write path for notifications. All domain
// actions and the scheduled reminder sweep go through it; nothing else
// constructs notification documents.
func (s *Store) Insert(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now().UTC()
	n.Read = false
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, n)
	return err
}

// ListByUser returns the user's most recent notifications, newest
// first, capped at ListLimit.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flips one notification to read, scoped to the owner. A
// non-owner gets ErrNoDocuments just like a missing ID, so existence
// never leaks.
func (s *Store) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(
		ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllRead flips every unread notification for the user and returns
// how many were updated (zero means there was nothing unread).
func (s *Store) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(
		ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes one notification, scoped to the owner.
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteAll removes every notification owned by the user and returns
// the count.
func (s *Store) DeleteAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
