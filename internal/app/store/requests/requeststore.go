// internal/app/store/requests/requeststore.go
package requeststore

import (
	"context"
	"errors"
	"time"

	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotPending is returned by SetStatus when the request left the
// pending state between the caller's read and the write.
var ErrNotPending = errors.New("request is no longer pending")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("requests")}
}

// Insert persists a new pending request.
func (s *Store) Insert(ctx context.Context, r *models.Request) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Status = models.RequestStatusPending
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, r)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var r models.Request
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FindActive returns the pending or accepted request between the pair,
// or nil if none exists. This is the pre-insert existence check that
// enforces the at-most-one-active invariant.
func (s *Store) FindActive(ctx context.Context, senderID, receiverID primitive.ObjectID) (*models.Request, error) {
	var r models.Request
	err := s.c.FindOne(ctx, bson.M{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"status":      bson.M{"$in": []models.RequestStatus{models.RequestStatusPending, models.RequestStatusAccepted}},
	}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// SetStatus moves a pending request to a terminal status. The filter
// includes status=pending so a concurrent accept/reject cannot apply a
// second transition; the loser gets ErrNotPending.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	res, err := s.c.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.RequestStatusPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}

// GetByIDs returns the requests for the given IDs in the order the IDs
// appear (profile request lists are ordered and append-only).
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Request, error) {
	if len(ids) == 0 {
		return []models.Request{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var fetched []models.Request
	if err := cur.All(ctx, &fetched); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Request, len(fetched))
	for _, r := range fetched {
		byID[r.ID] = r
	}
	out := make([]models.Request, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// ReceiverIDsBySender returns the distinct worker profile IDs the buyer
// has ever sent a request to, regardless of status. Used to exclude
// already-contacted workers from the discovery feed.
func (s *Store) ReceiverIDsBySender(ctx context.Context, senderID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "receiver_id", bson.M{"sender_id": senderID})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			out = append(out, id)
		}
	}
	return out, nil
}
