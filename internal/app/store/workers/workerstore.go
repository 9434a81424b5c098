// internal/app/store/workers/workerstore.go
package workerstore

import (
	"context"
	"time"

	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("workers")}
}

func (s *Store) Insert(ctx context.Context, w *models.Worker) error {
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	if w.ReceivedRequests == nil {
		w.ReceivedRequests = []primitive.ObjectID{}
	}
	if w.ConnectedBuyers == nil {
		w.ConnectedBuyers = []primitive.ObjectID{}
	}
	_, err := s.c.InsertOne(ctx, w)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Worker, error) {
	var w models.Worker
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Worker, error) {
	var w models.Worker
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Worker, error) {
	if len(ids) == 0 {
		return []models.Worker{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var out []models.Worker
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendReceivedRequest appends a request ID to the worker's ordered
// received-requests list.
func (s *Store) AppendReceivedRequest(ctx context.Context, workerID, requestID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": workerID}, bson.M{
		"$push": bson.M{"received_requests": requestID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddConnectedBuyer adds the buyer to the worker's connected set
// (idempotent).
func (s *Store) AddConnectedBuyer(ctx context.Context, workerID, buyerID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": workerID}, bson.M{
		"$addToSet": bson.M{"connected_buyers": buyerID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListExcluding returns a page of workers whose ID is not in exclude,
// newest first, plus the total count of such workers. Used by the
// available-workers discovery feed.
func (s *Store) ListExcluding(ctx context.Context, exclude []primitive.ObjectID, skip, limit int64) ([]models.Worker, int64, error) {
	filter := bson.M{}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []models.Worker
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
