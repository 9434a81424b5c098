// internal/app/store/buyers/buyerstore.go
package buyerstore

import (
	"context"
	"time"

	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("buyers")}
}

// Insert persists a new buyer profile with empty list fields so later
// $push/$addToSet updates never hit a null array.
func (s *Store) Insert(ctx context.Context, b *models.Buyer) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Fabrics == nil {
		b.Fabrics = []primitive.ObjectID{}
	}
	if b.AssignedFabrics == nil {
		b.AssignedFabrics = []primitive.ObjectID{}
	}
	if b.SentRequests == nil {
		b.SentRequests = []primitive.ObjectID{}
	}
	if b.ConnectedWorkers == nil {
		b.ConnectedWorkers = []primitive.ObjectID{}
	}
	_, err := s.c.InsertOne(ctx, b)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Buyer, error) {
	var b models.Buyer
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Buyer, error) {
	var b models.Buyer
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Buyer, error) {
	if len(ids) == 0 {
		return []models.Buyer{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var out []models.Buyer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendSentRequest appends a request ID to the buyer's ordered
// sent-requests list.
func (s *Store) AppendSentRequest(ctx context.Context, buyerID, requestID primitive.ObjectID) error {
	return s.push(ctx, buyerID, "sent_requests", requestID)
}

// AppendFabric appends a fabric ID to the buyer's fabric list.
func (s *Store) AppendFabric(ctx context.Context, buyerID, fabricID primitive.ObjectID) error {
	return s.push(ctx, buyerID, "fabrics", fabricID)
}

// AppendAssignedFabric appends an assignment ID to the buyer's
// assigned-fabrics list.
func (s *Store) AppendAssignedFabric(ctx context.Context, buyerID, assignmentID primitive.ObjectID) error {
	return s.push(ctx, buyerID, "assigned_fabrics", assignmentID)
}

// AddConnectedWorker adds the worker to the buyer's connected set.
// $addToSet keeps the add idempotent; re-adding is not an error.
func (s *Store) AddConnectedWorker(ctx context.Context, buyerID, workerID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": buyerID}, bson.M{
		"$addToSet": bson.M{"connected_workers": workerID},
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

func (s *Store) push(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: value},
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
