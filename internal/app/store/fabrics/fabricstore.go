// internal/app/store/fabrics/fabricstore.go
package fabricstore

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
	return &Store{c: db.Collection("fabrics")}
}

func (s *Store) Insert(ctx context.Context, f *models.Fabric) error {
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if f.Assignments == nil {
		f.Assignments = []primitive.ObjectID{}
	}
	if f.ChangeHistory == nil {
		f.ChangeHistory = []models.FieldChange{}
	}
	_, err := s.c.InsertOne(ctx, f)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Fabric, error) {
	var f models.Fabric
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) ListByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Fabric, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"buyer_id": buyerID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Fabric
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the field set and appends the change-history entries
// in one atomic update, so the ledger can never drift from the write it
// records.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M, changes []models.FieldChange) error {
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if len(changes) > 0 {
		update["$push"] = bson.M{"change_history": bson.M{"$each": changes}}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AppendAssignment appends an assignment ID to the fabric's ordered
// assignment list.
func (s *Store) AppendAssignment(ctx context.Context, fabricID, assignmentID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": fabricID}, bson.M{
		"$push": bson.M{"assignments": assignmentID},
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
