// internal/app/store/assignments/assignmentstore.go
package assignmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrRevisionConflict is returned when a conditional status update
// loses the race against a concurrent writer. Callers re-read and
// retry a bounded number of times.
var ErrRevisionConflict = errors.New("assignment was modified concurrently")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("fabric_assignments")}
}

func (s *Store) Insert(ctx context.Context, a *models.FabricAssignment) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Status = models.AssignmentStatusAssigned
	a.Revision = 0
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.StatusHistory == nil {
		a.StatusHistory = []models.StatusChange{}
	}
	_, err := s.c.InsertOne(ctx, a)
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FabricAssignment, error) {
	var a models.FabricAssignment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByFabric returns the fabric's assignment, or nil if none exists.
// A fabric has at most one active assignment; reassignment mutates it
// rather than inserting a second document.
func (s *Store) GetByFabric(ctx context.Context, fabricID primitive.ObjectID) (*models.FabricAssignment, error) {
	var a models.FabricAssignment
	err := s.c.FindOne(ctx, bson.M{"fabric_id": fabricID}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListByFabricIDs(ctx context.Context, fabricIDs []primitive.ObjectID) ([]models.FabricAssignment, error) {
	if len(fabricIDs) == 0 {
		return []models.FabricAssignment{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"fabric_id": bson.M{"$in": fabricIDs}})
	if err != nil {
		return nil, err
	}
	var out []models.FabricAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Reassign points the existing assignment at a different worker,
// resets status to assigned, and stamps reassigned_at. StatusHistory
// is preserved untouched.
func (s *Store) Reassign(ctx context.Context, id, workerID primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"worker_id":     workerID,
			"status":        models.AssignmentStatusAssigned,
			"reassigned_at": now,
			"updated_at":    now,
		},
		"$inc": bson.M{"revision": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyStatus writes the status transition and appends its history
// entry, conditional on the revision the caller loaded. A zero matched
// count means another writer got there first (ErrRevisionConflict) or
// the assignment is gone; the caller disambiguates by re-reading.
func (s *Store) ApplyStatus(ctx context.Context, id primitive.ObjectID, expectedRevision int64, newStatus models.AssignmentStatus, entry models.StatusChange) error {
	res, err := s.c.UpdateOne(
		ctx,
		bson.M{"_id": id, "revision": expectedRevision},
		bson.M{
			"$set":  bson.M{"status": newStatus, "updated_at": time.Now().UTC()},
			"$push": bson.M{"status_history": entry},
			"$inc":  bson.M{"revision": 1},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRevisionConflict
	}
	return nil
}
