// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/loomhub/loomhub/internal/app/store/buyers"
	"github.com/loomhub/loomhub/internal/app/system/notify"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PaymentReminderJob sweeps completed assignments once a day and
// reminds the owning buyer that payment is due. It is a plain external
// caller of the notification write path; the assignment state machine
// knows nothing about it.
func PaymentReminderJob(db *mongo.Database, notifier *notify.Notifier, logger *zap.Logger) Job {
	buyerStore := buyerstore.New(db)
	assignments := db.Collection("fabric_assignments")
	fabrics := db.Collection("fabrics")

	return Job{
		Name:     "payment-due-reminder",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-24 * time.Hour)
			cur, err := assignments.Find(ctx, bson.M{
				"status":              models.AssignmentStatusCompleted,
				"updated_at":          bson.M{"$lte": cutoff},
				"payment_reminded_at": bson.M{"$exists": false},
			})
			if err != nil {
				return err
			}
			var due []models.FabricAssignment
			if err := cur.All(ctx, &due); err != nil {
				return err
			}

			sent := 0
			for _, a := range due {
				buyer, err := buyerStore.GetByID(ctx, a.BuyerID)
				if err != nil {
					logger.Warn("reminder sweep: buyer lookup failed",
						zap.String("assignment_id", a.ID.Hex()), zap.Error(err))
					continue
				}
				var fabric models.Fabric
				if err := fabrics.FindOne(ctx, bson.M{"_id": a.FabricID}).Decode(&fabric); err != nil {
					logger.Warn("reminder sweep: fabric lookup failed",
						zap.String("assignment_id", a.ID.Hex()), zap.Error(err))
					continue
				}
				msg := fmt.Sprintf("Payment is due for completed fabric %q", fabric.Name)
				_, err = notifier.Create(ctx, buyer.UserID, models.NotificationTypePaymentDue, msg, map[string]any{
					"assignment_id": a.ID.Hex(),
					"fabric_id":     a.FabricID.Hex(),
				})
				if err != nil {
					logger.Warn("reminder sweep: notification failed",
						zap.String("assignment_id", a.ID.Hex()), zap.Error(err))
					continue
				}
				// Stamp after the notification lands; a failed stamp
				// means at worst one duplicate next sweep.
				if _, err := assignments.UpdateOne(ctx,
					bson.M{"_id": a.ID},
					bson.M{"$set": bson.M{"payment_reminded_at": time.Now().UTC()}}); err != nil {
					logger.Warn("reminder sweep: stamp failed",
						zap.String("assignment_id", a.ID.Hex()), zap.Error(err))
				}
				sent++
			}
			if sent > 0 {
				logger.Info("payment reminders sent", zap.Int("count", sent))
			}
			return nil
		},
	}
}
