// internal/app/store/workers/workerstore_test.go
package workerstore_test

import (
	"context"
	"testing"

	workerstore "github.com/loomhub/loomhub/internal/app/store/workers"
	"github.com/loomhub/loomhub/internal/domain/models"
	"github.com/loomhub/loomhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetByIDsEmptyInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx := context.Background()

	user := fx.CreateUser(ctx, "Tomas Reyes", "tomas@example.com", models.RoleWorker)
	fx.CreateWorker(ctx, &user.ID, "Reyes Weaving")
	store := workerstore.New(db)

	for _, ids := range [][]primitive.ObjectID{nil, {}} {
		got, err := store.GetByIDs(ctx, ids)
		if err != nil {
			t.Fatalf("GetByIDs(%v): %v", ids, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("GetByIDs(%v): got %v, want empty slice", ids, got)
		}
	}
}
