// internal/app/features/fabrics/update_test.go
package fabrics

import (
	"testing"

	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func completeFabric() *models.Fabric {
	return &models.Fabric{
		ID:          primitive.NewObjectID(),
		BuyerID:     primitive.NewObjectID(),
		Name:        "Raw Silk",
		Description: "Undyed raw silk",
		Unit:        models.UnitMeters,
		Quantity:    100,
		UnitPrice:   5,
		TotalPrice:  500,
		ImageURL:    "https://img.example/silk.jpg",
		Status:      models.FabricStatusActive,
	}
}

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func TestDiffFabricRecordsChangedFields(t *testing.T) {
	f := completeFabric()
	actor := primitive.NewObjectID()
	in := &updateFabricInput{
		Name:     strPtr("Dyed Silk"),
		Quantity: f64Ptr(80),
	}

	set, changes, err := diffFabric(f, in, actor)
	require.NoError(t, err)

	assert.Equal(t, "Dyed Silk", set["name"])
	assert.Equal(t, 80.0, set["quantity"])
	assert.Equal(t, 400.0, set["total_price"], "total price follows the changed inputs")

	require.Len(t, changes, 2)
	byField := map[string]models.FieldChange{}
	for _, c := range changes {
		byField[c.Field] = c
	}
	name := byField["name"]
	assert.Equal(t, "Raw Silk", name.PreviousValue)
	assert.Equal(t, "Dyed Silk", name.NewValue)
	assert.Equal(t, actor, name.ChangedBy)
	qty := byField["quantity"]
	assert.Equal(t, 100.0, qty.PreviousValue)
	assert.Equal(t, 80.0, qty.NewValue)
}

func TestDiffFabricUnchangedValuesProduceNothing(t *testing.T) {
	f := completeFabric()
	in := &updateFabricInput{
		Name:     strPtr("Raw Silk"),
		Quantity: f64Ptr(100),
	}

	set, changes, err := diffFabric(f, in, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, set, "same-value update writes nothing")
	assert.Empty(t, changes)
}

func TestDiffFabricImageAndStatusAreNotLedgered(t *testing.T) {
	f := completeFabric()
	in := &updateFabricInput{
		ImageURL: strPtr("https://img.example/silk-v2.jpg"),
		Status:   strPtr(models.FabricStatusArchived),
	}

	set, changes, err := diffFabric(f, in, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/silk-v2.jpg", set["image_url"])
	assert.Equal(t, models.FabricStatusArchived, set["status"])
	assert.Empty(t, changes, "image and status stay out of the ledger")
}

func TestDiffFabricValidation(t *testing.T) {
	cases := []struct {
		name string
		in   updateFabricInput
	}{
		{"bad unit", updateFabricInput{Unit: strPtr("bolts")}},
		{"negative quantity", updateFabricInput{Quantity: f64Ptr(-1)}},
		{"negative unit price", updateFabricInput{UnitPrice: f64Ptr(-0.5)}},
		{"bogus status", updateFabricInput{Status: strPtr("pending")}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := diffFabric(completeFabric(), &c.in, primitive.NewObjectID())
			assert.True(t, apperr.IsKind(err, apperr.KindBadRequest), "got %v", err)
		})
	}
}

func TestDiffFabricNonDraftCompleteness(t *testing.T) {
	f := completeFabric()
	f.Status = models.FabricStatusDraft
	f.ImageURL = ""

	// Activating an incomplete draft is refused.
	_, _, err := diffFabric(f, &updateFabricInput{Status: strPtr(models.FabricStatusActive)}, primitive.NewObjectID())
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest), "got %v", err)

	// Supplying the missing field in the same update succeeds.
	set, _, err := diffFabric(f, &updateFabricInput{
		Status:   strPtr(models.FabricStatusActive),
		ImageURL: strPtr("https://img.example/silk.jpg"),
	}, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, models.FabricStatusActive, set["status"])
}
