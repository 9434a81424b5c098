// internal/app/features/fabrics/update.go
package fabrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	fabricstore "github.com/loomhub/loomhub/internal/app/store/fabrics"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/sanitize"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// updateFabricInput uses pointers so absent fields are left untouched
// rather than zeroed.
type updateFabricInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// HandleUpdateFabric applies a partial update and appends one ledger
// entry per changed field. Image URL and status are applied but kept
// out of the ledger; the ledger records content edits, not structural
// or presentation changes.
// PUT /fabrics/{fabricID}
func (h *Handler) HandleUpdateFabric(w http.ResponseWriter, r *http.Request) {
	fabricID, err := pathObjectID(chi.URLParam(r, "fabricID"), "fabric id")
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	var in updateFabricInput
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	buyer, err := h.currentBuyer(ctx, r)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	store := fabricstore.New(h.DB)
	fabric, err := store.GetByID(ctx, fabricID)
	if err != nil {
		httpjson.Fail(w, h.Log, notFoundOr(err))
		return
	}
	if fabric.BuyerID != buyer.ID {
		httpjson.Fail(w, h.Log, apperr.Forbidden("fabric belongs to another buyer"))
		return
	}

	set, changes, err := diffFabric(fabric, &in, buyer.UserID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if len(set) == 0 {
		httpjson.OK(w, http.StatusOK, map[string]any{"fabric": fabric})
		return
	}

	if err := store.Update(ctx, fabricID, set, changes); err != nil {
		httpjson.Fail(w, h.Log, notFoundOr(err))
		return
	}
	updated, err := store.GetByID(ctx, fabricID)
	if err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	httpjson.OK(w, http.StatusOK, map[string]any{"fabric": updated})
}

// diffFabric builds the update document and the ledger entries from
// the fields present in the payload. Comparison is a strict inequality
// check; every field is scalar.
func diffFabric(f *models.Fabric, in *updateFabricInput, actor primitive.ObjectID) (bson.M, []models.FieldChange, error) {
	set := bson.M{}
	var changes []models.FieldChange
	now := time.Now().UTC()

	record := func(field string, prev, next any) {
		changes = append(changes, models.FieldChange{
			Field:         field,
			PreviousValue: prev,
			NewValue:      next,
			ChangedBy:     actor,
			ChangedAt:     now,
		})
	}

	next := *f
	if in.Name != nil {
		next.Name = sanitize.Text(*in.Name)
	}
	if in.Description != nil {
		next.Description = sanitize.Text(*in.Description)
	}
	if in.Unit != nil {
		if !models.IsValidUnit(*in.Unit) {
			return nil, nil, apperr.BadRequest("unit must be meters or yards")
		}
		next.Unit = *in.Unit
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, nil, apperr.BadRequest("quantity cannot be negative")
		}
		next.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		if *in.UnitPrice < 0 {
			return nil, nil, apperr.BadRequest("unit_price cannot be negative")
		}
		next.UnitPrice = *in.UnitPrice
	}
	if in.ImageURL != nil {
		next.ImageURL = *in.ImageURL
	}
	if in.Status != nil {
		if !validFabricStatus(*in.Status) {
			return nil, nil, apperr.BadRequest("invalid fabric status %q", *in.Status)
		}
		next.Status = *in.Status
	}

	// Leaving draft requires the post-update document to be complete.
	if next.Status != models.FabricStatusDraft && !next.IsComplete() {
		return nil, nil, apperr.BadRequest("a non-draft fabric requires name, description, unit, quantity, unit_price, and image_url")
	}

	if next.Name != f.Name {
		set["name"] = next.Name
		record("name", f.Name, next.Name)
	}
	if next.Description != f.Description {
		set["description"] = next.Description
		record("description", f.Description, next.Description)
	}
	if next.Unit != f.Unit {
		set["unit"] = next.Unit
		record("unit", f.Unit, next.Unit)
	}
	if next.Quantity != f.Quantity {
		set["quantity"] = next.Quantity
		record("quantity", f.Quantity, next.Quantity)
	}
	if next.UnitPrice != f.UnitPrice {
		set["unit_price"] = next.UnitPrice
		record("unit_price", f.UnitPrice, next.UnitPrice)
	}
	// Not ledgered: image changes are presentation, status is driven
	// by its own lifecycle.
	if next.ImageURL != f.ImageURL {
		set["image_url"] = next.ImageURL
	}
	if next.Status != f.Status {
		set["status"] = next.Status
	}

	// Total price is derived; refresh it whenever an input changed.
	if total := next.Quantity * next.UnitPrice; total != f.TotalPrice && len(set) > 0 {
		set["total_price"] = total
	}

	return set, changes, nil
}
