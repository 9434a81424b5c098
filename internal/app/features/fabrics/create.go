// internal/app/features/fabrics/create.go
package fabrics

import (
	"context"
	"net/http"

	buyerstore "github.com/loomhub/loomhub/internal/app/store/buyers"
	fabricstore "github.com/loomhub/loomhub/internal/app/store/fabrics"
	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"github.com/loomhub/loomhub/internal/app/system/httpjson"
	"github.com/loomhub/loomhub/internal/app/system/sanitize"
	"github.com/loomhub/loomhub/internal/app/system/timeouts"
	"github.com/loomhub/loomhub/internal/domain/models"
)

type fabricInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	ImageURL    string  `json:"image_url"`
	Status      string  `json:"status"`
}

// HandleCreateFabric creates a fabric posting for the acting buyer.
// Drafts may be incomplete; any other status requires the full field
// set.
// POST /fabrics
func (h *Handler) HandleCreateFabric(w http.ResponseWriter, r *http.Request) {
	var in fabricInput
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

	fabric := &models.Fabric{
		BuyerID:     buyer.ID,
		Name:        sanitize.Text(in.Name),
		Description: sanitize.Text(in.Description),
		Unit:        in.Unit,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		ImageURL:    in.ImageURL,
		Status:      in.Status,
	}
	if fabric.Status == "" {
		fabric.Status = models.FabricStatusDraft
	}
	if err := validateFabric(fabric); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	fabric.TotalPrice = fabric.Quantity * fabric.UnitPrice

	if err := fabricstore.New(h.DB).Insert(ctx, fabric); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}
	if err := buyerstore.New(h.DB).AppendFabric(ctx, buyer.ID, fabric.ID); err != nil {
		httpjson.Fail(w, h.Log, err)
		return
	}

	httpjson.OK(w, http.StatusCreated, map[string]any{"fabric": fabric})
}

func validFabricStatus(status string) bool {
	switch status {
	case models.FabricStatusDraft, models.FabricStatusActive, models.FabricStatusArchived:
		return true
	}
	return false
}

func validateFabric(f *models.Fabric) error {
	if !validFabricStatus(f.Status) {
		return apperr.BadRequest("invalid fabric status %q", f.Status)
	}
	if f.Unit != "" && !models.IsValidUnit(f.Unit) {
		return apperr.BadRequest("unit must be meters or yards")
	}
	if f.Quantity < 0 || f.UnitPrice < 0 {
		return apperr.BadRequest("quantity and unit_price cannot be negative")
	}
	if f.Status != models.FabricStatusDraft && !f.IsComplete() {
		return apperr.BadRequest("a non-draft fabric requires name, description, unit, quantity, unit_price, and image_url")
	}
	return nil
}
