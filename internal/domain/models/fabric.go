// internal/domain/models/fabric.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fabric statuses. Draft fabrics may have incomplete required fields;
// any other status requires the full set (see IsComplete).
const (
	FabricStatusDraft    = "draft"
	FabricStatusActive   = "active"
	FabricStatusArchived = "archived"
)

// Measurement units for fabric quantity.
const (
	UnitMeters = "meters"
	UnitYards  = "yards"
)

// IsValidUnit reports whether unit is a known measurement unit.
func IsValidUnit(unit string) bool {
	return unit == UnitMeters || unit == UnitYards
}

// FieldChange is one entry in a fabric's change-history ledger. Entries
// are append-only; image URL changes are deliberately not recorded.
type FieldChange struct {
	Field         string             `bson:"field" json:"field"`
	PreviousValue any                `bson:"previous_value" json:"previous_value"`
	NewValue      any                `bson:"new_value" json:"new_value"`
	ChangedBy     primitive.ObjectID `bson:"changed_by" json:"changed_by"`
	ChangedAt     time.Time          `bson:"changed_at" json:"changed_at"`
}

// Fabric is a buyer's job posting. Assignments stays list-typed even
// though only one assignment is active at a time; reassignment mutates
// the existing assignment document instead of appending a second.
type Fabric struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BuyerID     primitive.ObjectID `bson:"buyer_id" json:"buyer_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Unit        string             `bson:"unit,omitempty" json:"unit,omitempty"` // meters | yards
	Quantity    float64            `bson:"quantity,omitempty" json:"quantity,omitempty"`
	UnitPrice   float64            `bson:"unit_price,omitempty" json:"unit_price,omitempty"`
	TotalPrice  float64            `bson:"total_price,omitempty" json:"total_price,omitempty"` // quantity × unit price
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Status      string             `bson:"status" json:"status"`

	Assignments   []primitive.ObjectID `bson:"assignments" json:"assignments"`
	ChangeHistory []FieldChange        `bson:"change_history" json:"change_history"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsComplete reports whether all fields required of a non-draft fabric
// are populated.
func (f *Fabric) IsComplete() bool {
	return f.Name != "" && f.Description != "" && f.Unit != "" &&
		f.Quantity > 0 && f.UnitPrice > 0 && f.ImageURL != ""
}
