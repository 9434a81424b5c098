// internal/app/features/fabrics/views.go
package fabrics

import (
	"context"
	"sort"
	"time"

	userstore "github.com/loomhub/loomhub/internal/app/store/users"
	"github.com/loomhub/loomhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PartyView is the denormalized identity of a buyer or worker included
// in detail responses and live payloads.
type PartyView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// ChangeView is one change-history entry with the actor resolved to a
// display name.
type ChangeView struct {
	Field         string    `json:"field"`
	PreviousValue any       `json:"previous_value"`
	NewValue      any       `json:"new_value"`
	ChangedBy     string    `json:"changed_by"`
	ChangedAt     time.Time `json:"changed_at"`
}

// StatusChangeView is one status-history entry with the actor resolved
// to a display name.
type StatusChangeView struct {
	PreviousStatus models.AssignmentStatus `json:"previous_status"`
	NewStatus      models.AssignmentStatus `json:"new_status"`
	ChangedBy      string                  `json:"changed_by"`
	ChangedAt      time.Time               `json:"changed_at"`
	Notes          string                  `json:"notes,omitempty"`
}

// AssignmentView is one assignment joined with its worker's identity.
// StatusHistory is sorted newest-first.
type AssignmentView struct {
	ID            string                  `json:"id"`
	Status        models.AssignmentStatus `json:"status"`
	Worker        *PartyView              `json:"worker,omitempty"`
	StatusHistory []StatusChangeView      `json:"status_history"`
	ReassignedAt  *time.Time              `json:"reassigned_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// fabricDetail is the response of GET /fabrics/{fabricID}: the fabric
// joined with its buyer, every assignment, and the resolved ledgers.
// RelevantAssignment is the acting worker's assignment when the caller
// is a worker, otherwise the first assignment.
type fabricDetail struct {
	Fabric             *models.Fabric   `json:"fabric"`
	Buyer              PartyView        `json:"buyer"`
	Assignments        []AssignmentView `json:"assignments"`
	RelevantAssignment *AssignmentView  `json:"relevant_assignment,omitempty"`
	ChangeHistory      []ChangeView     `json:"change_history"`
}

func buyerParty(b *models.Buyer) PartyView {
	return PartyView{ID: b.ID.Hex(), Name: b.Name, Contact: b.Contact}
}

func workerParty(w *models.Worker) PartyView {
	return PartyView{ID: w.ID.Hex(), Name: w.Name, Contact: w.Contact}
}

// nameResolver maps user IDs to display names for history views,
// loading all actors in one query. Unknown actors fall back to the
// hex ID rather than an empty string.
type nameResolver map[primitive.ObjectID]string

func resolveNames(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (nameResolver, error) {
	users, err := userstore.New(db).GetByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	nr := make(nameResolver, len(users))
	for i := range users {
		nr[users[i].ID] = users[i].FullName
	}
	return nr, nil
}

func (nr nameResolver) name(id primitive.ObjectID) string {
	if n, ok := nr[id]; ok && n != "" {
		return n
	}
	return id.Hex()
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// projectAssignment builds the read view without mutating the loaded
// entities.
func projectAssignment(a *models.FabricAssignment, worker *models.Worker, nr nameResolver) AssignmentView {
	history := make([]StatusChangeView, 0, len(a.StatusHistory))
	for _, sc := range a.StatusHistory {
		history = append(history, StatusChangeView{
			PreviousStatus: sc.PreviousStatus,
			NewStatus:      sc.NewStatus,
			ChangedBy:      nr.name(sc.ChangedBy),
			ChangedAt:      sc.ChangedAt,
			Notes:          sc.Notes,
		})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].ChangedAt.After(history[j].ChangedAt)
	})

	view := AssignmentView{
		ID:            a.ID.Hex(),
		Status:        a.Status,
		StatusHistory: history,
		ReassignedAt:  a.ReassignedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if worker != nil {
		wp := workerParty(worker)
		view.Worker = &wp
	}
	return view
}

func projectChanges(history []models.FieldChange, nr nameResolver) []ChangeView {
	out := make([]ChangeView, 0, len(history))
	for _, fc := range history {
		out = append(out, ChangeView{
			Field:         fc.Field,
			PreviousValue: fc.PreviousValue,
			NewValue:      fc.NewValue,
			ChangedBy:     nr.name(fc.ChangedBy),
			ChangedAt:     fc.ChangedAt,
		})
	}
	return out
}
