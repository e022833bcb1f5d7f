// internal/domain/plan_entry.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan slot names form a small closed set; a trainee's entries sharing one
// slot name make up one workout.
const (
	MinSetCount    = 1
	MaxSetCount    = 12
	MaxRestSeconds = 300
)

// PlanEntry is the assignable unit: one exercise occurrence inside a named
// plan slot, with its own sets, rep scheme, load and rest interval.
type PlanEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID    primitive.ObjectID `bson:"ownerId" json:"ownerId"`     // The trainee this entry belongs to
	CoachID    primitive.ObjectID `bson:"coachId" json:"coachId"`     // Denormalized for easier queries/auth
	PlanName   string             `bson:"planName" json:"planName"`   // Slot label, e.g. "A".."E"
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`

	SetCount    int       `bson:"setCount" json:"setCount"`
	RepScheme   RepScheme `bson:"repScheme" json:"repScheme"`
	Load        string    `bson:"load,omitempty" json:"load,omitempty"` // Free-form: "40kg", "20kg per side", "bodyweight"
	RestSeconds int       `bson:"restSeconds" json:"restSeconds"`
	Note        string    `bson:"note,omitempty" json:"note,omitempty"`

	// ComboWith references a sibling entry (same owner, same plan) that this
	// entry is performed back-to-back with. The referenced entry is the lead
	// of the pair and has its rest suppressed; this entry's RestSeconds is
	// authoritative for the pair. Only direct A->B pairing is supported.
	ComboWith *primitive.ObjectID `bson:"comboWith,omitempty" json:"comboWith,omitempty"`

	// ExpiresOn is set from the validity window at creation time; nil means
	// the entry never expires.
	ExpiresOn *time.Time `bson:"expiresOn,omitempty" json:"expiresOn,omitempty"`

	Order     int       `bson:"order" json:"order"` // Execution order within the plan; ties broken by creation order
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
