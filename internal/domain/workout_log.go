package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLog records one finished session. Written exactly once per session;
// never mutated or deleted by the application.
type WorkoutLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	PlanName        string             `bson:"planName" json:"planName"`
	DurationMinutes int                `bson:"durationMinutes" json:"durationMinutes"`
	OccurredAt      time.Time          `bson:"occurredAt" json:"occurredAt"`
}
