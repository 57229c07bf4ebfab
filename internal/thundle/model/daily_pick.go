package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyPick freezes which vehicle was picked for a (date, mode, game) key.
// Rows are append-only: written once on the first request of the day and
// superseded naturally the next day, never updated or deleted.
type DailyPick struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Date      string             `bson:"date" json:"date"` // DD_MM_YYYY, UTC day
	Mode      string             `bson:"mode" json:"mode"` // partition key, or "all"
	Game      string             `bson:"game" json:"game"`
	Vehicle   Vehicle            `bson:"vehicle" json:"vehicle"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"` // UTC
}
