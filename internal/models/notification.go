package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reminder categories. These are the only notification types the app emits.
const (
	NotifBreakfast      = "breakfast"
	NotifLunch          = "lunch"
	NotifDinner         = "dinner"
	NotifWaterMorning   = "water_morning"
	NotifWaterAfternoon = "water_afternoon"
	NotifWaterEvening   = "water_evening"
)

// MaxNotificationsPerUser caps each user's notification feed; older entries
// are dropped when a new one arrives.
const MaxNotificationsPerUser = 50

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
