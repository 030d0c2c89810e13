package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal values a user can pick at sign-up.
const (
	GoalGain     = "gain"
	GoalLose     = "lose"
	GoalMaintain = "maintain"
)

// WeightEntry is one point in a user's append-only weight history.
type WeightEntry struct {
	Weight float64   `bson:"weight" json:"weight"`
	Date   time.Time `bson:"date" json:"date"`
}

// User represents a FitBalance account with its profile and weight history.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Surname        string             `bson:"surname" json:"surname"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Height         float64            `bson:"height" json:"height"`
	Age            int                `bson:"age" json:"age"`
	Gender         string             `bson:"gender" json:"gender"`
	Goal           string             `bson:"goal" json:"goal"`
	WeightHistory  []WeightEntry      `bson:"weight_history" json:"weight_history"`
	ResetToken     string             `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExp  time.Time          `bson:"reset_token_exp,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// CurrentWeight returns the weight of the most recent history entry, or 0
// when the history is empty. The history itself is never truncated.
func (u *User) CurrentWeight() float64 {
	if len(u.WeightHistory) == 0 {
		return 0
	}

	latest := u.WeightHistory[0]
	for _, entry := range u.WeightHistory[1:] {
		if entry.Date.After(latest.Date) {
			latest = entry
		}
	}
	return latest.Weight
}

// RegistrationDate is the date of the oldest weight entry (seeded at
// sign-up), falling back to the account creation time.
func (u *User) RegistrationDate() time.Time {
	if len(u.WeightHistory) == 0 {
		return u.CreatedAt
	}

	oldest := u.WeightHistory[0]
	for _, entry := range u.WeightHistory[1:] {
		if entry.Date.Before(oldest.Date) {
			oldest = entry
		}
	}
	return oldest.Date
}
