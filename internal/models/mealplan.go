package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-day key format used for meal plan documents.
const DateLayout = "2006-01-02"

// Slot identifies one of the three meals of a day's plan.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
)

// Slots lists all meal slots in day order.
var Slots = []Slot{SlotBreakfast, SlotLunch, SlotDinner}

// ParseSlot converts a path/query value into a Slot.
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case SlotBreakfast, SlotLunch, SlotDinner:
		return Slot(s), nil
	}
	return "", fmt.Errorf("invalid meal slot: %q", s)
}

// MealItem is a single food with its calorie estimate.
type MealItem struct {
	Name     string `bson:"name" json:"name"`
	Calories int    `bson:"calories" json:"calories"`
}

// Meal holds the items of one slot plus its cached calorie total and
// completion state.
type Meal struct {
	Items         []MealItem `bson:"items" json:"items"`
	TotalCalories int        `bson:"total_calories" json:"total_calories"`
	IsCompleted   bool       `bson:"is_completed" json:"is_completed"`
	CompletedAt   *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// SumItems recomputes the calorie total from the item list.
func (m *Meal) SumItems() int {
	total := 0
	for _, item := range m.Items {
		total += item.Calories
	}
	return total
}

// ChangeHistory records, per slot, when it was last AI-regenerated. A zero
// timestamp means the slot was never regenerated.
type ChangeHistory struct {
	Breakfast time.Time `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	Lunch     time.Time `bson:"lunch,omitempty" json:"lunch,omitempty"`
	Dinner    time.Time `bson:"dinner,omitempty" json:"dinner,omitempty"`
}

// For returns the regeneration timestamp of the given slot.
func (h ChangeHistory) For(slot Slot) time.Time {
	switch slot {
	case SlotBreakfast:
		return h.Breakfast
	case SlotLunch:
		return h.Lunch
	case SlotDinner:
		return h.Dinner
	}
	return time.Time{}
}

// Set stamps the regeneration timestamp of the given slot.
func (h *ChangeHistory) Set(slot Slot, ts time.Time) {
	switch slot {
	case SlotBreakfast:
		h.Breakfast = ts
	case SlotLunch:
		h.Lunch = ts
	case SlotDinner:
		h.Dinner = ts
	}
}

// MealPlan is one user's plan for a single calendar day. The (user_id, date)
// pair is unique: at most one plan per user per day.
type MealPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date          string             `bson:"date" json:"date"`
	Breakfast     *Meal              `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	Lunch         *Meal              `bson:"lunch,omitempty" json:"lunch,omitempty"`
	Dinner        *Meal              `bson:"dinner,omitempty" json:"dinner,omitempty"`
	TotalCalories int                `bson:"total_calories" json:"total_calories"`
	ChangeHistory ChangeHistory      `bson:"change_history" json:"change_history"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// MealFor returns the meal in the given slot, which may be nil.
func (p *MealPlan) MealFor(slot Slot) *Meal {
	switch slot {
	case SlotBreakfast:
		return p.Breakfast
	case SlotLunch:
		return p.Lunch
	case SlotDinner:
		return p.Dinner
	}
	return nil
}

// SetMeal replaces the meal in the given slot.
func (p *MealPlan) SetMeal(slot Slot, meal *Meal) {
	switch slot {
	case SlotBreakfast:
		p.Breakfast = meal
	case SlotLunch:
		p.Lunch = meal
	case SlotDinner:
		p.Dinner = meal
	}
}

// CompletedCalories sums the calorie totals of completed slots only.
func (p *MealPlan) CompletedCalories() int {
	total := 0
	for _, slot := range Slots {
		if meal := p.MealFor(slot); meal != nil && meal.IsCompleted {
			total += meal.TotalCalories
		}
	}
	return total
}

// AssignedCalories sums the calorie totals of every slot regardless of
// completion. Used only when a plan is first created, before any slot can
// have been completed.
func (p *MealPlan) AssignedCalories() int {
	total := 0
	for _, slot := range Slots {
		if meal := p.MealFor(slot); meal != nil {
			total += meal.TotalCalories
		}
	}
	return total
}
