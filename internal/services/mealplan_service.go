package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/gemini"
	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/fitbalance/fitbalance-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// historyWindow is how many recent plans feed the exclusion history.
const historyWindow = 30

// PlanStore is the persistence surface the lifecycle logic needs.
type PlanStore interface {
	CreatePlan(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error)
	GetPlanByID(ctx context.Context, id primitive.ObjectID) (*models.MealPlan, error)
	GetPlanByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*models.MealPlan, error)
	GetRecentPlans(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.MealPlan, error)
	UpdatePlan(ctx context.Context, id primitive.ObjectID, plan *models.MealPlan) (*models.MealPlan, error)
}

// ProfileStore provides the user attributes generation prompts are built from.
type ProfileStore interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Generator produces meals from a structured request.
type Generator interface {
	GeneratePlan(ctx context.Context, req gemini.GenerationRequest) (*gemini.PlanResult, error)
	GenerateMeal(ctx context.Context, req gemini.GenerationRequest, slot models.Slot) (*models.Meal, error)
}

// MealPlanService owns the daily meal plan lifecycle: creation, per-slot
// regeneration with its once-per-day throttle, completion toggling and item
// edits, each recomputing the plan's calorie total.
type MealPlanService struct {
	plans     PlanStore
	users     ProfileStore
	generator Generator
}

// NewMealPlanService creates a new instance of MealPlanService.
func NewMealPlanService(plans PlanStore, users ProfileStore, generator Generator) *MealPlanService {
	return &MealPlanService{
		plans:     plans,
		users:     users,
		generator: generator,
	}
}

// GetOrCreateTodayPlan returns the user's plan for today, generating and
// persisting one when none exists. No automatic retry: a generation failure
// is returned to the caller, who must re-invoke.
func (s *MealPlanService) GetOrCreateTodayPlan(ctx context.Context, userID string) (*models.MealPlan, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID", nil)
	}

	today := time.Now().Format(models.DateLayout)

	plan, err := s.plans.GetPlanByUserAndDate(ctx, objID, today)
	if err == nil {
		return plan, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"user_id": userID,
		"date":    today,
	}).Info("No plan for today, generating a new one")

	user, err := s.users.GetUserByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	previous, err := s.collectItemHistory(ctx, objID, nil)
	if err != nil {
		return nil, err
	}

	result, err := s.generator.GeneratePlan(ctx, generationRequest(user, previous))
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Meal plan generation failed")
		return nil, err
	}

	plan = &models.MealPlan{
		UserID:    objID,
		Date:      today,
		Breakfast: result.Breakfast,
		Lunch:     result.Lunch,
		Dinner:    result.Dinner,
	}
	// All three slots start incomplete, so the initial total is the sum of
	// everything generated. Every later mutation recomputes it from
	// completed slots only.
	plan.TotalCalories = plan.AssignedCalories()

	return s.plans.CreatePlan(ctx, plan)
}

// GetPlanForDate returns the stored plan for an arbitrary calendar day,
// without triggering generation.
func (s *MealPlanService) GetPlanForDate(ctx context.Context, userID, date string) (*models.MealPlan, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID", nil)
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, apperrors.Validation("invalid date, expected YYYY-MM-DD", nil)
	}

	return s.plans.GetPlanByUserAndDate(ctx, objID, date)
}

// CanRegenerateSlot reports whether the slot may be AI-regenerated today:
// once per slot per calendar day, judged in the server's local zone.
func CanRegenerateSlot(plan *models.MealPlan, slot models.Slot) bool {
	changed := plan.ChangeHistory.For(slot)
	if changed.IsZero() {
		return true
	}

	changeDay := changed.Local().Format(models.DateLayout)
	today := time.Now().Format(models.DateLayout)
	return changeDay < today
}

// RegenerateMealSlot replaces one slot with a freshly generated meal that
// avoids the slot's recent item history. The once-per-day throttle is
// advisory: callers check CanRegenerateSlot first, and this operation does
// not re-validate, so two racing calls can both succeed (last write wins).
func (s *MealPlanService) RegenerateMealSlot(ctx context.Context, planID string, slot models.Slot) (*models.MealPlan, error) {
	objID, err := primitive.ObjectIDFromHex(planID)
	if err != nil {
		return nil, apperrors.Validation("invalid plan ID", nil)
	}

	plan, err := s.plans.GetPlanByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, plan.UserID)
	if err != nil {
		return nil, err
	}

	slotHistory, err := s.collectItemHistory(ctx, plan.UserID, &slot)
	if err != nil {
		return nil, err
	}

	meal, err := s.generator.GenerateMeal(ctx, generationRequest(user, slotHistory), slot)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"plan_id": planID,
			"slot":    slot,
		}).Error("Meal regeneration failed")
		return nil, err
	}

	plan.SetMeal(slot, meal)
	plan.ChangeHistory.Set(slot, time.Now())
	plan.TotalCalories = plan.CompletedCalories()

	updated, err := s.plans.UpdatePlan(ctx, objID, plan)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"plan_id": planID,
		"slot":    slot,
	}).Info("Meal slot regenerated")
	return updated, nil
}

// SetSlotCompletion toggles a slot's completed state and recomputes the
// plan total from completed slots. The stored document is re-read after the
// write and returned as the authoritative state.
func (s *MealPlanService) SetSlotCompletion(ctx context.Context, planID string, slot models.Slot, completed bool) (*models.MealPlan, error) {
	objID, err := primitive.ObjectIDFromHex(planID)
	if err != nil {
		return nil, apperrors.Validation("invalid plan ID", nil)
	}

	plan, err := s.plans.GetPlanByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	meal := plan.MealFor(slot)
	if meal == nil {
		return nil, apperrors.NotFound("plan has no meal in this slot")
	}

	meal.IsCompleted = completed
	if completed {
		now := time.Now()
		meal.CompletedAt = &now
	} else {
		meal.CompletedAt = nil
	}
	plan.TotalCalories = plan.CompletedCalories()

	if _, err := s.plans.UpdatePlan(ctx, objID, plan); err != nil {
		return nil, err
	}

	// Re-read to guard against read-your-own-write anomalies in the store.
	return s.plans.GetPlanByID(ctx, objID)
}

// SlotItemEdit is one row of a slot edit as entered by the user; calories
// arrive as raw text and may be unparseable.
type SlotItemEdit struct {
	Name     string `json:"name"`
	Calories string `json:"calories"`
}

// EditSlotItems replaces a slot's item list wholesale. Items with a blank
// name or a non-positive or unparseable calorie value are silently dropped;
// an edit whose filtered list is empty is rejected and leaves the stored
// plan untouched.
func (s *MealPlanService) EditSlotItems(ctx context.Context, planID string, slot models.Slot, edits []SlotItemEdit) (*models.MealPlan, error) {
	items := filterItemEdits(edits)
	if len(items) == 0 {
		return nil, apperrors.Validation("must have at least one item", map[string]string{
			"items": "must have at least one item",
		})
	}

	objID, err := primitive.ObjectIDFromHex(planID)
	if err != nil {
		return nil, apperrors.Validation("invalid plan ID", nil)
	}

	plan, err := s.plans.GetPlanByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	meal := plan.MealFor(slot)
	if meal == nil {
		meal = &models.Meal{}
		plan.SetMeal(slot, meal)
	}

	meal.Items = items
	meal.TotalCalories = meal.SumItems()
	plan.TotalCalories = plan.CompletedCalories()

	updated, err := s.plans.UpdatePlan(ctx, objID, plan)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"plan_id": planID,
		"slot":    slot,
		"items":   len(items),
	}).Info("Meal slot items edited")
	return updated, nil
}

func filterItemEdits(edits []SlotItemEdit) []models.MealItem {
	var items []models.MealItem
	for _, edit := range edits {
		name := strings.TrimSpace(edit.Name)
		calories, err := strconv.Atoi(strings.TrimSpace(edit.Calories))
		if name == "" || err != nil || calories <= 0 {
			continue
		}
		items = append(items, models.MealItem{Name: name, Calories: calories})
	}
	return items
}

// collectItemHistory flattens and deduplicates item names across the user's
// recent plans. With a nil slot it spans all three slots; with a slot it is
// restricted to that slot's history.
func (s *MealPlanService) collectItemHistory(ctx context.Context, userID primitive.ObjectID, slot *models.Slot) ([]string, error) {
	plans, err := s.plans.GetRecentPlans(ctx, userID, historyWindow)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, plan := range plans {
		slots := models.Slots
		if slot != nil {
			slots = []models.Slot{*slot}
		}
		for _, sl := range slots {
			meal := plan.MealFor(sl)
			if meal == nil {
				continue
			}
			for _, item := range meal.Items {
				if item.Name == "" || seen[item.Name] {
					continue
				}
				seen[item.Name] = true
				names = append(names, item.Name)
			}
		}
	}

	return names, nil
}

func generationRequest(user *models.User, exclude []string) gemini.GenerationRequest {
	return gemini.GenerationRequest{
		Height:       user.Height,
		Weight:       user.CurrentWeight(),
		Age:          user.Age,
		Gender:       user.Gender,
		Goal:         user.Goal,
		ExcludeItems: exclude,
	}
}
