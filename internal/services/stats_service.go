package services

import (
	"context"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultWindow is the rollup span used when the requested one is not an
// allowed value.
const defaultWindow = 3

var allowedWindows = map[int]bool{1: true, 2: true, 3: true, 4: true, 6: true, 9: true, 12: true}

// MonthPoint is one month of a rollup. Value is nil for months before the
// user registered or months with no data.
type MonthPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// WeightReport is the monthly weight rollup plus the overall change across
// the window. TotalChange is nil when fewer than two months carry data.
type WeightReport struct {
	Points      []MonthPoint `json:"points"`
	TotalChange *float64     `json:"total_change"`
}

// CalorieReport is the monthly average of daily completed calories.
type CalorieReport struct {
	Points []MonthPoint `json:"points"`
}

// PlanLister provides the plans the calorie rollup is computed from.
type PlanLister interface {
	GetPlansByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MealPlan, error)
}

// StatsService assembles the monthly report screens.
type StatsService struct {
	users UserStore
	plans PlanLister
}

// NewStatsService creates a new instance of StatsService.
func NewStatsService(users UserStore, plans PlanLister) *StatsService {
	return &StatsService{
		users: users,
		plans: plans,
	}
}

// WeightReport computes the user's monthly weight rollup.
func (s *StatsService) WeightReport(ctx context.Context, userID string, months int) (*WeightReport, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID", nil)
	}

	user, err := s.users.GetUserByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	report := WeightRollup(user, months, time.Now())
	return &report, nil
}

// CalorieReport computes the user's monthly average calorie rollup.
func (s *StatsService) CalorieReport(ctx context.Context, userID string, months int) (*CalorieReport, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID", nil)
	}

	user, err := s.users.GetUserByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	plans, err := s.plans.GetPlansByUser(ctx, objID)
	if err != nil {
		return nil, err
	}

	report := CalorieRollup(plans, user.RegistrationDate(), months, time.Now())
	return &report, nil
}

// normalizeWindow clamps the requested span to the allowed set.
func normalizeWindow(months int) int {
	if allowedWindows[months] {
		return months
	}
	return defaultWindow
}

// monthStart truncates t to the first instant of its month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// windowMonths returns the first instants of the last n months, oldest
// first, ending with the month containing now.
func windowMonths(n int, now time.Time) []time.Time {
	months := make([]time.Time, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, monthStart(now).AddDate(0, -i, 0))
	}
	return months
}

// WeightRollup builds the monthly weight series: each point is the user's
// last entry recorded within that month. Months before the registration
// month and months with no entry stay nil.
func WeightRollup(user *models.User, months int, now time.Time) WeightReport {
	window := windowMonths(normalizeWindow(months), now)
	registration := monthStart(user.RegistrationDate())

	points := make([]MonthPoint, 0, len(window))
	var firstValue, lastValue float64
	withData := 0

	for _, month := range window {
		point := MonthPoint{Label: month.Format("Jan")}

		if !month.Before(registration) {
			if w, ok := lastWeightInMonth(user.WeightHistory, month); ok {
				value := w
				point.Value = &value
				if withData == 0 {
					firstValue = value
				}
				lastValue = value
				withData++
			}
		}

		points = append(points, point)
	}

	report := WeightReport{Points: points}
	if withData >= 2 {
		change := lastValue - firstValue
		report.TotalChange = &change
	}
	return report
}

// lastWeightInMonth returns the weight of the newest entry dated within the
// month beginning at start.
func lastWeightInMonth(history []models.WeightEntry, start time.Time) (float64, bool) {
	end := start.AddDate(0, 1, 0)

	var best *models.WeightEntry
	for i := range history {
		entry := &history[i]
		if entry.Date.Before(start) || !entry.Date.Before(end) {
			continue
		}
		if best == nil || entry.Date.After(best.Date) {
			best = entry
		}
	}
	if best == nil {
		return 0, false
	}
	return best.Weight, true
}

// CalorieRollup builds the monthly calorie series: each point averages the
// daily completed calorie totals of that month, counting only days where
// something was completed. Months before registration stay nil.
func CalorieRollup(plans []models.MealPlan, registration time.Time, months int, now time.Time) CalorieReport {
	window := windowMonths(normalizeWindow(months), now)
	regMonth := monthStart(registration)

	// Month key "2006-01" -> completed daily totals above zero.
	totals := make(map[string][]int)
	for i := range plans {
		plan := &plans[i]
		day, err := time.Parse(models.DateLayout, plan.Date)
		if err != nil {
			continue
		}
		completed := plan.CompletedCalories()
		if completed <= 0 {
			continue
		}
		key := day.Format("2006-01")
		totals[key] = append(totals[key], completed)
	}

	points := make([]MonthPoint, 0, len(window))
	for _, month := range window {
		point := MonthPoint{Label: month.Format("Jan")}

		if !month.Before(regMonth) {
			if days := totals[month.Format("2006-01")]; len(days) > 0 {
				sum := 0
				for _, v := range days {
					sum += v
				}
				avg := float64(sum) / float64(len(days))
				point.Value = &avg
			}
		}

		points = append(points, point)
	}

	return CalorieReport{Points: points}
}
