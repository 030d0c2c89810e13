package repository

import (
	"context"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/fitbalance/fitbalance-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MealPlanRepository handles database operations related to meal plans.
type MealPlanRepository struct {
	collection *mongo.Collection
}

// NewMealPlanRepository creates a new instance of MealPlanRepository.
func NewMealPlanRepository(db *mongo.Database) *MealPlanRepository {
	return &MealPlanRepository{
		collection: db.Collection("meal_plans"),
	}
}

// CreatePlan inserts a new meal plan document.
func (r *MealPlanRepository) CreatePlan(ctx context.Context, plan *models.MealPlan) (*models.MealPlan, error) {
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert meal plan")
		return nil, apperrors.Persistence("failed to insert meal plan", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, apperrors.Persistence("failed to cast inserted ID", nil)
	}
	plan.ID = insertedID

	logger.Log.WithFields(map[string]interface{}{
		"plan_id": plan.ID.Hex(),
		"date":    plan.Date,
	}).Info("Meal plan created successfully")
	return plan, nil
}

// GetPlanByID fetches a meal plan by its ID.
func (r *MealPlanRepository) GetPlanByID(ctx context.Context, id primitive.ObjectID) (*models.MealPlan, error) {
	var plan models.MealPlan

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("meal plan not found")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("plan_id", id.Hex()).Error("Failed to find meal plan by ID")
		return nil, apperrors.Persistence("failed to get meal plan", err)
	}

	return &plan, nil
}

// GetPlanByUserAndDate fetches the single plan for a (user, calendar day)
// pair. A NotFound result means "no plan yet today" and is the trigger for
// creation, not a terminal error.
func (r *MealPlanRepository) GetPlanByUserAndDate(ctx context.Context, userID primitive.ObjectID, date string) (*models.MealPlan, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    date,
	}

	var plan models.MealPlan
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("no meal plan for this date")
	}
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"user_id": userID.Hex(),
			"date":    date,
		}).Error("Failed to query meal plan by date")
		return nil, apperrors.Persistence("failed to query meal plan", err)
	}

	return &plan, nil
}

// GetRecentPlans fetches the user's most recent plans, newest first.
func (r *MealPlanRepository) GetRecentPlans(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.MealPlan, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch recent meal plans")
		return nil, apperrors.Persistence("failed to fetch recent meal plans", err)
	}
	defer cursor.Close(ctx)

	var plans []models.MealPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, apperrors.Persistence("failed to decode meal plans", err)
	}

	return plans, nil
}

// GetPlansByUser fetches all plans for a user. Used by the reporting rollups.
func (r *MealPlanRepository) GetPlansByUser(ctx context.Context, userID primitive.ObjectID) ([]models.MealPlan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to fetch meal plans")
		return nil, apperrors.Persistence("failed to fetch meal plans", err)
	}
	defer cursor.Close(ctx)

	var plans []models.MealPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, apperrors.Persistence("failed to decode meal plans", err)
	}

	return plans, nil
}

// UpdatePlan overwrites an existing meal plan document. Last write wins:
// there is no version stamp or transaction guarding concurrent writers.
func (r *MealPlanRepository) UpdatePlan(ctx context.Context, id primitive.ObjectID, plan *models.MealPlan) (*models.MealPlan, error) {
	plan.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": plan},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("plan_id", id.Hex()).Error("Failed to update meal plan")
		return nil, apperrors.Persistence("failed to update meal plan", err)
	}

	logger.Log.WithField("plan_id", id.Hex()).Info("Meal plan updated successfully")
	return plan, nil
}
