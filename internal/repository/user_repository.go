package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, apperrors.Persistence("failed to insert user", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, apperrors.Persistence("failed to cast inserted ID", nil)
	}

	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("no user with this email")
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Warn("Failed to find user by email")
		return nil, apperrors.Persistence("failed to find user by email", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, apperrors.Persistence("failed to find user by id", err)
	}

	return &user, nil
}

// GetUserByResetToken retrieves a user by a pending password reset token.
func (r *UserRepository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"reset_token": token}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NotFound("invalid reset token")
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to find user by reset token", err)
	}
	return &user, nil
}

// UpdateUser applies a partial update to a user's document.
func (r *UserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.User, error) {
	update["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return nil, apperrors.Persistence("failed to update user", err)
	}

	logrus.WithField("userID", id.Hex()).Info("User updated successfully")
	return r.GetUserByID(ctx, id)
}

// AppendWeightEntry pushes a new entry onto the user's weight history.
// History is append-only; entries are never removed or rewritten.
func (r *UserRepository) AppendWeightEntry(ctx context.Context, id primitive.ObjectID, entry models.WeightEntry) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"weight_history": entry},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to append weight entry")
		return apperrors.Persistence("failed to append weight entry", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": id.Hex(),
		"weight": entry.Weight,
	}).Info("Weight entry appended")
	return nil
}

// GetAllUsers fetches every user. Used by the reminder scheduler fan-out.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users = append(users, &user)
	}

	return users, nil
}
