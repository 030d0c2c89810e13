package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a new notification and trims the user's feed
// down to the most recent MaxNotificationsPerUser entries.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %v", err)
	}

	return r.trimToCap(ctx, notif.UserID)
}

// trimToCap deletes everything past the newest MaxNotificationsPerUser
// entries for the user.
func (r *NotificationRepository) trimToCap(ctx context.Context, userID primitive.ObjectID) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(models.MaxNotificationsPerUser)).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return fmt.Errorf("failed to find overflow notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var overflow []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &overflow); err != nil {
		return fmt.Errorf("failed to decode overflow notifications: %v", err)
	}
	if len(overflow) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(overflow))
	for _, doc := range overflow {
		ids = append(ids, doc.ID)
	}

	_, err = r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to trim notifications: %v", err)
	}
	return nil
}

// GetUserNotifications returns the user's feed, newest first.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(models.MaxNotificationsPerUser))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// CountUnread returns how many notifications the user has not yet viewed.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"read":    false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %v", err)
	}
	return count, nil
}

// MarkAllRead clears the user's unread counter.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

// DeleteNotification deletes a single notification from the user's feed.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	return err
}

// DeleteOlderThan removes notifications created before the cutoff.
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return fmt.Errorf("failed to delete old notifications: %v", err)
	}
	if result.DeletedCount > 0 {
		logrus.Infof("Deleted %d old notifications", result.DeletedCount)
	}
	return nil
}
