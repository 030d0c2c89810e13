package services

import (
	"context"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notificationRetention is how long reminders stay in the feed before the
// nightly cleanup removes them.
const notificationRetention = 7 * 24 * time.Hour

// NotificationStore is the persistence surface for the notification feed.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}

// UserLister provides the accounts a reminder fan-out targets.
type UserLister interface {
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

// reminderContent maps each reminder type to its feed entry text.
var reminderContent = map[string]struct {
	Title   string
	Message string
}{
	models.NotifBreakfast:      {"Breakfast time!", "Don't skip breakfast, check today's plan."},
	models.NotifLunch:          {"Lunch time!", "Your lunch is waiting in today's plan."},
	models.NotifDinner:         {"Dinner time!", "Round off the day with your planned dinner."},
	models.NotifWaterMorning:   {"Water break", "Have a glass of water to start the day right."},
	models.NotifWaterAfternoon: {"Water break", "Time for a glass of water."},
	models.NotifWaterEvening:   {"Water break", "One more glass of water before the evening."},
}

// NotificationService manages the per-user reminder feed.
type NotificationService struct {
	repo  NotificationStore
	users UserLister
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo NotificationStore, users UserLister) *NotificationService {
	return &NotificationService{
		repo:  repo,
		users: users,
	}
}

// CreateReminder appends a reminder of the given type to the user's feed.
func (s *NotificationService) CreateReminder(ctx context.Context, userID primitive.ObjectID, notifType string) error {
	content, ok := reminderContent[notifType]
	if !ok {
		return apperrors.Validation("unknown notification type", nil)
	}

	notif := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   content.Title,
		Message: content.Message,
	}
	return s.repo.CreateNotification(ctx, notif)
}

// ListNotifications returns the user's feed, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.Validation("invalid user ID", nil)
	}
	return s.repo.GetUserNotifications(ctx, objID)
}

// UnreadCount returns the badge counter for the user's feed.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, apperrors.Validation("invalid user ID", nil)
	}
	return s.repo.CountUnread(ctx, objID)
}

// MarkAllRead resets the user's unread counter.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Validation("invalid user ID", nil)
	}
	return s.repo.MarkAllRead(ctx, objID)
}

// DeleteNotification removes one entry from the user's feed.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notifID string) error {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperrors.Validation("invalid user ID", nil)
	}
	notifObjID, err := primitive.ObjectIDFromHex(notifID)
	if err != nil {
		return apperrors.Validation("invalid notification ID", nil)
	}
	return s.repo.DeleteNotification(ctx, userObjID, notifObjID)
}

// SendDailyReminder fans one reminder type out to every registered user.
// A failure for one user is logged and does not stop the fan-out.
func (s *NotificationService) SendDailyReminder(ctx context.Context, notifType string) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch users for reminder fan-out")
		return
	}

	sent := 0
	for _, user := range users {
		if err := s.CreateReminder(ctx, user.ID, notifType); err != nil {
			logrus.WithError(err).WithField("userID", user.ID.Hex()).Error("Failed to create reminder")
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{
		"type": notifType,
		"sent": sent,
	}).Info("Daily reminder fan-out finished")
}

// CleanupOld removes reminders past the retention window for all users.
func (s *NotificationService) CleanupOld(ctx context.Context) error {
	return s.repo.DeleteOlderThan(ctx, time.Now().Add(-notificationRetention))
}
