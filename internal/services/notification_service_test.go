package services

import (
	"context"
	"testing"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeNotificationStore struct {
	notifications []models.Notification
	failFor       primitive.ObjectID
	cutoff        time.Time
}

func (f *fakeNotificationStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	if notif.UserID == f.failFor {
		return apperrors.Persistence("insert failed", nil)
	}
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *notif)
	return nil
}

func (f *fakeNotificationStore) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	for i := range f.notifications {
		if f.notifications[i].UserID == userID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error {
	for i, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeNotificationStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	f.cutoff = cutoff
	return nil
}

type fakeUserLister struct {
	users []*models.User
}

func (f *fakeUserLister) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return f.users, nil
}

func TestCreateReminder(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, &fakeUserLister{})
	userID := primitive.NewObjectID()

	err := svc.CreateReminder(context.Background(), userID, models.NotifBreakfast)
	require.NoError(t, err)

	require.Len(t, store.notifications, 1)
	notif := store.notifications[0]
	assert.Equal(t, models.NotifBreakfast, notif.Type)
	assert.NotEmpty(t, notif.Title)
	assert.NotEmpty(t, notif.Message)
	assert.False(t, notif.Read)
}

func TestCreateReminder_UnknownType(t *testing.T) {
	svc := NewNotificationService(&fakeNotificationStore{}, &fakeUserLister{})

	err := svc.CreateReminder(context.Background(), primitive.NewObjectID(), "snack")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestSendDailyReminder_ContinuesPastFailures(t *testing.T) {
	good1 := &models.User{ID: primitive.NewObjectID()}
	bad := &models.User{ID: primitive.NewObjectID()}
	good2 := &models.User{ID: primitive.NewObjectID()}

	store := &fakeNotificationStore{failFor: bad.ID}
	svc := NewNotificationService(store, &fakeUserLister{users: []*models.User{good1, bad, good2}})

	svc.SendDailyReminder(context.Background(), models.NotifWaterMorning)

	assert.Len(t, store.notifications, 2)
	for _, n := range store.notifications {
		assert.Equal(t, models.NotifWaterMorning, n.Type)
	}
}

func TestMarkAllReadAndUnreadCount(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, &fakeUserLister{})
	userID := primitive.NewObjectID()

	require.NoError(t, svc.CreateReminder(context.Background(), userID, models.NotifLunch))
	require.NoError(t, svc.CreateReminder(context.Background(), userID, models.NotifDinner))

	count, err := svc.UnreadCount(context.Background(), userID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkAllRead(context.Background(), userID.Hex()))

	count, err = svc.UnreadCount(context.Background(), userID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCleanupOld(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, &fakeUserLister{})

	require.NoError(t, svc.CleanupOld(context.Background()))

	expected := time.Now().Add(-notificationRetention)
	assert.WithinDuration(t, expected, store.cutoff, time.Minute)
}
