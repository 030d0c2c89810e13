package scheduler

import (
	"context"
	"time"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds each scheduled fan-out.
const jobTimeout = 2 * time.Minute

// reminderSchedule pairs each reminder type with its daily firing time.
var reminderSchedule = []struct {
	Spec string
	Type string
}{
	{"30 9 * * *", models.NotifBreakfast},
	{"0 13 * * *", models.NotifLunch},
	{"0 19 * * *", models.NotifDinner},
	{"0 10 * * *", models.NotifWaterMorning},
	{"30 13 * * *", models.NotifWaterAfternoon},
	{"30 19 * * *", models.NotifWaterEvening},
}

// StartReminderCron schedules the six daily reminders and the nightly feed
// cleanup, and starts the cron loop in its own goroutine.
func StartReminderCron(notifications *services.NotificationService) *cron.Cron {
	c := cron.New()

	for _, entry := range reminderSchedule {
		spec, notifType := entry.Spec, entry.Type
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			notifications.SendDailyReminder(ctx, notifType)
		})
		if err != nil {
			logrus.WithError(err).WithField("spec", spec).Fatal("Failed to schedule reminder job")
		}
	}

	_, err := c.AddFunc("55 23 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := notifications.CleanupOld(ctx); err != nil {
			logrus.WithError(err).Error("Notification cleanup failed")
		}
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to schedule cleanup job")
	}

	c.Start()
	logrus.Info("Reminder cron started")
	return c
}
