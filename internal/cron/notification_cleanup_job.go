package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type notificationCleaner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// NotificationCleanupJobParams configure the notification retention job.
type NotificationCleanupJobParams struct {
	Logger  *logger.Logger
	Cleaner notificationCleaner
}

// NewNotificationCleanupJob builds the job that removes notifications
// past the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cleaner == nil {
		return nil, fmt.Errorf("notification cleaner required")
	}
	return &notificationCleanupJob{
		logg:    params.Logger,
		cleaner: params.Cleaner,
		now:     time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg    *logger.Logger
	cleaner notificationCleaner
	now     func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.cleaner.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rows_deleted", deleted), "notification cleanup complete")
	return nil
}
