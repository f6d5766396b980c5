// Package scheduler runs the background jobs of the service.
package scheduler

import (
	"context"
	"time"

	"coursehub/logger"
	"coursehub/services/registration"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultCompletionSchedule = "@every 1h"

// logScheduler logs scheduler events under one component name.
func logScheduler(message string, fields ...zap.Field) {
	logger.Info(message, append([]zap.Field{zap.String("component", "completion-scheduler")}, fields...)...)
}

// RunCompletionSweep completes confirmed registrations of courses that
// ended before at.
func RunCompletionSweep(ctx context.Context, db *gorm.DB, at time.Time) (int64, error) {
	n, err := registration.CompleteEnded(ctx, db, at)
	if err != nil {
		logger.Error("completion sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		logScheduler("registrations auto-completed", zap.Int64("count", n))
	}
	return n, nil
}

// StartCompletionScheduler registers the sweep on c under schedule.
func StartCompletionScheduler(c *cron.Cron, db *gorm.DB, schedule string) error {
	if schedule == "" {
		schedule = DefaultCompletionSchedule
	}
	_, err := c.AddFunc(schedule, func() {
		_, _ = RunCompletionSweep(context.Background(), db, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	logScheduler("completion scheduler registered", zap.String("schedule", schedule))
	return nil
}

// Initialize builds and starts the cron runner in UTC. The caller stops it
// on shutdown.
func Initialize(db *gorm.DB, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if err := StartCompletionScheduler(c, db, schedule); err != nil {
		return nil, err
	}
	c.Start()
	logScheduler("schedulers started")
	return c, nil
}
