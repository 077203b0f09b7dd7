package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"policyvault/internal/config"
	"policyvault/internal/format"
	"policyvault/internal/model"
)

type ReminderStore interface {
	ListActivePoliciesExpiringOn(ctx context.Context, day time.Time) ([]model.Policy, error)
	CreateReminder(ctx context.Context, policyID string, reminderDate time.Time, daysBefore int) (bool, error)
}

// StartReminderJob schedules renewal reminders on every tick until ctx ends.
// The returned channel closes once the job goroutine has exited.
func StartReminderJob(ctx context.Context, cfg config.Config, store ReminderStore, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if !cfg.ReminderJobEnabled {
		close(done)
		return done
	}
	interval := cfg.ReminderJobInterval
	if interval <= 0 {
		interval = time.Hour
	}
	timeout := cfg.ReminderJobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	daysBefore := cfg.ReminderDaysBefore
	if len(daysBefore) == 0 {
		daysBefore = []int{30, 7, 1}
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				created, err := ScheduleReminders(tickCtx, store, time.Now().UTC(), daysBefore)
				cancel()
				if err != nil {
					logger.Error("reminder job failed", zap.Error(err))
					continue
				}
				if created > 0 {
					logger.Info("reminder job scheduled reminders", zap.Int("created", created))
				}
			}
		}
	}()
	return done
}

// ScheduleReminders creates a pending reminder dated today for every active
// policy expiring exactly n days from today, for each n in daysBefore.
// Existing reminders are left alone, so repeated runs on the same day are harmless.
func ScheduleReminders(ctx context.Context, store ReminderStore, now time.Time, daysBefore []int) (int, error) {
	today := format.CalendarDay(now)
	created := 0
	for _, days := range daysBefore {
		policies, err := store.ListActivePoliciesExpiringOn(ctx, today.AddDate(0, 0, days))
		if err != nil {
			return created, err
		}
		for _, p := range policies {
			ok, err := store.CreateReminder(ctx, p.ID, today, days)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}
