package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"messbook/internal/amqp"
	"messbook/internal/core"
	"messbook/internal/store"
)

// ReminderPublisher enqueues duty reminder messages. Satisfied by
// *amqp.Client.
type ReminderPublisher interface {
	PublishDutyReminder(ctx context.Context, msg *amqp.DutyReminderMessage) error
}

// ReminderWorker scans member schedules and notifies whoever has market
// duty tomorrow. At most one reminder per member per day.
type ReminderWorker struct {
	profiles  store.ProfileStore
	publisher ReminderPublisher

	// now is injectable so tests can pin the clock.
	now func() time.Time
}

func NewReminderWorker(profiles store.ProfileStore, publisher ReminderPublisher) *ReminderWorker {
	return &ReminderWorker{
		profiles:  profiles,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run scans on the given interval until ctx is done. An immediate scan runs
// first.
func (w *ReminderWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.Scan(ctx); err != nil {
		slog.ErrorContext(ctx, "Reminder scan failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Scan(ctx); err != nil {
				slog.ErrorContext(ctx, "Reminder scan failed", "error", err)
			}
		}
	}
}

// Scan walks every member with a duty schedule and publishes a reminder for
// each one whose next duty is tomorrow.
func (w *ReminderWorker) Scan(ctx context.Context) error {
	profiles, err := w.profiles.ListProfilesWithDutyDays(ctx)
	if err != nil {
		return fmt.Errorf("list duty profiles: %w", err)
	}

	now := w.now()
	today := core.DateOf(now)
	sent := 0

	for _, p := range profiles {
		next, ok := core.NextDutyDate(p.DutyDays, today)
		if !ok {
			continue
		}
		// Remind the day before the duty.
		if !next.Equal(today.AddDate(0, 0, 1)) {
			continue
		}
		// Already notified today?
		if core.DateOf(p.LastNotified).Equal(today.Time) {
			continue
		}

		msg := amqp.NewDutyReminderMessage(p.ID, p.Email, next.Format("2006-01-02"))
		if err := w.publisher.PublishDutyReminder(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish duty reminder", "user_id", p.ID, "error", err)
			continue
		}
		if err := w.profiles.SetLastNotified(ctx, p.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to record notification time", "user_id", p.ID, "error", err)
		}
		sent++
	}

	if sent > 0 {
		slog.InfoContext(ctx, "Duty reminders sent", "count", sent)
	}
	return nil
}
