// Package jobs runs background work on a schedule.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hanzi/internal/clock"
	"hanzi/internal/metrics"

	"github.com/go-co-op/gocron"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Notifier delivers a text message to a user
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// DueCounter reports how many cards are due now
type DueCounter interface {
	DueCount(ctx context.Context) (int, error)
}

// UserLister lists the users who receive reminders
type UserLister interface {
	AuthorizedUsers() ([]int64, error)
}

// ReminderConfig controls how often reminders run and the UTC hours they may be sent in
type ReminderConfig struct {
	EveryHours int
	StartHour  int
	EndHour    int
}

const notifyTimeout = 15 * time.Second

// Reminder periodically tells authorized users how many cards are waiting
type Reminder struct {
	scheduler *gocron.Scheduler
	breaker   *gobreaker.CircuitBreaker
	notifier  Notifier
	due       DueCounter
	users     UserLister
	clock     clock.Clock
	cfg       ReminderConfig
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewReminder creates a reminder job. Call Start to schedule it.
func NewReminder(
	notifier Notifier,
	due DueCounter,
	users UserLister,
	clk clock.Clock,
	cfg ReminderConfig,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Reminder {
	if cfg.EveryHours <= 0 {
		cfg.EveryHours = 1
	}

	s := gocron.NewScheduler(time.UTC)
	s.WaitForScheduleAll()

	return &Reminder{
		scheduler: s,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "reminder-notifier",
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
		notifier: notifier,
		due:      due,
		users:    users,
		clock:    clk,
		cfg:      cfg,
		metrics:  collector,
		logger:   logger,
	}
}

// Start schedules the job and returns immediately
func (r *Reminder) Start() error {
	_, err := r.scheduler.Every(r.cfg.EveryHours).Hours().Do(func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			r.logger.Error("Reminder run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	r.scheduler.StartAsync()
	r.logger.Info("Reminder job started", zap.Int("every_hours", r.cfg.EveryHours))
	return nil
}

// Stop terminates the schedule
func (r *Reminder) Stop() {
	r.scheduler.Stop()
}

// RunOnce sends one round of reminders and returns how many were delivered.
// Nothing is sent outside notification hours or when no card is due.
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	hour := r.clock.Now().Hour()
	if hour < r.cfg.StartHour || hour >= r.cfg.EndHour {
		r.logger.Debug("Outside notification hours, skipping reminders",
			zap.Int("hour", hour),
			zap.Int("start_hour", r.cfg.StartHour),
			zap.Int("end_hour", r.cfg.EndHour),
		)
		return 0, nil
	}

	due, err := r.due.DueCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count due cards: %w", err)
	}
	if due == 0 {
		return 0, nil
	}

	users, err := r.users.AuthorizedUsers()
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	text := reminderText(due)
	sent := 0
	for i, userID := range users {
		_, err := r.breaker.Execute(func() (interface{}, error) {
			nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()
			return nil, r.notifier.Notify(nctx, userID, text)
		})

		switch {
		case err == nil:
			sent++
			r.metrics.RecordReminder("sent")
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			skipped := len(users) - i
			for range skipped {
				r.metrics.RecordReminder("skipped")
			}
			r.logger.Warn("Notifier circuit open, skipping remaining reminders", zap.Int("skipped", skipped))
			return sent, nil
		default:
			r.metrics.RecordReminder("failed")
			r.logger.Warn("Failed to send reminder", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	r.logger.Info("Reminders sent", zap.Int("due", due), zap.Int("sent", sent), zap.Int("users", len(users)))
	return sent, nil
}

func reminderText(due int) string {
	if due == 1 {
		return "⏰ 1 card is waiting for review. Press Study when you are ready."
	}
	return fmt.Sprintf("⏰ %d cards are waiting for review. Press Study when you are ready.", due)
}
