package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"servetix/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// ReminderSource lists confirmed buyers of matches starting in [from, to)
type ReminderSource interface {
	ReminderTargets(ctx context.Context, from, to time.Time) ([]ReminderTarget, error)
}

// ReminderScheduler publishes a MATCH_REMINDER every day for matches
// starting the next day
type ReminderScheduler struct {
	source    ReminderSource
	publisher Publisher
	loc       *time.Location
	hour      uint
	minute    uint
	now       func() time.Time
	scheduler gocron.Scheduler
}

func NewReminderScheduler(source ReminderSource, publisher Publisher, loc *time.Location, hour, minute uint) *ReminderScheduler {
	return &ReminderScheduler{
		source:    source,
		publisher: publisher,
		loc:       loc,
		hour:      hour,
		minute:    minute,
		now:       time.Now,
	}
}

func (r *ReminderScheduler) Start() error {
	s, err := gocron.NewScheduler(gocron.WithLocation(r.loc))
	if err != nil {
		return fmt.Errorf("failed to create reminder scheduler: %w", err)
	}

	// Run once a day at the configured local time
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(r.hour, r.minute, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := r.RunOnce(ctx); err != nil {
				logger.GetDefault().Error("Match reminder run failed", slog.Any("error", err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule match reminders: %w", err)
	}

	r.scheduler = s
	s.Start()
	logger.GetDefault().Info("Match reminder scheduler started",
		slog.String("at", fmt.Sprintf("%02d:%02d", r.hour, r.minute)),
		slog.String("timezone", r.loc.String()))
	return nil
}

func (r *ReminderScheduler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}

// RunOnce publishes reminders for tomorrow's matches and returns how many
// were published
func (r *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	// Tomorrow, midnight to midnight in the scheduler's timezone
	today := r.now().In(r.loc)
	from := time.Date(today.Year(), today.Month(), today.Day()+1, 0, 0, 0, 0, r.loc)
	to := from.AddDate(0, 0, 1)

	targets, err := r.source.ReminderTargets(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminder targets: %w", err)
	}

	// Publish one reminder per purchase
	sent := 0
	for _, t := range targets {
		n := New(TypeMatchReminder, t.BuyerEmail, t.BuyerName).
			WithOrder(t.OrderID, t.MatchID).
			With("match_title", t.MatchTitle).
			With("start_time", t.StartTime.In(r.loc).Format("Mon, 02 Jan 2006 15:04 MST")).
			With("venue", t.VenueName)

		if err := r.publisher.Publish(ctx, n); err != nil {
			logger.GetDefault().Warn("Failed to publish match reminder",
				slog.String("order_id", t.OrderID), slog.Any("error", err))
			continue
		}
		sent++
	}
	return sent, nil
}
