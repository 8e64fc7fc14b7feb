package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

const Window = 7 * 24 * time.Hour

type StatsSource interface {
	WeeklyStats(ctx context.Context, since time.Time) (map[int64]notification.WeeklyStats, error)
}

type UserSource interface {
	ActiveUsers(ctx context.Context) ([]*coreuser.Summary, error)
}

// Job mails every active user their numbers for the last seven days.
type Job struct {
	stats    StatsSource
	users    UserSource
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewJob(stats StatsSource, users UserSource, notifier notification.Notifier, lg *slog.Logger) *Job {
	return &Job{
		stats:    stats,
		users:    users,
		notifier: notifier,
		logger:   lg,
		now:      time.Now,
	}
}

// Run returns the number of mails queued.
func (j *Job) Run(ctx context.Context) (int, error) {
	started := j.now()
	since := started.Add(-Window)

	users, err := j.users.ActiveUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active users: %w", err)
	}
	stats, err := j.stats.WeeklyStats(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("load weekly stats: %w", err)
	}

	sent := 0
	for _, u := range users {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if u.Email == "" {
			continue
		}
		j.notifier.Notify(ctx, notification.WeeklySummary(notification.Recipient{Name: u.FullName, Email: u.Email}, stats[u.ID]))
		sent++
	}
	logger.FromOr(ctx, j.logger).With("job", "weekly_summary").Info("weekly summary queued", "mails", sent, "since", since.Format(time.RFC3339), "duration", time.Since(started))
	return sent, nil
}
