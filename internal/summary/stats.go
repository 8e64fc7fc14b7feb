package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/jmoiron/sqlx"
)

const taskDone = "done"

// StatsRepository runs the weekly aggregates as plain SQL.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type countRow struct {
	UserID int64 `db:"user_id"`
	Count  int64 `db:"count"`
}

type hoursRow struct {
	UserID int64   `db:"user_id"`
	Hours  float64 `db:"hours"`
}

// WeeklyStats returns per-user counters for activity since the given time.
func (r *StatsRepository) WeeklyStats(ctx context.Context, since time.Time) (map[int64]notification.WeeklyStats, error) {
	out := map[int64]notification.WeeklyStats{}

	var open []countRow
	err := r.db.SelectContext(ctx, &open, r.db.Rebind(
		`SELECT assignee_id AS user_id, COUNT(*) AS count
		   FROM tasks
		  WHERE assignee_id IS NOT NULL AND status <> ?
		  GROUP BY assignee_id`), taskDone)
	if err != nil {
		return nil, fmt.Errorf("open tasks: %w", err)
	}
	for _, row := range open {
		s := out[row.UserID]
		s.OpenTasks = row.Count
		out[row.UserID] = s
	}

	var completed []countRow
	err = r.db.SelectContext(ctx, &completed, r.db.Rebind(
		`SELECT assignee_id AS user_id, COUNT(*) AS count
		   FROM tasks
		  WHERE assignee_id IS NOT NULL AND status = ? AND completed_at >= ?
		  GROUP BY assignee_id`), taskDone, since)
	if err != nil {
		return nil, fmt.Errorf("completed tasks: %w", err)
	}
	for _, row := range completed {
		s := out[row.UserID]
		s.CompletedTasks = row.Count
		out[row.UserID] = s
	}

	var hours []hoursRow
	err = r.db.SelectContext(ctx, &hours, r.db.Rebind(
		`SELECT user_id, COALESCE(SUM(hours), 0) AS hours
		   FROM work_logs
		  WHERE date >= ?
		  GROUP BY user_id`), since)
	if err != nil {
		return nil, fmt.Errorf("hours logged: %w", err)
	}
	for _, row := range hours {
		s := out[row.UserID]
		s.HoursLogged = row.Hours
		out[row.UserID] = s
	}
	return out, nil
}
