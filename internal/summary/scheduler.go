package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/projecthub/pkg/logger"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the job on a cron spec in its own goroutine.
type Scheduler struct {
	cron    *cron.Cron
	job     *Job
	timeout time.Duration
	logger  *slog.Logger
}

func NewScheduler(spec string, job *Job, logger *slog.Logger) (*Scheduler, error) {
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		job:     job,
		timeout: 30 * time.Minute,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid weekly summary schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("weekly summary scheduled", "next_run", e.Next.Format(time.RFC3339))
	}
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	lg := s.logger.With("run_id", uuid.NewString())
	ctx, cancel := context.WithTimeout(logger.Into(context.Background(), lg), s.timeout)
	defer cancel()
	if _, err := s.job.Run(ctx); err != nil {
		lg.Error("weekly summary failed", "error", err)
	}
}

// cronLogger adapts slog to cron's logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
