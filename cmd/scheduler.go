package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/internal/summary"
	"github.com/spf13/cobra"
)

var runOnce bool

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the weekly summary scheduler",
	Long:  `Run the weekly summary mail job on its cron schedule, or once with --once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScheduler()
	},
}

func init() {
	schedulerCmd.Flags().BoolVar(&runOnce, "once", false, "run the weekly summary immediately and exit")
}

func runScheduler() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := initLogger(cfg.Observability.Logging)

	db, gdb, err := initDB(cfg.Database, false)
	if err != nil {
		return err
	}
	defer db.Close()

	dispatcher := notification.NewDispatcher(notification.NewMailer(cfg.Mail, lg), notification.DispatcherConfig{
		MaxWorkers: cfg.Mail.MaxWorkers,
		QueueSize:  cfg.Mail.QueueSize,
	}, lg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := dispatcher.Shutdown(ctx); err != nil {
			lg.Error("mail dispatcher shutdown error", "error", err)
		}
	}()

	directory := coreuser.NewDirectory(gdb)

	if runOnce {
		job := summary.NewJob(summary.NewStatsRepository(db), directory, dispatcher, lg)
		sent, err := job.Run(context.Background())
		if err != nil {
			return fmt.Errorf("weekly summary: %w", err)
		}
		lg.Info("weekly summary finished", "mails_queued", sent)
		return nil
	}

	scheduler, err := newWeeklySummaryScheduler(cfg.Scheduler, db, directory, dispatcher, lg)
	if err != nil {
		return err
	}
	scheduler.Start()
	lg.Info("scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("received signal, shutting down scheduler", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return scheduler.Stop(ctx)
}
