package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const sendTimeout = 30 * time.Second

type MailJob struct {
	Mail     Mail
	QueuedAt time.Time
}

type Worker struct {
	ID         int
	WorkerPool chan chan MailJob
	JobChannel chan MailJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan MailJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan MailJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(MailJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers int
	QueueSize  int
}

// Dispatcher sends mails on a bounded worker pool. Notify never blocks the caller.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger

	jobQueue   chan MailJob
	workerPool chan chan MailJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(mailer Mailer, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	d := &Dispatcher{
		mailer:     mailer,
		logger:     logger,
		jobQueue:   make(chan MailJob, queueSize),
		workerPool: make(chan chan MailJob, maxWorkers),
		maxWorkers: maxWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < maxWorkers; i++ {
		NewWorker(i, d.workerPool, logger).Start(ctx, &d.wg, d.process)
	}

	d.wg.Add(1)
	go d.dispatch()

	logger.Info("mail dispatcher started", "max_workers", maxWorkers, "queue_size", queueSize)
	return d
}

// Notify enqueues the mail. A full queue or a stopped dispatcher drops it with a log line.
func (d *Dispatcher) Notify(_ context.Context, mail Mail) {
	if err := mail.Validate(); err != nil {
		d.logger.Warn("mail dropped: invalid", "subject", mail.Subject, "error", err)
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("mail dropped: dispatcher stopped", "subject", mail.Subject)
		return
	}

	select {
	case d.jobQueue <- MailJob{Mail: mail, QueuedAt: time.Now()}:
	default:
		d.logger.Warn("mail dropped: queue full", "subject", mail.Subject, "queue_capacity", cap(d.jobQueue))
	}
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()
	// queued jobs are drained before the workers are released
	defer d.cancel()

	for job := range d.jobQueue {
		select {
		case jobChannel := <-d.workerPool:
			select {
			case jobChannel <- job:
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			return
		}
	}
	d.logger.Info("mail dispatcher drained")
}

func (d *Dispatcher) process(job MailJob) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.mailer.SendMail(ctx, job.Mail); err != nil {
		d.logger.Error("mail send failed",
			"to", job.Mail.To,
			"subject", job.Mail.Subject,
			"error", err)
		return
	}
	d.logger.Debug("mail sent", "to", job.Mail.To, "subject", job.Mail.Subject, "queued_for", time.Since(job.QueuedAt))
}

// Shutdown stops intake, drains the queue and waits for workers until ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobQueue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("mail dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}
