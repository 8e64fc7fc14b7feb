package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/projecthub/internal/notification"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []notification.Mail
	fail  bool
	block chan struct{}
}

func (r *recordingMailer) SendMail(_ context.Context, m notification.Mail) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, m)
	return nil
}

func (r *recordingMailer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

var _ = Describe("Dispatcher", func() {
	var mailer *recordingMailer

	BeforeEach(func() {
		mailer = &recordingMailer{}
	})

	mail := func(subject string) notification.Mail {
		return notification.Mail{To: []string{"a@example.com"}, Subject: subject, HTML: "<p>x</p>"}
	}

	It("delivers queued mails and drains on shutdown", func() {
		d := notification.NewDispatcher(mailer, notification.DispatcherConfig{MaxWorkers: 2, QueueSize: 10}, logger.Discard())
		for i := 0; i < 5; i++ {
			d.Notify(context.Background(), mail("hello"))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(d.Shutdown(ctx)).To(Succeed())
		Expect(mailer.count()).To(Equal(5))
	})

	It("drops mails after shutdown without panicking", func() {
		d := notification.NewDispatcher(mailer, notification.DispatcherConfig{MaxWorkers: 1, QueueSize: 1}, logger.Discard())
		Expect(d.Shutdown(context.Background())).To(Succeed())
		Expect(func() { d.Notify(context.Background(), mail("late")) }).NotTo(Panic())
		Expect(mailer.count()).To(Equal(0))
	})

	It("never blocks the caller when the queue is full", func() {
		mailer.block = make(chan struct{})
		d := notification.NewDispatcher(mailer, notification.DispatcherConfig{MaxWorkers: 1, QueueSize: 1}, logger.Discard())

		done := make(chan struct{})
		go func() {
			for i := 0; i < 20; i++ {
				d.Notify(context.Background(), mail("flood"))
			}
			close(done)
		}()
		Eventually(done).Should(BeClosed())

		close(mailer.block)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(d.Shutdown(ctx)).To(Succeed())
		Expect(mailer.count()).To(BeNumerically("<", 20))
	})

	It("logs and continues when sending fails", func() {
		mailer.fail = true
		d := notification.NewDispatcher(mailer, notification.DispatcherConfig{MaxWorkers: 1, QueueSize: 5}, logger.Discard())
		d.Notify(context.Background(), mail("fails"))
		Expect(d.Shutdown(context.Background())).To(Succeed())
	})

	It("ignores mails without recipients", func() {
		d := notification.NewDispatcher(mailer, notification.DispatcherConfig{}, logger.Discard())
		d.Notify(context.Background(), notification.Mail{Subject: "nobody"})
		Expect(d.Shutdown(context.Background())).To(Succeed())
		Expect(mailer.count()).To(Equal(0))
	})
})

var _ = Describe("Templates", func() {
	It("de-duplicates recipients and escapes content", func() {
		m := notification.TaskStatusChanged([]notification.Recipient{
			{Name: "A", Email: "a@example.com"},
			{Name: "A again", Email: "a@example.com"},
			{Name: "B", Email: "b@example.com"},
		}, "<script>", "todo", "done")

		Expect(m.To).To(Equal([]string{"a@example.com", "b@example.com"}))
		Expect(m.HTML).NotTo(ContainSubstring("<script>"))
		Expect(m.HTML).To(ContainSubstring("&lt;script&gt;"))
	})

	It("renders the weekly numbers", func() {
		m := notification.WeeklySummary(notification.Recipient{Name: "Ann", Email: "ann@example.com"},
			notification.WeeklyStats{OpenTasks: 3, CompletedTasks: 2, HoursLogged: 12.5})
		Expect(m.HTML).To(ContainSubstring("Open tasks assigned to you: 3"))
		Expect(m.HTML).To(ContainSubstring("12.5"))
	})

	It("uses the log mailer when mail is disabled", func() {
		m := notification.NewLogMailer(logger.Discard())
		Expect(m.SendMail(context.Background(), notification.Mail{To: []string{"x@example.com"}, Subject: "s"})).To(Succeed())
	})
})
