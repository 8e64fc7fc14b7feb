package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/projecthub/internal/core/events"
	"github.com/frahmantamala/projecthub/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
	})

	It("delivers published events to every subscriber", func() {
		var calls atomic.Int32
		for i := 0; i < 2; i++ {
			bus.Subscribe(events.EventTypeMessageSent, func(ctx context.Context, e events.Event) error {
				Expect(e.(*events.MessageSentEvent).ConversationID).To(Equal(int64(9)))
				calls.Add(1)
				return nil
			})
		}

		Expect(bus.Publish(context.Background(), events.NewMessageSentEvent(9, 1, 2, []int64{3}, nil))).To(Succeed())
		Eventually(calls.Load).Should(Equal(int32(2)))
	})

	It("keeps handler contexts alive after the publisher's context ends", func() {
		errCh := make(chan error, 1)
		bus.Subscribe(events.EventTypeReportFiled, func(ctx context.Context, e events.Event) error {
			errCh <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewReportFiledEvent(1, "hse", "Spill", "high", 2))).To(Succeed())
		Eventually(errCh).Should(Receive(BeNil()))
	})

	It("surfaces handler errors on synchronous publish", func() {
		bus.Subscribe("custom", func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})
		err := bus.PublishSync(context.Background(), events.BaseEvent{ID: "1", Type: "custom"})
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("runs every synchronous subscriber and joins their errors", func() {
		var ran atomic.Int32
		bus.Subscribe("custom", func(ctx context.Context, e events.Event) error {
			ran.Add(1)
			return errors.New("first")
		})
		bus.Subscribe("custom", func(ctx context.Context, e events.Event) error {
			ran.Add(1)
			panic("second")
		})

		err := bus.PublishSync(context.Background(), events.BaseEvent{ID: "2", Type: "custom"})

		Expect(ran.Load()).To(Equal(int32(2)))
		Expect(err).To(MatchError(ContainSubstring("first")))
		Expect(err).To(MatchError(ContainSubstring("handler panicked: second")))
	})

	It("drains asynchronous handlers before returning", func() {
		release := make(chan struct{})
		var finished atomic.Bool
		bus.Subscribe(events.EventTypeMessageSent, func(ctx context.Context, e events.Event) error {
			<-release
			finished.Store(true)
			return nil
		})
		Expect(bus.Publish(context.Background(), events.NewMessageSentEvent(1, 1, 2, nil, nil))).To(Succeed())

		short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		Expect(bus.Drain(short)).To(MatchError(ContainSubstring("still running")))

		close(release)
		Expect(bus.Drain(context.Background())).To(Succeed())
		Expect(finished.Load()).To(BeTrue())
	})

	It("is a no-op without subscribers", func() {
		Expect(bus.Publish(context.Background(), events.BaseEvent{Type: "nobody"})).To(Succeed())
	})
})
