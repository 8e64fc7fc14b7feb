package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/projecthub/internal/core/events"
	"github.com/frahmantamala/projecthub/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish sample domain events on a local bus to inspect their payloads`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event",
	Long:  `Publish a sample report.filed or message.sent event (or any custom type) and log what subscribers receive`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(cmd.Context(), args[0])
	},
}

var eventData string

func publishSampleEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)

	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("subscriber received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	event := sampleEvent(eventType)
	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func sampleEvent(eventType string) events.Event {
	switch eventType {
	case events.EventTypeReportFiled:
		return events.NewReportFiledEvent(1, "hse", eventData, "high", 1)
	case events.EventTypeMessageSent:
		return events.NewMessageSentEvent(1, 1, 1, []int64{2}, map[string]string{"content": eventData})
	default:
		return events.BaseEvent{
			ID:        fmt.Sprintf("cli-%d", time.Now().UnixNano()),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"message": eventData, "source": "cli-command"},
		}
	}
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "sample event", "text placed in the event payload")
	eventCmd.AddCommand(publishEventCmd)
}
