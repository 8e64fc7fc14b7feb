package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/events"
	coreuser "github.com/frahmantamala/projecthub/internal/core/user"
	"github.com/frahmantamala/projecthub/internal/notification"
)

type RoleDirectory interface {
	ByRoles(ctx context.Context, roles ...string) ([]*coreuser.Summary, error)
}

// FiledNotifier mails admins and managers when a report is filed.
type FiledNotifier struct {
	users    RoleDirectory
	notifier notification.Notifier
	logger   *slog.Logger
}

func NewFiledNotifier(users RoleDirectory, notifier notification.Notifier, logger *slog.Logger) *FiledNotifier {
	return &FiledNotifier{users: users, notifier: notifier, logger: logger}
}

func (f *FiledNotifier) Handle(ctx context.Context, event events.Event) error {
	filed, ok := event.(*events.ReportFiledEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, events.EventTypeReportFiled)
	}

	users, err := f.users.ByRoles(ctx, auth.RoleAdmin, auth.RoleManager)
	if err != nil {
		return fmt.Errorf("load report recipients: %w", err)
	}
	to := make([]notification.Recipient, 0, len(users))
	for _, u := range users {
		if u.ID == filed.ReportedBy {
			continue
		}
		to = append(to, notification.Recipient{Name: u.FullName, Email: u.Email})
	}
	if len(to) == 0 {
		f.logger.Debug("no recipients for filed report", "report_id", filed.ReportID)
		return nil
	}
	f.notifier.Notify(ctx, notification.ReportFiled(to, filed.Category, filed.Title, filed.Severity))
	return nil
}
