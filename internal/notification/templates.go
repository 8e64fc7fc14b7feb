package notification

import (
	"fmt"
	"html"
	"strings"
)

// Recipient is the minimal addressee shape every template needs.
type Recipient struct {
	Name  string
	Email string
}

func layout(title, body string) string {
	return fmt.Sprintf(`<html><body style="font-family:sans-serif"><h2>%s</h2>%s<p style="color:#888">projecthub</p></body></html>`,
		html.EscapeString(title), body)
}

func TaskAssigned(to Recipient, taskTitle, projectName string) Mail {
	return Mail{
		To:      []string{to.Email},
		Subject: fmt.Sprintf("Task assigned: %s", taskTitle),
		HTML: layout("New task assigned", fmt.Sprintf(
			"<p>Hi %s,</p><p>You have been assigned <b>%s</b> in project <b>%s</b>.</p>",
			html.EscapeString(to.Name), html.EscapeString(taskTitle), html.EscapeString(projectName))),
	}
}

func TaskStatusChanged(to []Recipient, taskTitle, from, status string) Mail {
	return Mail{
		To:      emails(to),
		Subject: fmt.Sprintf("Task %s is now %s", taskTitle, status),
		HTML: layout("Task status changed", fmt.Sprintf(
			"<p><b>%s</b> moved from <i>%s</i> to <i>%s</i>.</p>",
			html.EscapeString(taskTitle), html.EscapeString(from), html.EscapeString(status))),
	}
}

func LeaveReviewed(to Recipient, status, note string, start, end string) Mail {
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your leave request from %s to %s was <b>%s</b>.</p>",
		html.EscapeString(to.Name), start, end, html.EscapeString(status))
	if strings.TrimSpace(note) != "" {
		body += fmt.Sprintf("<p>Note: %s</p>", html.EscapeString(note))
	}
	return Mail{
		To:      []string{to.Email},
		Subject: fmt.Sprintf("Leave request %s", status),
		HTML:    layout("Leave request update", body),
	}
}

func TrainingCompleted(to []Recipient, trainingTitle string) Mail {
	return Mail{
		To:      emails(to),
		Subject: fmt.Sprintf("Training completed: %s", trainingTitle),
		HTML: layout("Training completed", fmt.Sprintf(
			"<p>The training <b>%s</b> has been marked as completed. Thank you for taking part.</p>",
			html.EscapeString(trainingTitle))),
	}
}

func ReportFiled(to []Recipient, category, title, severity string) Mail {
	return Mail{
		To:      emails(to),
		Subject: fmt.Sprintf("New %s report: %s", strings.ToUpper(category), title),
		HTML: layout("New report filed", fmt.Sprintf(
			"<p>A <b>%s</b> severity report was filed: <b>%s</b>.</p>",
			html.EscapeString(severity), html.EscapeString(title))),
	}
}

type WeeklyStats struct {
	OpenTasks      int64
	CompletedTasks int64
	HoursLogged    float64
}

func WeeklySummary(to Recipient, stats WeeklyStats) Mail {
	return Mail{
		To:      []string{to.Email},
		Subject: "Your weekly summary",
		HTML: layout("Weekly summary", fmt.Sprintf(
			"<p>Hi %s,</p><ul><li>Open tasks assigned to you: %d</li><li>Tasks completed in the last 7 days: %d</li><li>Hours logged in the last 7 days: %.1f</li></ul>",
			html.EscapeString(to.Name), stats.OpenTasks, stats.CompletedTasks, stats.HoursLogged)),
	}
}

func emails(rs []Recipient) []string {
	seen := make(map[string]struct{}, len(rs))
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		if r.Email == "" {
			continue
		}
		if _, ok := seen[r.Email]; ok {
			continue
		}
		seen[r.Email] = struct{}{}
		out = append(out, r.Email)
	}
	return out
}
