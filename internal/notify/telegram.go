// Package notify pushes newly seen jobs to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobwatch/internal/models"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Sender is the part of *tele.Bot the notifier needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Telegram struct {
	sender Sender
	chat   tele.ChatID
	policy *bluemonday.Policy
	pause  time.Duration
	logger *zap.Logger
}

// NewBot creates an offline bot: the watcher only sends, it never polls.
func NewBot(token string) (*tele.Bot, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return b, nil
}

func NewTelegram(sender Sender, chatID int64, logger *zap.Logger) *Telegram {
	return &Telegram{
		sender: sender,
		chat:   tele.ChatID(chatID),
		policy: bluemonday.StrictPolicy(),
		pause:  500 * time.Millisecond,
		logger: logger,
	}
}

// WithPause sets the delay between two job messages.
func (t *Telegram) WithPause(d time.Duration) *Telegram {
	t.pause = d
	return t
}

// NotifyJobs sends a summary followed by one message per job and returns
// the ids of the jobs that were delivered. A failed job message is logged
// and skipped; a failed summary aborts.
func (t *Telegram) NotifyJobs(ctx context.Context, profile string, jobs []models.Job) ([]int64, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	summary := fmt.Sprintf("🔔 <b>New jobs for %s</b>\n\nFound: %d", t.clean(profile), len(jobs))
	if _, err := t.sender.Send(t.chat, summary, tele.ModeHTML); err != nil {
		return nil, fmt.Errorf("send summary: %w", err)
	}

	delivered := make([]int64, 0, len(jobs))
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		if _, err := t.sender.Send(t.chat, t.FormatJob(&jobs[i]), tele.ModeHTML, tele.NoPreview); err != nil {
			t.logger.Error("failed to send job notification",
				zap.Int64("job_id", jobs[i].ID),
				zap.Error(err),
			)
			continue
		}
		delivered = append(delivered, jobs[i].ID)

		if i < len(jobs)-1 && t.pause > 0 {
			select {
			case <-ctx.Done():
				return delivered, ctx.Err()
			case <-time.After(t.pause):
			}
		}
	}

	return delivered, nil
}

// FormatJob renders a job as Telegram HTML. Backend text is sanitized, it
// comes from scraped pages.
func (t *Telegram) FormatJob(job *models.Job) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("<b>%s</b>", t.clean(job.Title)))
	if company := models.StringValue(job.Company); company != "" {
		sb.WriteString(fmt.Sprintf(" at %s", t.clean(company)))
	}
	sb.WriteString("\n")

	if location := models.StringValue(job.Location); location != "" {
		sb.WriteString(fmt.Sprintf("📍 %s\n", t.clean(location)))
	}

	if posted := models.StringValue(job.PostedDate); posted != "" {
		sb.WriteString(fmt.Sprintf("📅 %s\n", t.clean(posted)))
	}

	if job.JobLink != "" {
		sb.WriteString(fmt.Sprintf("\n<a href=\"%s\">Open</a>", t.clean(job.JobLink)))
	}

	return sb.String()
}

func (t *Telegram) clean(s string) string {
	return strings.TrimSpace(t.policy.Sanitize(s))
}
