package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jobwatch/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type fakeSender struct {
	sent   []string
	failOn int
}

func (f *fakeSender) Send(_ tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.sent = append(f.sent, what.(string))
	if f.failOn > 0 && len(f.sent) == f.failOn {
		return nil, errors.New("telegram down")
	}
	return &tele.Message{}, nil
}

func strPtr(s string) *string { return &s }

func TestFormatJob_Sanitizes(t *testing.T) {
	tg := NewTelegram(&fakeSender{}, 1, zap.NewNop())
	msg := tg.FormatJob(&models.Job{
		ID:       1,
		Title:    "Go <script>alert(1)</script>Engineer",
		Company:  strPtr("<b>Acme</b>"),
		Location: strPtr("Berlin"),
		JobLink:  "https://example.com/jobs/1",
	})

	if strings.Contains(msg, "<script>") || strings.Contains(msg, "<b>Acme</b>") {
		t.Errorf("unsanitized markup in %q", msg)
	}
	if !strings.Contains(msg, "Acme") || !strings.Contains(msg, "Berlin") {
		t.Errorf("missing fields in %q", msg)
	}
	if !strings.Contains(msg, `href="https://example.com/jobs/1"`) {
		t.Errorf("missing link in %q", msg)
	}
}

func TestNotifyJobs(t *testing.T) {
	s := &fakeSender{}
	tg := NewTelegram(s, 1, zap.NewNop()).WithPause(0)

	jobs := []models.Job{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}
	delivered, err := tg.NotifyJobs(context.Background(), "default", jobs)
	if err != nil {
		t.Fatalf("NotifyJobs error: %v", err)
	}
	if len(s.sent) != 3 {
		t.Errorf("sent %d messages, want summary + 2", len(s.sent))
	}
	if len(delivered) != 2 || delivered[0] != 1 || delivered[1] != 2 {
		t.Errorf("delivered = %v, want [1 2]", delivered)
	}
}

func TestNotifyJobs_JobFailureSkipped(t *testing.T) {
	s := &fakeSender{failOn: 2}
	tg := NewTelegram(s, 1, zap.NewNop()).WithPause(0)

	jobs := []models.Job{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}
	delivered, err := tg.NotifyJobs(context.Background(), "default", jobs)
	if err != nil {
		t.Fatalf("NotifyJobs error: %v", err)
	}
	if len(s.sent) != 3 {
		t.Errorf("sent %d messages, want the remaining job still sent", len(s.sent))
	}
	if len(delivered) != 1 || delivered[0] != 2 {
		t.Errorf("delivered = %v, want only job 2", delivered)
	}
}

func TestNotifyJobs_SummaryFailureAborts(t *testing.T) {
	s := &fakeSender{failOn: 1}
	tg := NewTelegram(s, 1, zap.NewNop()).WithPause(0)

	delivered, err := tg.NotifyJobs(context.Background(), "default", []models.Job{{ID: 1}})
	if err == nil {
		t.Fatal("expected error when the summary fails")
	}
	if len(delivered) != 0 {
		t.Errorf("delivered = %v after failed summary", delivered)
	}
	if len(s.sent) != 1 {
		t.Errorf("sent %d messages after failed summary", len(s.sent))
	}
}

func TestNotifyJobs_Empty(t *testing.T) {
	s := &fakeSender{}
	tg := NewTelegram(s, 1, zap.NewNop())
	if _, err := tg.NotifyJobs(context.Background(), "default", nil); err != nil {
		t.Fatalf("NotifyJobs error: %v", err)
	}
	if len(s.sent) != 0 {
		t.Errorf("sent %d messages for no jobs", len(s.sent))
	}
}

func TestNotifyJobs_CanceledKeepsDelivered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &cancelingSender{cancelAt: 2, cancel: cancel}
	tg := NewTelegram(s, 1, zap.NewNop()).WithPause(0)

	jobs := []models.Job{{ID: 1}, {ID: 2}, {ID: 3}}
	delivered, err := tg.NotifyJobs(ctx, "default", jobs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(delivered) != 1 || delivered[0] != 1 {
		t.Errorf("delivered = %v, want [1]", delivered)
	}
}

// cancelingSender cancels the run once cancelAt messages went out.
type cancelingSender struct {
	n        int
	cancelAt int
	cancel   context.CancelFunc
}

func (c *cancelingSender) Send(tele.Recipient, interface{}, ...interface{}) (*tele.Message, error) {
	c.n++
	if c.n == c.cancelAt {
		c.cancel()
	}
	return &tele.Message{}, nil
}
