package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/analytics"
	"sales-ai-brain/internal/conversation"
)

type captureReporter struct{ texts []string }

func (c *captureReporter) SendReport(_ context.Context, text string) error {
	c.texts = append(c.texts, text)
	return nil
}

func TestDailyReport(t *testing.T) {
	store := conversation.NewStore()
	now := time.Now()
	store.Append(conversation.Message{UserID: "1", Body: "a", RiskScore: 90, Timestamp: now.Add(-time.Minute)})
	rep := &captureReporter{}

	s := New("", zerolog.Nop())
	s.SetReportFunction(DailyReport(analytics.NewEngine(store, nil), rep))
	s.RunNow()

	if len(rep.texts) != 1 || !strings.Contains(rep.texts[0], "Mesajlar: 1") {
		t.Fatalf("report: %v", rep.texts)
	}
}

func TestStart_RegistersJob(t *testing.T) {
	s := New("*/5 * * * *", zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("start without job: %v", err)
	}
	if s.IsRunning() {
		t.Fatalf("no job should be registered without a report function")
	}

	s.SetReportFunction(func(context.Context) error { return errors.New("unused") })
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()
	if !s.IsRunning() {
		t.Fatalf("job not registered")
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := New("not a cron", zerolog.Nop())
	s.SetReportFunction(func(context.Context) error { return nil })
	if err := s.Start(); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
}
