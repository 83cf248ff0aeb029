package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/analytics"
)

// Reporter delivers a finished report somewhere a human will read it.
type Reporter interface {
	SendReport(ctx context.Context, text string) error
}

// LogReporter writes reports to the log; used when no admin chat is configured.
type LogReporter struct {
	Log zerolog.Logger
}

func (r LogReporter) SendReport(_ context.Context, text string) error {
	r.Log.Info().Str("report", text).Msg("daily report")
	return nil
}

// DailyReport builds the job that summarizes the dashboard stats and hands them to rep.
func DailyReport(engine *analytics.Engine, rep Reporter) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return rep.SendReport(ctx, analytics.ReportSummary(engine.Stats()))
	}
}
