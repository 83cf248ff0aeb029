package analytics

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"sales-ai-brain/internal/conversation"
)

var now = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func storeWith(msgs ...conversation.Message) *conversation.Store {
	s := conversation.NewStore()
	for _, m := range msgs {
		s.Append(m)
	}
	return s
}

func at(user string, risk int, ago time.Duration) conversation.Message {
	return conversation.Message{UserID: user, Username: "@" + user, Body: "msg from " + user, RiskScore: risk, Timestamp: now.Add(-ago)}
}

func TestScenario_OneUserEscalates(t *testing.T) {
	s := storeWith(
		at("U1", 30, 3*time.Minute),
		at("U1", 65, 2*time.Minute),
		at("U1", 85, time.Minute),
	)
	e := NewEngine(s, func() time.Time { return now })

	stats := e.Stats()
	if stats.DangerUsers != 1 || stats.WarningUsers != 0 {
		t.Fatalf("danger=%d warning=%d", stats.DangerUsers, stats.WarningUsers)
	}
	if stats.TotalUsers != 1 || stats.MessagesToday != 3 || stats.MessagesHour != 3 {
		t.Fatalf("stats: %+v", stats)
	}

	alerts := e.Alerts()
	if len(alerts) != 1 || alerts[0].Level != "high" || alerts[0].RiskScore != 85 {
		t.Fatalf("alerts: %+v", alerts)
	}
	if alerts[0].RiskReasons == nil {
		t.Fatalf("risk reasons must default to an empty list")
	}
}

func TestWindows_ExcludeCutoffInstant(t *testing.T) {
	v := storeWith(
		at("hour", 75, AlertWindow),      // exactly at the alert cutoff
		at("day", 10, StatsWindow),       // exactly at the stats cutoff
		at("chat", 10, ActiveChatWindow), // exactly at the active-chat cutoff
		at("inside", 75, AlertWindow-time.Nanosecond),
	).View(now.Add(-48 * time.Hour))

	alerts := ComputeAlerts(v, now)
	if len(alerts) != 1 || alerts[0].UserID != "inside" {
		t.Fatalf("alerts: %+v", alerts)
	}
	stats := ComputeStats(v, now)
	if stats.MessagesToday != 3 {
		t.Fatalf("messages today: %d", stats.MessagesToday)
	}
	if stats.MessagesHour != 1 {
		t.Fatalf("messages hour: %d", stats.MessagesHour)
	}
	for _, c := range ComputeActiveChats(v, now) {
		if c.UserID == "chat" || c.UserID == "day" {
			t.Fatalf("%s should be outside the active window", c.UserID)
		}
	}
}

func TestAlerts_SkipBotsAndCapAtTen(t *testing.T) {
	var msgs []conversation.Message
	bot := at("bot", 99, time.Minute)
	bot.IsBot = true
	msgs = append(msgs, bot)
	for i := 0; i < 15; i++ {
		msgs = append(msgs, at(fmt.Sprintf("u%02d", i), 71+i, time.Duration(30-i)*time.Minute))
	}
	v := storeWith(msgs...).View(now.Add(-StatsWindow))
	alerts := ComputeAlerts(v, now)
	if len(alerts) != MaxAlerts {
		t.Fatalf("want %d alerts, got %d", MaxAlerts, len(alerts))
	}
	if alerts[0].UserID != "u00" {
		t.Fatalf("alerts should keep append order, first=%s", alerts[0].UserID)
	}
	for _, a := range alerts {
		if a.UserID == "bot" {
			t.Fatalf("bot message raised an alert")
		}
		if (a.RiskScore > 80) != (a.Level == "high") {
			t.Fatalf("level mismatch: %+v", a)
		}
	}
}

func TestActiveChats_GroupingAndPreview(t *testing.T) {
	long := at("u1", 90, 10*time.Minute)
	long.Body = strings.Repeat("ş", 121)
	recent := at("u1", 65, 2*time.Minute)
	recent.Body = strings.Repeat("ş", 121)
	botReply := at("u1", 0, time.Minute)
	botReply.IsBot = true
	botReply.Body = "ok"
	other := at("u2", 10, 30*time.Minute)

	s := storeWith(long, other, recent, botReply)
	s.SetIntervention("u1", true, now)
	v := s.View(now.Add(-StatsWindow))

	chats := ComputeActiveChats(v, now)
	if len(chats) != 2 || chats[0].UserID != "u1" {
		t.Fatalf("order: %+v", chats)
	}
	c := chats[0]
	if c.MessageCount != 3 || c.RiskScore != 90 || c.DangerCount != 1 || c.WarningCount != 1 {
		t.Fatalf("counts: %+v", c)
	}
	if !c.HasDanger || !c.HasWarning || !c.InterventionMode || c.BotStopped {
		t.Fatalf("flags: %+v", c)
	}
	if c.Unread != 1 {
		t.Fatalf("unread: %d", c.Unread)
	}
	if c.LastMessage != "ok" || !c.IsBot {
		t.Fatalf("last message should be the bot reply: %+v", c)
	}

	p := preview(strings.Repeat("ş", 121), chatPreviewLen)
	if len([]rune(p)) != chatPreviewLen || !strings.HasSuffix(p, "...") {
		t.Fatalf("preview: %d runes", len([]rune(p)))
	}
	if preview(strings.Repeat("a", 120), chatPreviewLen) != strings.Repeat("a", 120) {
		t.Fatalf("120 runes must not be truncated")
	}
}

func TestBotStatus(t *testing.T) {
	s := storeWith(at("a", 0, time.Minute), at("b", 0, time.Minute), at("c", 0, time.Minute), at("d", 0, time.Minute))
	bs := ComputeBotStatus(s.View(now.Add(-StatsWindow)), now)
	if bs.Total != 0 || bs.Active != 0 || bs.Stopped != 0 || bs.Status != "active" {
		t.Fatalf("untoggled users are not counted: %+v", bs)
	}

	s.SetBotStopped("a", true, now)
	bs = ComputeBotStatus(s.View(now.Add(-StatsWindow)), now)
	if bs.Total != 1 || bs.Active != 0 || bs.Stopped != 1 || bs.Status != "warning" {
		t.Fatalf("one stopped flag: %+v", bs)
	}
	st := ComputeStats(s.View(now.Add(-StatsWindow)), now)
	if st.ActiveBots != 0 || st.StoppedBots != 1 {
		t.Fatalf("stats census: %+v", st)
	}

	s.SetBotStopped("b", false, now)
	bs = ComputeBotStatus(s.View(now.Add(-StatsWindow)), now)
	if bs.Total != 2 || bs.Active != 1 || bs.Stopped != 1 || bs.Status != "active" {
		t.Fatalf("tie should stay active: %+v", bs)
	}
}

func TestInterventions_KnownUsersOnly(t *testing.T) {
	s := storeWith(at("a", 0, time.Minute))
	s.SetIntervention("a", true, now.Add(-time.Minute))
	s.SetIntervention("ghost", true, now)
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("u%02d", i)
		s.Append(at(id, 0, time.Minute))
		s.SetIntervention(id, true, now.Add(time.Duration(i)*time.Second))
	}
	s.SetIntervention("u11", false, now.Add(time.Hour))

	got := ComputeInterventions(s.View(now.Add(-StatsWindow)), now)
	if len(got) != MaxInterventions {
		t.Fatalf("want %d, got %d", MaxInterventions, len(got))
	}
	if got[0].UserID != "u10" {
		t.Fatalf("newest first, got %s", got[0].UserID)
	}
	for _, iv := range got {
		if iv.UserID == "ghost" || iv.UserID == "u11" {
			t.Fatalf("unexpected %s", iv.UserID)
		}
		if iv.Reason != "high_risk" || iv.Status != "active" {
			t.Fatalf("fields: %+v", iv)
		}
	}
}

func TestHistory(t *testing.T) {
	var msgs []conversation.Message
	for i := 0; i < 60; i++ {
		msgs = append(msgs, at("u1", i, time.Duration(60-i)*time.Minute))
	}
	admin := at("u1", 0, 0)
	admin.IsAdmin = true
	msgs = append(msgs, admin)
	e := NewEngine(storeWith(msgs...), func() time.Time { return now })

	h, ok := e.History("u1")
	if !ok {
		t.Fatalf("history missing")
	}
	if len(h.Messages) != HistoryLimit || h.Stats.Total != 61 {
		t.Fatalf("messages=%d total=%d", len(h.Messages), h.Stats.Total)
	}
	if h.Stats.MaxRisk != 59 || h.Stats.RiskLevel != "low" {
		t.Fatalf("stats: %+v", h.Stats)
	}
	if last := h.Messages[len(h.Messages)-1]; last.Sender != adminLabel || last.SenderType != "admin" || last.Time != "12:00" {
		t.Fatalf("last entry: %+v", last)
	}

	if _, ok := e.History("nobody"); ok {
		t.Fatalf("unknown user should be not found")
	}
}

func TestRiskLevel(t *testing.T) {
	for risk, want := range map[int]string{0: "low", 60: "low", 61: "medium", 80: "medium", 81: "high"} {
		if got := riskLevel(risk); got != want {
			t.Fatalf("risk %d: want %s, got %s", risk, want, got)
		}
	}
}

func TestRecentUsers(t *testing.T) {
	s := storeWith(at("old", 0, 2*time.Hour), at("a", 0, 10*time.Minute), at("b", 0, time.Minute))
	got := ComputeRecentUsers(s.Users(), now)
	if len(got) != 2 || got[0].UserID != "b" || got[1].UserID != "a" {
		t.Fatalf("recent: %+v", got)
	}
}

func TestReportSummary(t *testing.T) {
	out := ReportSummary(Stats{GeneratedAt: now, MessagesToday: 7, DangerUsers: 1})
	if !strings.Contains(out, "2025-05-10") || !strings.Contains(out, "Mesajlar: 7") || !strings.Contains(out, "⚠️") {
		t.Fatalf("summary: %s", out)
	}
}
