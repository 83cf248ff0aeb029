// Package analytics derives the dashboard views from the conversation log.
// Every Compute function is a pure function of a store view and a reference time;
// window comparisons are strict (timestamp after cutoff).
package analytics

import (
	"sort"
	"time"

	"sales-ai-brain/internal/conversation"
)

const (
	StatsWindow      = 24 * time.Hour
	HourWindow       = time.Hour
	AlertWindow      = time.Hour
	ActiveChatWindow = 2 * time.Hour
	UnreadWindow     = 5 * time.Minute
	RecentUserWindow = time.Hour

	AlertThreshold   = 70
	DangerThreshold  = 80
	WarningThreshold = 60

	MaxAlerts        = 10
	MaxInterventions = 10
	HistoryLimit     = 50

	alertTextLen   = 150
	chatPreviewLen = 120
)

type Stats struct {
	TotalUsers          int       `json:"total_users"`
	ActiveChats         int       `json:"active_chats"`
	MessagesToday       int       `json:"messages_today"`
	MessagesHour        int       `json:"messages_hour"`
	WarningUsers        int       `json:"warning_users"`
	DangerUsers         int       `json:"danger_users"`
	ActiveInterventions int       `json:"active_interventions"`
	ActiveBots          int       `json:"active_bots"`
	StoppedBots         int       `json:"stopped_bots"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// ComputeStats summarizes the last 24 hours. A user is "danger" when their highest
// score in the window is above 80 and "warning" when it is above 60 but not above 80.
func ComputeStats(v conversation.View, now time.Time) Stats {
	dayCutoff := now.Add(-StatsWindow)
	hourCutoff := now.Add(-HourWindow)

	maxRisk := make(map[string]int)
	s := Stats{GeneratedAt: now, ActiveChats: len(v.Users)}
	for _, m := range v.Messages {
		if !m.Timestamp.After(dayCutoff) {
			continue
		}
		s.MessagesToday++
		if m.Timestamp.After(hourCutoff) {
			s.MessagesHour++
		}
		if r, seen := maxRisk[m.UserID]; !seen || m.RiskScore > r {
			maxRisk[m.UserID] = m.RiskScore
		}
	}
	s.TotalUsers = len(maxRisk)
	for _, r := range maxRisk {
		switch {
		case r > DangerThreshold:
			s.DangerUsers++
		case r > WarningThreshold:
			s.WarningUsers++
		}
	}
	for _, f := range v.Interventions {
		if f.Active {
			s.ActiveInterventions++
		}
	}
	census := ComputeBotStatus(v, now)
	s.ActiveBots = census.Active
	s.StoppedBots = census.Stopped
	return s
}

type Alert struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	RiskScore   int       `json:"risk_score"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	RiskReasons []string  `json:"risk_reasons"`
	Timestamp   time.Time `json:"timestamp"`
}

// ComputeAlerts lists non-bot messages of the last hour scoring above 70, oldest first, at most ten.
func ComputeAlerts(v conversation.View, now time.Time) []Alert {
	cutoff := now.Add(-AlertWindow)
	alerts := make([]Alert, 0)
	for _, m := range v.Messages {
		if len(alerts) == MaxAlerts {
			break
		}
		if m.IsBot || m.RiskScore <= AlertThreshold || !m.Timestamp.After(cutoff) {
			continue
		}
		level := "medium"
		if m.RiskScore > DangerThreshold {
			level = "high"
		}
		reasons := m.RiskReasons
		if reasons == nil {
			reasons = []string{}
		}
		alerts = append(alerts, Alert{
			ID:          m.ID,
			UserID:      m.UserID,
			Username:    m.Username,
			RiskScore:   m.RiskScore,
			Level:       level,
			Message:     cut(m.Body, alertTextLen),
			RiskReasons: reasons,
			Timestamp:   m.Timestamp,
		})
	}
	return alerts
}

type ActiveChat struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	LastMessage      string    `json:"last_message"`
	LastTime         time.Time `json:"last_time"`
	IsBot            bool      `json:"is_bot"`
	MessageCount     int       `json:"message_count"`
	RiskScore        int       `json:"risk_score"`
	HasDanger        bool      `json:"has_danger"`
	HasWarning       bool      `json:"has_warning"`
	DangerCount      int       `json:"danger_count"`
	WarningCount     int       `json:"warning_count"`
	InterventionMode bool      `json:"intervention_mode"`
	BotStopped       bool      `json:"bot_stopped"`
	Unread           int       `json:"unread"`
	LastActivity     time.Time `json:"last_activity"`
}

// ComputeActiveChats groups the last two hours by user, most recently active first.
func ComputeActiveChats(v conversation.View, now time.Time) []ActiveChat {
	cutoff := now.Add(-ActiveChatWindow)
	unreadCutoff := now.Add(-UnreadWindow)

	byUser := make(map[string]*ActiveChat)
	var order []string
	for _, m := range v.Messages {
		if !m.Timestamp.After(cutoff) {
			continue
		}
		c, ok := byUser[m.UserID]
		if !ok {
			c = &ActiveChat{UserID: m.UserID}
			byUser[m.UserID] = c
			order = append(order, m.UserID)
		}
		c.MessageCount++
		c.Username = m.Username
		c.LastMessage = preview(m.Body, chatPreviewLen)
		c.LastTime = m.Timestamp
		c.IsBot = m.IsBot
		if m.RiskScore > c.RiskScore {
			c.RiskScore = m.RiskScore
		}
		switch {
		case m.RiskScore > DangerThreshold:
			c.DangerCount++
		case m.RiskScore > WarningThreshold:
			c.WarningCount++
		}
		if !m.IsBot && !m.IsAdmin && m.Timestamp.After(unreadCutoff) {
			c.Unread++
		}
	}

	chats := make([]ActiveChat, 0, len(order))
	for _, id := range order {
		c := byUser[id]
		c.HasDanger = c.DangerCount > 0
		c.HasWarning = c.WarningCount > 0
		c.InterventionMode = v.Interventions[id].Active
		c.BotStopped = v.Automation[id].Active
		c.LastActivity = c.LastTime
		if st, ok := v.Users[id]; ok {
			c.LastActivity = st.LastTime
		}
		chats = append(chats, *c)
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastTime.After(chats[j].LastTime)
	})
	return chats
}

type BotStatus struct {
	Total     int       `json:"total"`
	Active    int       `json:"active"`
	Stopped   int       `json:"stopped"`
	Status    string    `json:"status"`
	LastCheck time.Time `json:"last_check"`
}

// ComputeBotStatus is a census over the automation flags. Users never toggled are not counted.
func ComputeBotStatus(v conversation.View, now time.Time) BotStatus {
	bs := BotStatus{Total: len(v.Automation), LastCheck: now}
	for _, f := range v.Automation {
		if f.Active {
			bs.Stopped++
		} else {
			bs.Active++
		}
	}
	bs.Status = "active"
	if bs.Stopped > bs.Active {
		bs.Status = "warning"
	}
	return bs
}

type Intervention struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	StartedAt time.Time `json:"started_at"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
}

// ComputeInterventions returns up to ten active interventions on known users, newest first.
func ComputeInterventions(v conversation.View, _ time.Time) []Intervention {
	out := make([]Intervention, 0)
	for id, f := range v.Interventions {
		st, known := v.Users[id]
		if !f.Active || !known {
			continue
		}
		out = append(out, Intervention{
			UserID:    id,
			Username:  st.Username,
			StartedAt: f.ChangedAt,
			Reason:    "high_risk",
			Status:    "active",
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > MaxInterventions {
		out = out[:MaxInterventions]
	}
	return out
}

type Overview struct {
	Stats         Stats          `json:"stats"`
	Alerts        []Alert        `json:"alerts"`
	ActiveChats   []ActiveChat   `json:"active_chats"`
	BotStatus     BotStatus      `json:"bot_status"`
	Interventions []Intervention `json:"interventions"`
}

func ComputeOverview(v conversation.View, now time.Time) Overview {
	return Overview{
		Stats:         ComputeStats(v, now),
		Alerts:        ComputeAlerts(v, now),
		ActiveChats:   ComputeActiveChats(v, now),
		BotStatus:     ComputeBotStatus(v, now),
		Interventions: ComputeInterventions(v, now),
	}
}

type RecentUser struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	LastMessage  string    `json:"last_message"`
	LastActive   time.Time `json:"last_active"`
	MessageCount int       `json:"message_count"`
	RiskScore    int       `json:"risk_score"`
}

// ComputeRecentUsers reads only the index: users whose last message arrived within the hour.
func ComputeRecentUsers(users map[string]conversation.UserState, now time.Time) []RecentUser {
	cutoff := now.Add(-RecentUserWindow)
	out := make([]RecentUser, 0)
	for id, st := range users {
		if !st.LastTime.After(cutoff) {
			continue
		}
		out = append(out, RecentUser{
			UserID:       id,
			Username:     st.Username,
			LastMessage:  st.LastMessage,
			LastActive:   st.LastTime,
			MessageCount: st.MessageCount,
			RiskScore:    st.RiskScore,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActive.Equal(out[j].LastActive) {
			return out[i].LastActive.After(out[j].LastActive)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// cut truncates to n runes.
func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// preview truncates to n runes including a trailing ellipsis.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
