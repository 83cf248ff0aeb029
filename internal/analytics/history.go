package analytics

import (
	"time"

	"sales-ai-brain/internal/conversation"
)

const (
	botLabel   = "🤖 Bot"
	adminLabel = "👨‍💼 Admin"
)

type HistoryEntry struct {
	Sender     string    `json:"sender"`
	SenderType string    `json:"sender_type"`
	Text       string    `json:"text"`
	Time       string    `json:"time"`
	Timestamp  time.Time `json:"timestamp"`
	IsBot      bool      `json:"is_bot"`
	IsAdmin    bool      `json:"is_admin"`
	RiskScore  int       `json:"risk_score"`
}

type HistoryStats struct {
	Total     int    `json:"total"`
	MaxRisk   int    `json:"max_risk"`
	RiskLevel string `json:"risk_level"`
}

type History struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Messages []HistoryEntry `json:"messages"`
	Stats    HistoryStats   `json:"stats"`
}

// ComputeHistory formats the last 50 messages of one user. The second result is false
// when the user has no messages at all.
func ComputeHistory(userID string, msgs []conversation.Message, state conversation.UserState, known bool) (History, bool) {
	if len(msgs) == 0 {
		return History{}, false
	}

	h := History{UserID: userID, Username: state.Username}
	if !known || h.Username == "" {
		h.Username = msgs[len(msgs)-1].Username
	}

	maxRisk := 0
	for _, m := range msgs {
		if m.RiskScore > maxRisk {
			maxRisk = m.RiskScore
		}
	}
	h.Stats = HistoryStats{Total: len(msgs), MaxRisk: maxRisk, RiskLevel: riskLevel(maxRisk)}

	tail := msgs
	if len(tail) > HistoryLimit {
		tail = tail[len(tail)-HistoryLimit:]
	}
	h.Messages = make([]HistoryEntry, 0, len(tail))
	for _, m := range tail {
		h.Messages = append(h.Messages, HistoryEntry{
			Sender:     senderLabel(m),
			SenderType: m.Sender(),
			Text:       m.Body,
			Time:       m.Timestamp.Format("15:04"),
			Timestamp:  m.Timestamp,
			IsBot:      m.IsBot,
			IsAdmin:    m.IsAdmin,
			RiskScore:  m.RiskScore,
		})
	}
	return h, true
}

func senderLabel(m conversation.Message) string {
	switch {
	case m.IsAdmin:
		return adminLabel
	case m.IsBot:
		return botLabel
	case m.Username != "":
		return m.Username
	default:
		return m.UserID
	}
}

func riskLevel(maxRisk int) string {
	switch {
	case maxRisk > DangerThreshold:
		return "high"
	case maxRisk > WarningThreshold:
		return "medium"
	default:
		return "low"
	}
}
