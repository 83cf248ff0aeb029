package analytics

import (
	"time"

	"sales-ai-brain/internal/conversation"
)

// Engine runs the projections against a live store. Results are computed on every call.
type Engine struct {
	store *conversation.Store
	now   func() time.Time
}

func NewEngine(store *conversation.Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, now: now}
}

func (e *Engine) Now() time.Time { return e.now() }

// view covers the widest window any dashboard projection needs.
func (e *Engine) view() (conversation.View, time.Time) {
	now := e.now()
	return e.store.View(now.Add(-StatsWindow)), now
}

func (e *Engine) Stats() Stats {
	v, now := e.view()
	return ComputeStats(v, now)
}

func (e *Engine) Alerts() []Alert {
	v, now := e.view()
	return ComputeAlerts(v, now)
}

func (e *Engine) ActiveChats() []ActiveChat {
	v, now := e.view()
	return ComputeActiveChats(v, now)
}

func (e *Engine) BotStatus() BotStatus {
	v, now := e.view()
	return ComputeBotStatus(v, now)
}

func (e *Engine) Interventions() []Intervention {
	v, now := e.view()
	return ComputeInterventions(v, now)
}

func (e *Engine) Overview() Overview {
	v, now := e.view()
	return ComputeOverview(v, now)
}

func (e *Engine) RecentUsers() []RecentUser {
	return ComputeRecentUsers(e.store.Users(), e.now())
}

func (e *Engine) History(userID string) (History, bool) {
	st, known := e.store.UserState(userID)
	return ComputeHistory(userID, e.store.MessagesFor(userID), st, known)
}
