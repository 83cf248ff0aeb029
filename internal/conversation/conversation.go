package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// excerptLen bounds UserState.LastMessage.
const excerptLen = 100

type Message struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Body        string    `json:"body"`
	IsBot       bool      `json:"is_bot"`
	IsAdmin     bool      `json:"is_admin"`
	RiskScore   int       `json:"risk_score"`
	RiskReasons []string  `json:"risk_reasons"`
	Timestamp   time.Time `json:"timestamp"`
}

// Sender classifies who wrote the message.
func (m Message) Sender() string {
	switch {
	case m.IsAdmin:
		return "admin"
	case m.IsBot:
		return "bot"
	default:
		return "user"
	}
}

// UserState is the latest-known summary for one user, overwritten on every append.
type UserState struct {
	Username     string    `json:"username"`
	LastMessage  string    `json:"last_message"`
	LastTime     time.Time `json:"last_time"`
	RiskScore    int       `json:"risk_score"`
	MessageCount int       `json:"message_count"`
}

// Flag is an operator switch for one user.
type Flag struct {
	Active    bool      `json:"active"`
	ChangedAt time.Time `json:"changed_at"`
}

// View is a consistent copy of the store, taken under one lock.
type View struct {
	Messages      []Message
	Users         map[string]UserState
	Interventions map[string]Flag
	// Automation flags; Active means the bot is stopped for that user.
	Automation map[string]Flag
}

// Store is the append-only conversation log plus its per-user index.
// Nothing is ever removed, so memory grows with traffic.
type Store struct {
	mu            sync.RWMutex
	messages      []Message
	users         map[string]UserState
	interventions map[string]Flag
	automation    map[string]Flag
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]UserState),
		interventions: make(map[string]Flag),
		automation:    make(map[string]Flag),
	}
}

// Append stores m and updates the sender's UserState in the same critical section.
// Arrival order is authoritative: the index always reflects the last append, whatever its timestamp.
func (s *Store) Append(m Message) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.RiskReasons == nil {
		m.RiskReasons = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	prev := s.users[m.UserID]
	s.users[m.UserID] = UserState{
		Username:     m.Username,
		LastMessage:  excerpt(m.Body, excerptLen),
		LastTime:     m.Timestamp,
		RiskScore:    m.RiskScore,
		MessageCount: prev.MessageCount + 1,
	}
	return m
}

// Windowed returns messages with timestamp strictly after since, in append order.
func (s *Store) Windowed(since time.Time) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windowedLocked(since)
}

func (s *Store) windowedLocked(since time.Time) []Message {
	var out []Message
	for _, m := range s.messages {
		if m.Timestamp.After(since) {
			out = append(out, m)
		}
	}
	return out
}

// MessagesFor returns every message of userID in append order.
func (s *Store) MessagesFor(userID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) UserState(userID string) (UserState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.users[userID]
	return st, ok
}

func (s *Store) Users() map[string]UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.users)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// SetIntervention records that a human has taken over (or released) the conversation.
func (s *Store) SetIntervention(userID string, active bool, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interventions[userID] = Flag{Active: active, ChangedAt: at}
}

// SetBotStopped toggles automated replies for userID.
func (s *Store) SetBotStopped(userID string, stopped bool, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.automation[userID] = Flag{Active: stopped, ChangedAt: at}
}

func (s *Store) BotStopped(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.automation[userID].Active
}

func (s *Store) InIntervention(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interventions[userID].Active
}

// View copies the messages newer than since together with the index and flags.
func (s *Store) View(since time.Time) View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Messages:      s.windowedLocked(since),
		Users:         copyMap(s.users),
		Interventions: copyMap(s.interventions),
		Automation:    copyMap(s.automation),
	}
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
