package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/conversation"
	"sales-ai-brain/internal/metrics"
	"sales-ai-brain/internal/realtime"
)

// Request is an inbound chat event. Body may also arrive as "message".
type Request struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Body        string   `json:"body"`
	Message     string   `json:"message,omitempty"`
	IsBot       bool     `json:"is_bot"`
	IsAdmin     bool     `json:"is_admin"`
	RiskScore   int      `json:"risk_score"`
	RiskReasons []string `json:"risk_reasons,omitempty"`
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Normalize trims the text fields and resolves the body alias and username default.
func (r *Request) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Username = strings.TrimSpace(r.Username)
	if strings.TrimSpace(r.Body) == "" {
		r.Body = r.Message
	}
	r.Message = ""
	if r.Username == "" {
		r.Username = r.UserID
	}
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	if strings.TrimSpace(r.Body) == "" && strings.TrimSpace(r.Message) == "" {
		return &ValidationError{Field: "body", Reason: "required"}
	}
	if r.RiskScore < 0 || r.RiskScore > 100 {
		return &ValidationError{Field: "risk_score", Reason: "must be between 0 and 100"}
	}
	return nil
}

// Broadcast is the new_message payload. Message repeats Body for dashboards that read that name.
type Broadcast struct {
	conversation.Message
	Text string `json:"message"`
}

type Broadcaster interface {
	Broadcast(ev realtime.Event) int
}

// Service validates inbound messages, appends them and tells the dashboards.
type Service struct {
	store *conversation.Store
	hub   Broadcaster
	now   func() time.Time
	log   zerolog.Logger
}

func NewService(store *conversation.Store, hub Broadcaster, log zerolog.Logger) *Service {
	return &Service{store: store, hub: hub, now: time.Now, log: log}
}

// Ingest stamps the message with server time. It does not wait on anything but the store lock.
func (s *Service) Ingest(_ context.Context, req Request) (conversation.Message, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		metrics.IngestRejected.Inc()
		return conversation.Message{}, err
	}

	stored := s.store.Append(conversation.Message{
		UserID:      req.UserID,
		Username:    req.Username,
		Body:        req.Body,
		IsBot:       req.IsBot,
		IsAdmin:     req.IsAdmin,
		RiskScore:   req.RiskScore,
		RiskReasons: req.RiskReasons,
		Timestamp:   s.now(),
	})
	metrics.MessagesIngested.WithLabelValues(stored.Sender()).Inc()

	observers := 0
	if s.hub != nil {
		observers = s.hub.Broadcast(realtime.NewMessageEvent(Broadcast{Message: stored, Text: stored.Body}))
	}
	s.log.Debug().
		Str("user_id", stored.UserID).
		Str("sender", stored.Sender()).
		Int("risk_score", stored.RiskScore).
		Int("observers", observers).
		Msg("📨 message ingested")
	return stored, nil
}

// Recorder is what the bot needs to log a message, locally or remotely.
type Recorder interface {
	Ingest(ctx context.Context, req Request) (conversation.Message, error)
}
