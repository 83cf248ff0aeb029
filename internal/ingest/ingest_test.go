package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/conversation"
	"sales-ai-brain/internal/realtime"
)

type fakeHub struct{ events []realtime.Event }

func (f *fakeHub) Broadcast(ev realtime.Event) int {
	f.events = append(f.events, ev)
	return 1
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		req   Request
		field string
	}{
		{"missing user", Request{Body: "hi"}, "user_id"},
		{"missing body", Request{UserID: "1", Body: "  "}, "body"},
		{"risk too high", Request{UserID: "1", Body: "hi", RiskScore: 101}, "risk_score"},
		{"risk negative", Request{UserID: "1", Body: "hi", RiskScore: -1}, "risk_score"},
		{"message alias", Request{UserID: "1", Message: "hi"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("want field %s, got %v", tc.field, err)
			}
		})
	}
}

func TestIngest_AppendsAndBroadcasts(t *testing.T) {
	store := conversation.NewStore()
	hub := &fakeHub{}
	svc := NewService(store, hub, zerolog.Nop())
	fixed := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	m, err := svc.Ingest(context.Background(), Request{UserID: "7", Message: "Qiymət?", RiskScore: 40})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if m.Body != "Qiymət?" || m.Username != "7" || !m.Timestamp.Equal(fixed) {
		t.Fatalf("stored: %+v", m)
	}
	if store.Len() != 1 {
		t.Fatalf("store len: %d", store.Len())
	}
	if len(hub.events) != 1 || hub.events[0].Type != realtime.EventNewMessage {
		t.Fatalf("events: %+v", hub.events)
	}
	got := hub.events[0].Data.(Broadcast)
	if got.ID != m.ID || got.Text != "Qiymət?" {
		t.Fatalf("broadcast carries a different message: %+v", got)
	}
	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire["body"] != "Qiymət?" || wire["message"] != "Qiymət?" || wire["user_id"] != "7" {
		t.Fatalf("wire payload: %s", raw)
	}
}

func TestIngest_RejectsWithoutSideEffects(t *testing.T) {
	store := conversation.NewStore()
	hub := &fakeHub{}
	svc := NewService(store, hub, zerolog.Nop())
	if _, err := svc.Ingest(context.Background(), Request{UserID: "1"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if store.Len() != 0 || len(hub.events) != 0 {
		t.Fatalf("rejected message left traces")
	}
}

func TestClient_Ingest(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/telegram/message" {
			t.Errorf("path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"abc","user_id":"5","body":"hi"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	m, err := c.Ingest(context.Background(), Request{UserID: "5", Body: "hi", IsBot: true})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if m.ID != "abc" || got.UserID != "5" || !got.IsBot {
		t.Fatalf("round trip: %+v / %+v", m, got)
	}
}

func TestClient_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid user_id: required"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, nil).Ingest(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error")
	}
}
