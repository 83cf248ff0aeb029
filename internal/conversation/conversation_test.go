package conversation

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

var base = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func msg(user string, body string, risk int, at time.Time) Message {
	return Message{UserID: user, Username: "name-" + user, Body: body, RiskScore: risk, Timestamp: at}
}

func TestAppend_AssignsIDAndDefaults(t *testing.T) {
	s := NewStore()
	m := s.Append(msg("u1", "salam", 10, base))
	if m.ID == "" {
		t.Fatalf("id not assigned")
	}
	if m.RiskReasons == nil {
		t.Fatalf("risk reasons should default to empty list")
	}
	if s.Len() != 1 {
		t.Fatalf("len: %d", s.Len())
	}
}

func TestAppend_IndexFollowsArrivalOrder(t *testing.T) {
	s := NewStore()
	s.Append(msg("u1", "later", 20, base.Add(time.Minute)))
	s.Append(msg("u1", "earlier", 90, base))

	st, ok := s.UserState("u1")
	if !ok {
		t.Fatalf("user state missing")
	}
	if st.LastMessage != "earlier" || st.RiskScore != 90 || !st.LastTime.Equal(base) {
		t.Fatalf("index should reflect the last append: %+v", st)
	}
	if st.MessageCount != 2 {
		t.Fatalf("message count: %d", st.MessageCount)
	}
}

func TestAppend_ExcerptIsBounded(t *testing.T) {
	s := NewStore()
	s.Append(msg("u1", strings.Repeat("ə", 150), 0, base))
	st, _ := s.UserState("u1")
	if n := len([]rune(st.LastMessage)); n != excerptLen {
		t.Fatalf("excerpt runes: %d", n)
	}
}

func TestWindowed_StrictCutoff(t *testing.T) {
	s := NewStore()
	s.Append(msg("u1", "at cutoff", 0, base))
	s.Append(msg("u1", "after", 0, base.Add(time.Nanosecond)))
	s.Append(msg("u1", "before", 0, base.Add(-time.Second)))

	got := s.Windowed(base)
	if len(got) != 1 || got[0].Body != "after" {
		t.Fatalf("windowed: %+v", got)
	}
}

func TestMessagesFor_AppendOrder(t *testing.T) {
	s := NewStore()
	s.Append(msg("u1", "a", 0, base))
	s.Append(msg("u2", "x", 0, base))
	s.Append(msg("u1", "b", 0, base.Add(-time.Hour)))

	got := s.MessagesFor("u1")
	if len(got) != 2 || got[0].Body != "a" || got[1].Body != "b" {
		t.Fatalf("messages: %+v", got)
	}
	if len(s.MessagesFor("nobody")) != 0 {
		t.Fatalf("unknown user should have no messages")
	}
}

func TestFlagsAndView(t *testing.T) {
	s := NewStore()
	s.Append(msg("u1", "a", 0, base))
	s.SetBotStopped("u1", true, base)
	s.SetIntervention("u1", true, base)
	if !s.BotStopped("u1") || !s.InIntervention("u1") {
		t.Fatalf("flags not set")
	}

	v := s.View(base.Add(-time.Minute))
	s.SetBotStopped("u1", false, base.Add(time.Second))
	if !v.Automation["u1"].Active {
		t.Fatalf("view should be a copy")
	}
	if len(v.Messages) != 1 || len(v.Users) != 1 {
		t.Fatalf("view: %+v", v)
	}
}

func TestConcurrentAppend(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(msg(fmt.Sprintf("u%d", i%5), "m", i, base))
		}(i)
	}
	wg.Wait()
	if s.Len() != 50 || len(s.Users()) != 5 {
		t.Fatalf("len=%d users=%d", s.Len(), len(s.Users()))
	}
	total := 0
	for _, st := range s.Users() {
		total += st.MessageCount
	}
	if total != 50 {
		t.Fatalf("counts drifted: %d", total)
	}
}
