package memory

import (
	"strings"
	"time"
)

const (
	// SourceOracle marks entries learned from an oracle answer.
	SourceOracle = "oracle_learned"
	// SourceLegacy is what older snapshots carry for the same thing.
	SourceLegacy = "deepseek_learned"
)

// Entry is one memorized answer. Patterns holds the questions that resolve to it.
type Entry struct {
	Patterns []string `json:"patterns"`
	Response string   `json:"response"`
	Added    string   `json:"added"`
	Source   string   `json:"source"`
	UserID   string   `json:"user_id,omitempty"`
}

// AddedAt parses Added. Snapshots written by older tooling may lack a zone; those are read as UTC.
func (e Entry) AddedAt() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, e.Added); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Question returns the first pattern, which is the question the entry was learned from.
func (e Entry) Question() string {
	if len(e.Patterns) == 0 {
		return ""
	}
	return e.Patterns[0]
}

func (e Entry) clone() Entry {
	e.Patterns = append([]string(nil), e.Patterns...)
	return e
}

// Snapshot is the persisted document.
// PartialMatches is carried through untouched and never consulted by lookups.
type Snapshot struct {
	ExactMatches   []Entry `json:"exact_matches"`
	PartialMatches []Entry `json:"partial_matches"`
}

func emptySnapshot() Snapshot {
	return Snapshot{ExactMatches: []Entry{}, PartialMatches: []Entry{}}
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		ExactMatches:   make([]Entry, 0, len(s.ExactMatches)),
		PartialMatches: make([]Entry, 0, len(s.PartialMatches)),
	}
	for _, e := range s.ExactMatches {
		out.ExactMatches = append(out.ExactMatches, e.clone())
	}
	for _, e := range s.PartialMatches {
		out.PartialMatches = append(out.PartialMatches, e.clone())
	}
	return out
}

// Stats mirrors what the bot reports on /start and /memory.
type Stats struct {
	Total   int `json:"total"`
	Exact   int `json:"exact"`
	Partial int `json:"partial"`
}

// Mode selects how entries are scoped.
type Mode string

const (
	ModeGlobal  Mode = "global"
	ModePerUser Mode = "per_user"
)

// ParseMode accepts the MEMORY_MODE values; anything unknown falls back to global.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModePerUser)) {
		return ModePerUser
	}
	return ModeGlobal
}
