package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sales-ai-brain/internal/metrics"
	"sales-ai-brain/internal/storage"
)

// PersistError reports that the in-memory state could not be written to its backend.
// The entry that triggered the write is kept in memory regardless.
type PersistError struct {
	Backend string
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist memory to %s: %v", e.Backend, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

type Option func(*Cache)

func WithMode(m Mode) Option {
	return func(c *Cache) { c.mode = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache answers questions it has already seen, verbatim.
// Matching is exact and case-sensitive on the trimmed question; the first entry in insertion order wins.
// Every successful learn rewrites the whole snapshot before returning.
type Cache struct {
	mu      sync.RWMutex
	backend storage.Snapshotter
	snap    Snapshot
	mode    Mode
	now     func() time.Time
	log     zerolog.Logger
}

// New loads the snapshot from backend. A missing snapshot is created empty;
// an unreadable or malformed one is logged and the cache starts empty.
func New(ctx context.Context, backend storage.Snapshotter, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		snap:    emptySnapshot(),
		mode:    ModeGlobal,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.load(ctx)
	return c
}

func (c *Cache) load(ctx context.Context) {
	data, err := c.backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if err := c.persistLocked(ctx); err != nil {
			c.log.Warn().Err(err).Msg("could not create empty memory snapshot")
			return
		}
		c.log.Info().Str("backend", c.backend.Describe()).Msg("created empty memory snapshot")
		return
	case err != nil:
		c.log.Error().Err(err).Str("backend", c.backend.Describe()).Msg("memory snapshot unreadable, starting empty")
		return
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Error().Err(err).Str("backend", c.backend.Describe()).Msg("memory snapshot malformed, starting empty")
		return
	}
	if snap.ExactMatches == nil {
		snap.ExactMatches = []Entry{}
	}
	if snap.PartialMatches == nil {
		snap.PartialMatches = []Entry{}
	}
	c.snap = snap
	c.log.Info().
		Int("exact", len(snap.ExactMatches)).
		Int("partial", len(snap.PartialMatches)).
		Str("backend", c.backend.Describe()).
		Msg("memory loaded")
}

// Lookup searches the whole cache in global mode, and only shared entries in per-user mode.
func (c *Cache) Lookup(question string) (string, bool) {
	return c.LookupFor("", question)
}

// LookupFor restricts the search to entries visible to userID. In global mode userID is ignored.
func (c *Cache) LookupFor(userID, question string) (string, bool) {
	q := strings.TrimSpace(question)
	if q == "" {
		metrics.MemoryLookups.WithLabelValues("miss").Inc()
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.snap.ExactMatches {
		if !c.visible(e, userID) {
			continue
		}
		for _, p := range e.Patterns {
			if strings.TrimSpace(p) == q {
				metrics.MemoryLookups.WithLabelValues("hit").Inc()
				return e.Response, true
			}
		}
	}
	metrics.MemoryLookups.WithLabelValues("miss").Inc()
	return "", false
}

// Learn memorizes answer for question in the shared scope.
func (c *Cache) Learn(ctx context.Context, question, answer string) (bool, error) {
	return c.LearnFor(ctx, "", question, answer)
}

// LearnFor returns false without error when either side is blank or when the question
// is already known in scope, compared case-insensitively. On a persist failure it returns
// false with a *PersistError and the entry stays in memory.
func (c *Cache) LearnFor(ctx context.Context, userID, question, answer string) (bool, error) {
	q := strings.TrimSpace(question)
	a := strings.TrimSpace(answer)
	if q == "" || a == "" {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.knownLocked(userID, q) {
		metrics.MemoryLearned.WithLabelValues("duplicate").Inc()
		return false, nil
	}

	e := Entry{
		Patterns: []string{q},
		Response: a,
		Added:    c.now().UTC().Format(time.RFC3339),
		Source:   SourceOracle,
	}
	if c.mode == ModePerUser {
		e.UserID = userID
	}
	c.snap.ExactMatches = append(c.snap.ExactMatches, e)

	if err := c.persistLocked(ctx); err != nil {
		metrics.MemoryLearned.WithLabelValues("persist_failed").Inc()
		c.log.Error().Err(err).Str("question", excerpt(q, 30)).Msg("learned entry kept in memory only")
		return false, err
	}
	metrics.MemoryLearned.WithLabelValues("learned").Inc()
	c.log.Info().Str("question", excerpt(q, 30)).Msg("🧠 new entry memorized")
	return true, nil
}

// Clear drops every entry and persists the empty snapshot.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = emptySnapshot()
	return c.persistLocked(ctx)
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exact := len(c.snap.ExactMatches)
	partial := len(c.snap.PartialMatches)
	return Stats{Total: exact + partial, Exact: exact, Partial: partial}
}

// Recent returns up to n most recently learned exact entries, oldest first.
func (c *Cache) Recent(n int) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := c.snap.ExactMatches
	if n <= 0 {
		return []Entry{}
	}
	if n < len(all) {
		all = all[len(all)-n:]
	}
	out := make([]Entry, 0, len(all))
	for _, e := range all {
		out = append(out, e.clone())
	}
	return out
}

// Snapshot returns a deep copy of the current document.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.clone()
}

func (c *Cache) Mode() Mode { return c.mode }

func (c *Cache) Backend() string { return c.backend.Describe() }

func (c *Cache) visible(e Entry, userID string) bool {
	return c.mode == ModeGlobal || e.UserID == "" || e.UserID == userID
}

func (c *Cache) knownLocked(userID, q string) bool {
	for _, e := range c.snap.ExactMatches {
		if !c.visible(e, userID) {
			continue
		}
		for _, p := range e.Patterns {
			if strings.EqualFold(strings.TrimSpace(p), q) {
				return true
			}
		}
	}
	return false
}

func (c *Cache) persistLocked(ctx context.Context) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.snap); err != nil {
		return &PersistError{Backend: c.backend.Describe(), Err: err}
	}
	if err := c.backend.Save(ctx, buf.Bytes()); err != nil {
		return &PersistError{Backend: c.backend.Describe(), Err: err}
	}
	return nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
