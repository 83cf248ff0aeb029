package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

func newTestRedis(t *testing.T) *RedisSnapshotter {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	key := fmt.Sprintf("sales-brain:test:%d", time.Now().UnixNano())
	s, err := NewRedisSnapshotter(ctx, url, key)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = s.client.Del(context.Background(), key).Err()
		_ = s.Close()
	})
	return s
}

func TestRedisSnapshotter_SaveAndLoad(t *testing.T) {
	s := newTestRedis(t)
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key should be ErrNotFound, got %v", err)
	}
	doc := []byte(`{"exact_matches":[],"partial_matches":[]}`)
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil || string(got) != string(doc) {
		t.Fatalf("load: %q %v", got, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestNewRedisSnapshotter_BadURL(t *testing.T) {
	if _, err := NewRedisSnapshotter(context.Background(), "not-a-url", "k"); err == nil {
		t.Fatalf("expected parse error")
	}
}
