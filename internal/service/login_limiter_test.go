package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type mockRedisLimiterClient struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	deleted    []string
	result     int64
	err        error
}

func (m *mockRedisLimiterClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func (m *mockRedisLimiterClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.deleted = append(m.deleted, keys...)
	cmd := redis.NewIntCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func newTestRedisLimiter(client redisLimiterClient, window time.Duration, max int) *redisLoginLimiter {
	return &redisLoginLimiter{
		client: client,
		logger: zap.NewNop(),
		window: window,
		max:    max,
		prefix: "login:rl:",
	}
}

func TestRedisLoginLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisLoginLimiter
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisLimiterClient{result: 1}, time.Minute, 3)
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisLimiterClient{result: 2}
		l := newTestRedisLimiter(mock, 15*time.Minute, 10)
		if !l.Allow(" User@Example.com ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "login:rl:user@example.com" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 900 {
			t.Fatalf("expected TTL seconds=900, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisLoginAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisLimiterClient{result: 11}, time.Minute, 10)
		if l.Allow("user@example.com") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newTestRedisLimiter(&mockRedisLimiterClient{err: errors.New("redis down")}, time.Minute, 3)
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestRedisLoginLimiterReset(t *testing.T) {
	mock := &mockRedisLimiterClient{}
	l := newTestRedisLimiter(mock, time.Minute, 3)
	l.Reset(" User@Example.com")
	if len(mock.deleted) != 1 || mock.deleted[0] != "login:rl:user@example.com" {
		t.Fatalf("expected key to be deleted, got %+v", mock.deleted)
	}

	failing := newTestRedisLimiter(&mockRedisLimiterClient{err: errors.New("redis down")}, time.Minute, 3)
	failing.Reset("user@example.com")
}

func TestMemoryLoginLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLoginLimiter(15*time.Minute, 2).(*memoryLoginLimiter)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("expected first two attempts to pass")
	}
	if l.Allow("a") {
		t.Fatalf("expected third attempt to be denied")
	}
	if !l.Allow("b") {
		t.Fatalf("expected other keys to be independent")
	}

	now = now.Add(16 * time.Minute)
	if !l.Allow("a") {
		t.Fatalf("expected window to expire")
	}

	l.Allow("a")
	l.Reset("a")
	if !l.Allow("a") {
		t.Fatalf("expected reset to clear attempts")
	}
}

func TestMemoryLoginLimiterSweepsStaleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLoginLimiter(15*time.Minute, 3).(*memoryLoginLimiter)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		l.Allow(fmt.Sprintf("user%d@example.com", i))
	}
	if len(l.hits) != 100 {
		t.Fatalf("expected 100 tracked keys, got %d", len(l.hits))
	}

	now = now.Add(10 * time.Minute)
	l.Allow("recent@example.com")

	now = now.Add(6 * time.Minute)
	l.Allow("late@example.com")
	if len(l.hits) != 2 {
		t.Fatalf("expected only keys inside the window to remain, got %d", len(l.hits))
	}
	if _, ok := l.hits["recent@example.com"]; !ok {
		t.Fatalf("expected key inside the window to be kept")
	}
}
