package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockCmdable struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	s := &RedisStore{store: mock, ttl: time.Hour}

	if err := s.Set(ctx, KeyAuthToken, "tok"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := mock.data["shopboard:session:authToken"]; !ok {
		t.Fatalf("expected namespaced key, got %v", mock.data)
	}
	if mock.ttls["shopboard:session:authToken"] != time.Hour {
		t.Fatalf("expected ttl to be applied")
	}

	v, ok, err := s.Get(ctx, KeyAuthToken)
	if err != nil || !ok || v != "tok" {
		t.Fatalf("unexpected get result v=%q ok=%v err=%v", v, ok, err)
	}

	if err := s.Delete(ctx, KeyAuthToken, KeyUserData); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyAuthToken); ok {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestRedisStore_MissingKeyIsNotAnError(t *testing.T) {
	s := &RedisStore{store: newMockCmdable()}

	_, ok, err := s.Get(context.Background(), KeyUserData)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing key")
	}
}

func TestRedisStore_TransportError(t *testing.T) {
	mock := newMockCmdable()
	mock.failGet = true
	s := &RedisStore{store: mock}

	if _, _, err := s.Get(context.Background(), KeyAuthToken); err == nil {
		t.Fatal("expected transport error to surface")
	}
}

func TestRedisStore_Uninitialized(t *testing.T) {
	s := &RedisStore{}
	if err := s.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected error from uninitialized store")
	}
}

func TestRedisOptions(t *testing.T) {
	if _, err := redisOptions(RedisOptions{}); err == nil {
		t.Fatal("expected error without url or addr")
	}

	opts, err := redisOptions(RedisOptions{URL: "redis://:pw@cache:6380/0", DB: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "pw" || opts.DB != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = redisOptions(RedisOptions{Addr: "localhost:6379", DB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
