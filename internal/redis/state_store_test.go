package redis

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/hxnx/kampita/internal/music"
	redislib "github.com/redis/go-redis/v9"
)

// Set KAMPITA_TEST_REDIS_ADDR (host:port) to run against a real server.
func testClient(t *testing.T) *redislib.Client {
	t.Helper()
	addr := os.Getenv("KAMPITA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KAMPITA_TEST_REDIS_ADDR not set")
	}

	c := redislib.NewClient(&redislib.Options{Addr: addr, DB: 15})
	if err := c.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		c.FlushDB(context.Background())
		c.Close()
	})
	return c
}

func TestStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore(testClient(t))
	key := music.StateKey("guild")

	if _, err := s.Load(ctx, key); !errors.Is(err, music.ErrStateNotFound) {
		t.Fatalf("Load(missing) = %v, want ErrStateNotFound", err)
	}
	if err := s.Save(ctx, key, []byte(`{"volume":0.5}`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"volume":0.5}` {
		t.Errorf("Load() = %s", got)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestStateStoreWithoutClient(t *testing.T) {
	s := NewStateStore(nil)
	if _, err := s.Load(context.Background(), "k"); err == nil {
		t.Error("expected error without a client")
	}
}

func TestConfigAddr(t *testing.T) {
	if got := (Config{Host: "cache", Port: 6380}).Addr(); got != "cache:6380" {
		t.Errorf("Addr() = %q", got)
	}
}
