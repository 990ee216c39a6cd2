package config

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisOptions(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TLS", "1")

	opts := RedisOptions()
	if opts.Addr != "cache:6380" || opts.DB != 3 || opts.TLSConfig == nil {
		t.Errorf("unexpected options: addr %q db %d tls %v", opts.Addr, opts.DB, opts.TLSConfig != nil)
	}

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	if got := RedisOptions().Addr; got != "redis:6379" {
		t.Errorf("host/port should win over REDIS_ADDR, got %q", got)
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_TLS", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("REDIS_ADDR", mr.Addr())

	client, err := NewRedisClient(context.Background())
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	_ = client.Close()

	mr.Close()
	if _, err := NewRedisClient(context.Background()); err == nil {
		t.Error("expected an error once the server is gone")
	}
}
