package cache

import (
	"context"
	"testing"
	"time"

	"order-bot/internal/config"
	"order-bot/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisDeduplicator_ClaimOnce(t *testing.T) {
	_, client := setupRedis(t)
	dedup := NewRedisDeduplicator(client, time.Hour)
	ctx := context.Background()

	first, err := dedup.Claim(ctx, domain.PersonaCustomer, 100)
	if err != nil || !first {
		t.Fatalf("expected first claim to succeed, got %v %v", first, err)
	}

	again, err := dedup.Claim(ctx, domain.PersonaCustomer, 100)
	if err != nil || again {
		t.Errorf("expected redelivery to be rejected, got %v %v", again, err)
	}

	// Update ids are per bot
	other, err := dedup.Claim(ctx, domain.PersonaAdmin, 100)
	if err != nil || !other {
		t.Errorf("expected admin update 100 to be new, got %v %v", other, err)
	}
}

func TestRedisDeduplicator_Release(t *testing.T) {
	_, client := setupRedis(t)
	dedup := NewRedisDeduplicator(client, time.Hour)
	ctx := context.Background()

	_, _ = dedup.Claim(ctx, domain.PersonaDelivery, 7)
	if err := dedup.Release(ctx, domain.PersonaDelivery, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := dedup.Claim(ctx, domain.PersonaDelivery, 7)
	if err != nil || !ok {
		t.Errorf("expected released update to be claimable, got %v %v", ok, err)
	}
}

func TestRedisDeduplicator_Expiry(t *testing.T) {
	mr, client := setupRedis(t)
	dedup := NewRedisDeduplicator(client, time.Minute)
	ctx := context.Background()

	_, _ = dedup.Claim(ctx, domain.PersonaCustomer, 1)
	if ttl := mr.TTL(updateKey(domain.PersonaCustomer, 1)); ttl != time.Minute {
		t.Errorf("expected 1m marker ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)

	ok, _ := dedup.Claim(ctx, domain.PersonaCustomer, 1)
	if !ok {
		t.Error("expected expired marker to allow a new claim")
	}
}

func TestRedisDeduplicator_RedisDown(t *testing.T) {
	mr, client := setupRedis(t)
	dedup := NewRedisDeduplicator(client, time.Minute)
	mr.Close()

	if _, err := dedup.Claim(context.Background(), domain.PersonaCustomer, 1); err == nil {
		t.Error("expected error when redis is unavailable")
	}
}

func TestNoopDeduplicator(t *testing.T) {
	dedup := NewNoopDeduplicator()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := dedup.Claim(ctx, domain.PersonaCustomer, 1)
		if err != nil || !ok {
			t.Fatalf("expected every claim to succeed, got %v %v", ok, err)
		}
	}
}

func TestNewRedisClient(t *testing.T) {
	mr, _ := setupRedis(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: mr.Host(), Port: mr.Port()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.Close()

	if _, err := NewRedisClient(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: "1"}); err == nil {
		t.Error("expected connection error")
	}
}
