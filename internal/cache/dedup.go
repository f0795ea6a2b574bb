package cache

import (
	"context"
	"fmt"
	"time"

	"order-bot/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultDedupTTL covers Telegram's redelivery window for failed webhooks
const DefaultDedupTTL = 24 * time.Hour

// UpdateDeduplicator remembers which updates have been handled so webhook
// redeliveries run at most once
type UpdateDeduplicator interface {
	// Claim reports true when the update has not been seen before
	Claim(ctx context.Context, persona domain.Persona, updateID int) (bool, error)
	// Release forgets a claim so a redelivery is handled again
	Release(ctx context.Context, persona domain.Persona, updateID int) error
}

type redisDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduplicator creates a deduplicator storing markers in Redis
func NewRedisDeduplicator(client *redis.Client, ttl time.Duration) UpdateDeduplicator {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &redisDeduplicator{client: client, ttl: ttl}
}

func updateKey(persona domain.Persona, updateID int) string {
	return fmt.Sprintf("update:%s:%d", persona, updateID)
}

func (d *redisDeduplicator) Claim(ctx context.Context, persona domain.Persona, updateID int) (bool, error) {
	ok, err := d.client.SetNX(ctx, updateKey(persona, updateID), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim update: %w", err)
	}
	return ok, nil
}

func (d *redisDeduplicator) Release(ctx context.Context, persona domain.Persona, updateID int) error {
	if err := d.client.Del(ctx, updateKey(persona, updateID)).Err(); err != nil {
		return fmt.Errorf("failed to release update: %w", err)
	}
	return nil
}

type noopDeduplicator struct{}

// NewNoopDeduplicator creates a deduplicator that claims every update
func NewNoopDeduplicator() UpdateDeduplicator {
	return noopDeduplicator{}
}

func (noopDeduplicator) Claim(ctx context.Context, persona domain.Persona, updateID int) (bool, error) {
	return true, nil
}

func (noopDeduplicator) Release(ctx context.Context, persona domain.Persona, updateID int) error {
	return nil
}
