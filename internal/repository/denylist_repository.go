package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "flight-auth:denylist:"

// DenylistRepository records tokens revoked before their natural expiry.
// Entries live exactly as long as the token would have, so the list never
// grows beyond the set of tokens that could still verify.
type DenylistRepository interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type denylistRepository struct {
	client *redis.Client
}

// NewDenylistRepository returns a Redis-backed denylist. A nil client yields
// a no-op implementation, restoring the purely stateless token model.
func NewDenylistRepository(client *redis.Client) DenylistRepository {
	if client == nil {
		return noopDenylist{}
	}
	return &denylistRepository{client: client}
}

func (r *denylistRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, denylistKey(tokenID), "1", ttl).Err()
}

func (r *denylistRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, denylistKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func denylistKey(tokenID string) string {
	return fmt.Sprintf("%s%s", denylistKeyPrefix, tokenID)
}

type noopDenylist struct{}

func (noopDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

func (noopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
