package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const denylistPrefix = "session:denylist:"

// TokenDenylist invalidates session tokens before their natural expiry.
// Sessions are otherwise stateless JWTs; logout records the token ID here
// for the remainder of its lifetime.
type TokenDenylist struct {
	client *redis.Client
	logger *zap.Logger
}

// NewTokenDenylist constructs a Redis-backed denylist.
func NewTokenDenylist(client *redis.Client, logger *zap.Logger) *TokenDenylist {
	return &TokenDenylist{client: client, logger: logger}
}

// Revoke marks a token ID as invalid until it would have expired anyway.
// Best-effort: a Redis failure is logged, not surfaced, since the token
// still dies at its natural expiry.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) {
	if d == nil || d.client == nil || tokenID == "" {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := d.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err(); err != nil {
		d.logger.Warn("failed to denylist token", zap.Error(err))
	}
}

// IsRevoked reports whether the token ID has been revoked. On Redis failure
// the token is treated as valid so an outage does not lock everyone out.
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) bool {
	if d == nil || d.client == nil || tokenID == "" {
		return false
	}
	exists, err := d.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		d.logger.Warn("denylist lookup failed", zap.Error(err))
		return false
	}
	return exists > 0
}
