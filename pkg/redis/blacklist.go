package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records revoked JWT ids until the token would have expired anyway.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}

func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiry time.Duration) error {
	if expiry <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, blacklistKey(tokenID), "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}

	logger.Debug("Token blacklisted", map[string]interface{}{
		"expiry": expiry.String(),
	})
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	val, err := b.client.Get(ctx, blacklistKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}
	return val == "revoked", nil
}
