package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/casarossa/casarossa-backend/config"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection used for the revoked-token blacklist.
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The global client is only set once the connection is proven, so
	// GetClient() == nil reliably means "revocation unavailable".
	if err := c.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		c.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	client = c

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// RevokeToken blacklists a token until its natural expiry. Signing out
// invalidates the session server-side; the middleware refuses revoked
// tokens even though their signature is still valid.
func RevokeToken(ctx context.Context, token string, expiry time.Duration) error {
	logger.Debug("Revoking token", map[string]interface{}{
		"expiry": expiry.String(),
	})

	key := fmt.Sprintf("revoked:%s", token)
	if err := client.Set(ctx, key, "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to revoke token", err, nil)
		return err
	}

	return nil
}

// IsTokenRevoked checks whether a token has been revoked by sign-out.
func IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("revoked:%s", token)
	val, err := client.Get(ctx, key).Result()

	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check revoked token", err, nil)
		return false, err
	}

	return val == "revoked", nil
}
