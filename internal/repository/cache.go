package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

const (
	profileKeyPrefix  = "billify:profile:"
	invoicesKeyPrefix = "billify:invoices:"
	versionKeyPrefix  = "billify:invoices-version:"
	revokedKeyPrefix  = "billify:revoked:"
	defaultCacheTTL   = 5 * time.Minute
)

// RedisCache implements Cache and RevocationList on Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisCache creates a Redis client from cfg.
func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCacheWithClient(client, cfg.TTL)
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("cache"),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetProfile(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	ok, err := c.getJSON(ctx, profileKeyPrefix+userID, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

func (c *RedisCache) SetProfile(ctx context.Context, profile *models.BusinessProfile) error {
	return c.setJSON(ctx, profileKeyPrefix+profile.UserID, profile)
}

func (c *RedisCache) InvalidateProfile(ctx context.Context, userID string) error {
	return c.client.Del(ctx, profileKeyPrefix+userID).Err()
}

// InvoicesVersion returns the current list version, zero if none was set.
func (c *RedisCache) InvoicesVersion(ctx context.Context, userID string) (int64, error) {
	v, err := c.client.Get(ctx, versionKeyPrefix+userID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func (c *RedisCache) GetInvoices(ctx context.Context, userID string, version int64) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	ok, err := c.getJSON(ctx, invoicesKey(userID, version), &invoices)
	if err != nil || !ok {
		return nil, err
	}
	return invoices, nil
}

func (c *RedisCache) SetInvoices(ctx context.Context, userID string, version int64, invoices []*models.Invoice) error {
	return c.setJSON(ctx, invoicesKey(userID, version), invoices)
}

// InvalidateInvoices bumps the list version. Lists cached under older
// versions are left to expire with their TTL.
func (c *RedisCache) InvalidateInvoices(ctx context.Context, userID string) error {
	return c.client.Incr(ctx, versionKeyPrefix+userID).Err()
}

func invoicesKey(userID string, version int64) string {
	return fmt.Sprintf("%s%s:%d", invoicesKeyPrefix, userID, version)
}

// Revoke marks a token as signed out for ttl, the token's remaining life.
func (c *RedisCache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (c *RedisCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss", logging.Fields{"key": key})
		return false, nil
	}
	if err != nil {
		c.logger.Error("Cache get error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	c.logger.Debug("Cache hit", logging.Fields{"key": key})
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set error", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return err
	}
	return nil
}
