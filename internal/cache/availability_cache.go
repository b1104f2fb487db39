// Package cache holds read-through caches in front of availability queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/metrics"
)

// AvailabilityCache stores availability answers per offering. Invalidate drops every
// cached answer of one offering at once.
//
// Get also returns the generation it read. Set writes under that generation, so an
// answer computed before an invalidation is never visible after it. An empty
// generation means the cache could not be read and Set does nothing.
type AvailabilityCache interface {
	Get(ctx context.Context, offeringID uuid.UUID, query string) (a reservation.Availability, generation string, hit bool)
	Set(ctx context.Context, offeringID uuid.UUID, generation, query string, a reservation.Availability)
	Invalidate(ctx context.Context, offeringID uuid.UUID)
}

// NewRedisClient parses a redis:// URL and returns a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// RedisAvailabilityCache keys entries by a per-offering generation number.
// Invalidation bumps the generation, orphaning older entries until their TTL expires.
type RedisAvailabilityCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisAvailabilityCache creates a Redis-backed AvailabilityCache.
func NewRedisAvailabilityCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func versionKey(offeringID uuid.UUID) string {
	return "availability:ver:" + offeringID.String()
}

func entryKey(offeringID uuid.UUID, generation, query string) string {
	return fmt.Sprintf("availability:%s:%s:%s", offeringID, generation, query)
}

func (c *RedisAvailabilityCache) generation(ctx context.Context, offeringID uuid.UUID) (string, error) {
	gen, err := c.client.Get(ctx, versionKey(offeringID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// Get returns a cached answer. Redis failures count as misses.
func (c *RedisAvailabilityCache) Get(ctx context.Context, offeringID uuid.UUID, query string) (reservation.Availability, string, bool) {
	gen, err := c.generation(ctx, offeringID)
	if err != nil {
		c.logger.Warn("availability cache unavailable", zap.Error(err))
		metrics.AvailabilityCacheLookups.WithLabelValues("error").Inc()
		return reservation.Availability{}, "", false
	}

	raw, err := c.client.Get(ctx, entryKey(offeringID, gen, query)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("availability cache read failed", zap.Error(err))
		}
		metrics.AvailabilityCacheLookups.WithLabelValues("miss").Inc()
		return reservation.Availability{}, gen, false
	}

	var a reservation.Availability
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		metrics.AvailabilityCacheLookups.WithLabelValues("miss").Inc()
		return reservation.Availability{}, gen, false
	}
	metrics.AvailabilityCacheLookups.WithLabelValues("hit").Inc()
	return a, gen, true
}

// Set stores an answer under the generation returned by Get. If the offering was
// invalidated since, the entry lands under the retired generation and is never read.
func (c *RedisAvailabilityCache) Set(ctx context.Context, offeringID uuid.UUID, generation, query string, a reservation.Availability) {
	if generation == "" {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, entryKey(offeringID, generation, query), string(data), c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the offering's generation.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, offeringID uuid.UUID) {
	if err := c.client.Incr(ctx, versionKey(offeringID)).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed",
			zap.String("offering_id", offeringID.String()),
			zap.Error(err),
		)
	}
}

// NopAvailabilityCache never caches. Used when Redis is not configured.
type NopAvailabilityCache struct{}

func (NopAvailabilityCache) Get(context.Context, uuid.UUID, string) (reservation.Availability, string, bool) {
	return reservation.Availability{}, "", false
}

func (NopAvailabilityCache) Set(context.Context, uuid.UUID, string, string, reservation.Availability) {}

func (NopAvailabilityCache) Invalidate(context.Context, uuid.UUID) {}
