// Package cache keeps each zone's frozen election results in Redis. Results
// never change once written, so the only invalidation is a new close.
//
// Each zone also carries a generation counter that Invalidate advances. A
// fill names the generation it read before loading and is dropped when a
// close has moved the counter on, so a slow load cannot put pre-close
// results back after the invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nhc/internal/election/models"
)

const (
	keyPrefix        = "nhc:results:"
	generationPrefix = "nhc:results-gen:"
)

// Redis is a results cache backed by a go-redis client.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis creates a cache whose entries live for ttl. A zero ttl keeps them
// until invalidated.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(zoneID uuid.UUID) string {
	return keyPrefix + zoneID.String()
}

func generationKey(zoneID uuid.UUID) string {
	return generationPrefix + zoneID.String()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, c getter, zoneID uuid.UUID) (int64, error) {
	gen, err := c.Get(ctx, generationKey(zoneID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns the cached results for a zone. ok is false on a miss.
func (c *Redis) Get(ctx context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, bool, error) {
	raw, err := c.client.Get(ctx, key(zoneID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached results: %w", err)
	}
	var out []*models.ElectionResults
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode cached results: %w", err)
	}
	return out, true, nil
}

// Generation returns the zone's current generation. Zero until the first
// invalidation.
func (c *Redis) Generation(ctx context.Context, zoneID uuid.UUID) (int64, error) {
	gen, err := readGeneration(ctx, c.client, zoneID)
	if err != nil {
		return 0, fmt.Errorf("get results generation: %w", err)
	}
	return gen, nil
}

// Set stores results loaded under gen. The write is skipped when the zone's
// generation is no longer gen, checked atomically with WATCH.
func (c *Redis) Set(ctx context.Context, zoneID uuid.UUID, gen int64, results []*models.ElectionResults) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, zoneID)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(zoneID), raw, c.ttl)
			return nil
		})
		return err
	}, generationKey(zoneID))
	if errors.Is(err, redis.TxFailedErr) {
		// the generation moved between WATCH and EXEC
		return nil
	}
	if err != nil {
		return fmt.Errorf("set cached results: %w", err)
	}
	return nil
}

// Invalidate drops the zone's entry and advances its generation in one
// transaction.
func (c *Redis) Invalidate(ctx context.Context, zoneID uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(zoneID))
		pipe.Del(ctx, key(zoneID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached results: %w", err)
	}
	return nil
}

// Nop is used when Redis is not configured: every lookup misses.
type Nop struct{}

func (Nop) Get(context.Context, uuid.UUID) ([]*models.ElectionResults, bool, error) {
	return nil, false, nil
}

func (Nop) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (Nop) Set(context.Context, uuid.UUID, int64, []*models.ElectionResults) error { return nil }

func (Nop) Invalidate(context.Context, uuid.UUID) error { return nil }
