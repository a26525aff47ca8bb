package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"nhc/internal/election/models"
	"nhc/pkg/platform/circuit"
)

// ErrUnavailable is returned by Guarded.Generation while the breaker is open.
var ErrUnavailable = errors.New("results cache unavailable")

// Store is the results cache a Guarded wraps.
type Store interface {
	Get(ctx context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, bool, error)
	Generation(ctx context.Context, zoneID uuid.UUID) (int64, error)
	Set(ctx context.Context, zoneID uuid.UUID, gen int64, results []*models.ElectionResults) error
	Invalidate(ctx context.Context, zoneID uuid.UUID) error
}

// Guarded stops calling an unhealthy cache. While its breaker is open every
// Get misses and every Set is dropped, so reads fall through to the store.
// Invalidate always reaches the cache: a skipped invalidation would leave
// stale results behind once the cache recovers.
type Guarded struct {
	next    Store
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next Store, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) Get(ctx context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, bool, error) {
	if !g.breaker.Allow() {
		return nil, false, nil
	}
	results, ok, err := g.next.Get(ctx, zoneID)
	if err != nil {
		g.failure(ctx, "get", err)
		return nil, false, nil
	}
	g.success(ctx)
	return results, ok, nil
}

// Generation reports an error while the breaker is open so that callers skip
// the fill that would follow.
func (g *Guarded) Generation(ctx context.Context, zoneID uuid.UUID) (int64, error) {
	if !g.breaker.Allow() {
		return 0, ErrUnavailable
	}
	gen, err := g.next.Generation(ctx, zoneID)
	if err != nil {
		g.failure(ctx, "generation", err)
		return 0, err
	}
	g.success(ctx)
	return gen, nil
}

func (g *Guarded) Set(ctx context.Context, zoneID uuid.UUID, gen int64, results []*models.ElectionResults) error {
	if !g.breaker.Allow() {
		return nil
	}
	if err := g.next.Set(ctx, zoneID, gen, results); err != nil {
		g.failure(ctx, "set", err)
		return nil
	}
	g.success(ctx)
	return nil
}

func (g *Guarded) Invalidate(ctx context.Context, zoneID uuid.UUID) error {
	err := g.next.Invalidate(ctx, zoneID)
	if err != nil {
		g.failure(ctx, "invalidate", err)
		return err
	}
	g.success(ctx)
	return nil
}

func (g *Guarded) failure(ctx context.Context, op string, err error) {
	_, change := g.breaker.RecordFailure()
	g.logger.WarnContext(ctx, "results cache call failed",
		"op", op,
		"breaker", g.breaker.Name(),
		"error", err.Error(),
	)
	if change.Opened {
		g.logger.ErrorContext(ctx, "results cache circuit opened", "breaker", g.breaker.Name())
	}
}

func (g *Guarded) success(ctx context.Context) {
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "results cache circuit closed", "breaker", g.breaker.Name())
	}
}
