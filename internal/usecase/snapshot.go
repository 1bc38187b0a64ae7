package usecase

import (
	"context"
	"errors"
	"time"

	"DealPull/internal/domain/models"
	"DealPull/internal/domain/repository"
	"DealPull/pkg/cache"
	"DealPull/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const snapshotCacheKey = "snapshot:default"

// RefreshedEventKey identifies snapshot refresh notifications on the
// event topic.
const RefreshedEventKey = "snapshot.refreshed"

// SnapshotService serves the cached default aggregated view. Within
// the TTL every caller gets the cached snapshot; on expiry exactly one
// caller recomputes while concurrent callers coalesce onto that
// in-flight computation.
type SnapshotService struct {
	deals      *DealsUseCase
	cache      cache.Service
	metrics    repository.Metrics
	publisher  repository.Publisher
	log        *logger.Logger
	group      singleflight.Group
	ttl        time.Duration
	defaultZip string
}

func NewSnapshotService(deals *DealsUseCase, c cache.Service, metrics repository.Metrics, publisher repository.Publisher, log *logger.Logger, ttl time.Duration, defaultZip string) *SnapshotService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotService{
		deals:      deals,
		cache:      c,
		metrics:    metrics,
		publisher:  publisher,
		log:        log,
		ttl:        ttl,
		defaultZip: defaultZip,
	}
}

// Get returns the current snapshot, recomputing it when the cached one
// has expired.
func (s *SnapshotService) Get(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.cache.Get(ctx, snapshotCacheKey, &snap)
	if err == nil {
		s.metrics.RecordCache("hit")
		return snap, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("snapshot cache read failed", logger.Error(err))
	}
	s.metrics.RecordCache("miss")

	// Coalesce concurrent misses onto one recompute. The leader runs on
	// a background context so a caller hanging up cannot poison the
	// result the followers are waiting on.
	v, err, _ := s.group.Do(snapshotCacheKey, func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	return v.(models.Snapshot), nil
}

// Refresh recomputes and stores the snapshot unconditionally. Used by
// the warmup consumer and at startup.
func (s *SnapshotService) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do(snapshotCacheKey, func() (interface{}, error) {
		return s.refresh(ctx)
	})
	return err
}

func (s *SnapshotService) refresh(ctx context.Context) (models.Snapshot, error) {
	resp, err := s.deals.GetDeals(ctx, models.DealsRequest{
		Country: "US",
		Zip:     s.defaultZip,
		Stores:  []string{"amazon", "walmart", "target", "slickdeals"},
	})
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{
		Discounts:   Flatten(resp),
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, snapshotCacheKey, snap, s.ttl); err != nil {
		s.log.Error("snapshot cache write failed", logger.Error(err))
	} else {
		s.metrics.RecordCache("refresh")
	}

	if s.publisher != nil {
		evt := map[string]interface{}{
			"generated_at": snap.GeneratedAt.Format(time.RFC3339),
			"deal_count":   len(snap.Discounts),
		}
		if err := s.publisher.Publish(ctx, RefreshedEventKey, evt); err != nil {
			s.log.Warn("snapshot event publish failed", logger.Error(err))
		}
	}

	s.log.Info("snapshot refreshed", logger.Int("deals", len(snap.Discounts)))
	return snap, nil
}
