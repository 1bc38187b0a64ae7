package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"DealPull/internal/domain/models"
	"DealPull/internal/domain/repository"
	"DealPull/pkg/cache"
)

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

// snapshotFixture wires a SnapshotService over counting fake fetchers.
func snapshotFixture(t *testing.T, ttl time.Duration, fetchDelay time.Duration) (*SnapshotService, *fakeFetcher, *fakePublisher) {
	t.Helper()

	feed := &fakeFetcher{name: "slickdeals", delay: fetchDelay, deals: []models.Deal{{Title: "feed deal", Source: "slickdeals"}}}
	reg := &fakeRegistry{fetchers: map[models.CorrelationKey]repository.SourceFetcher{
		{Kind: models.KindFeed, ID: "10001"}: feed,
		storeKey("amazon"):                   &fakeFetcher{name: "amazon", deals: []models.Deal{{Title: "a", Source: "amazon"}}},
		storeKey("walmart"):                  &fakeFetcher{name: "walmart", deals: []models.Deal{{Title: "w", Source: "walmart"}}},
		storeKey("target"):                   &fakeFetcher{name: "target", deals: []models.Deal{{Title: "t", Source: "target"}}},
	}}

	log := newTestLogger(t)
	deals := NewDealsUseCase(NewPlanner(), NewAggregator(reg, nopMetrics{}, log, time.Second), NewAssembler(), log)

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	pub := &fakePublisher{}
	svc := NewSnapshotService(deals, mem, nopMetrics{}, pub, log, ttl, "10001")
	return svc, feed, pub
}

func TestSnapshotServedFromCacheWithinTTL(t *testing.T) {
	svc, feed, _ := snapshotFixture(t, time.Minute, 0)

	first, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if len(first.Discounts) != 4 {
		t.Fatalf("expected 4 flattened deals, got %d", len(first.Discounts))
	}

	second, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("second get should serve the cached snapshot")
	}
	if got := atomic.LoadInt32(&feed.calls); got != 1 {
		t.Errorf("expected 1 feed fetch within ttl, got %d", got)
	}
}

func TestSnapshotRecomputedAfterExpiry(t *testing.T) {
	svc, feed, _ := snapshotFixture(t, 50*time.Millisecond, 0)

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("first get: %v", err)
	}
	time.Sleep(70 * time.Millisecond)
	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("second get: %v", err)
	}

	if got := atomic.LoadInt32(&feed.calls); got != 2 {
		t.Errorf("expected recompute after expiry, got %d fetches", got)
	}
}

func TestSnapshotColdMissesCoalesce(t *testing.T) {
	svc, feed, _ := snapshotFixture(t, time.Minute, 100*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Get(context.Background()); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&feed.calls); got != 1 {
		t.Errorf("concurrent cold gets should coalesce to 1 fetch, got %d", got)
	}
}

func TestRefreshPublishesEvent(t *testing.T) {
	svc, _, pub := snapshotFixture(t, time.Minute, 0)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.keys) != 1 || pub.keys[0] != RefreshedEventKey {
		t.Fatalf("expected one %q event, got %v", RefreshedEventKey, pub.keys)
	}
}
