package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"DealPull/internal/domain/models"
	"DealPull/internal/domain/repository"
	"DealPull/pkg/logger"
)

type fakeFetcher struct {
	name  string
	deals []models.Deal
	err   error
	delay time.Duration
	panic bool
	calls int32
}

func (f *fakeFetcher) Source() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context, _ models.SourceParams) ([]models.Deal, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.panic {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.deals, f.err
}

type fakeRegistry struct {
	fetchers map[models.CorrelationKey]repository.SourceFetcher
}

func (r *fakeRegistry) Resolve(key models.CorrelationKey) (repository.SourceFetcher, bool) {
	f, ok := r.fetchers[key]
	return f, ok
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)        {}
func (nopMetrics) RecordFetchLatency(string, float64) {}
func (nopMetrics) RecordCache(string)                {}
func (nopMetrics) RecordRateLimited()                {}
func (nopMetrics) RecordDealCount(string, int)       {}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func storeKey(id string) models.CorrelationKey {
	return models.CorrelationKey{Kind: models.KindStore, ID: id}
}

func storeTask(id string) models.FetchTask {
	return models.FetchTask{Key: storeKey(id), Params: models.SourceParams{Store: id}}
}

func TestRunCollectsAllResults(t *testing.T) {
	reg := &fakeRegistry{fetchers: map[models.CorrelationKey]repository.SourceFetcher{
		storeKey("amazon"):  &fakeFetcher{name: "amazon", deals: []models.Deal{{Title: "a"}, {Title: "b"}}},
		storeKey("walmart"): &fakeFetcher{name: "walmart", deals: []models.Deal{{Title: "c"}}},
	}}
	agg := NewAggregator(reg, nopMetrics{}, newTestLogger(t), time.Second)

	results := agg.Run(context.Background(), []models.FetchTask{storeTask("amazon"), storeTask("walmart")})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if got := results[storeKey("amazon")]; !got.Succeeded || len(got.Deals) != 2 {
		t.Errorf("amazon result wrong: %+v", got)
	}
	if got := results[storeKey("walmart")]; !got.Succeeded || len(got.Deals) != 1 {
		t.Errorf("walmart result wrong: %+v", got)
	}
}

func TestRunIsConcurrent(t *testing.T) {
	delay := 150 * time.Millisecond
	reg := &fakeRegistry{fetchers: map[models.CorrelationKey]repository.SourceFetcher{
		storeKey("a"): &fakeFetcher{name: "a", delay: delay},
		storeKey("b"): &fakeFetcher{name: "b", delay: delay},
		storeKey("c"): &fakeFetcher{name: "c", delay: delay},
	}}
	agg := NewAggregator(reg, nopMetrics{}, newTestLogger(t), time.Second)

	start := time.Now()
	agg.Run(context.Background(), []models.FetchTask{storeTask("a"), storeTask("b"), storeTask("c")})
	elapsed := time.Since(start)

	// sequential execution would take 3x the delay
	if elapsed > 2*delay {
		t.Fatalf("tasks did not overlap: took %v", elapsed)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	reg := &fakeRegistry{fetchers: map[models.CorrelationKey]repository.SourceFetcher{
		storeKey("good"):    &fakeFetcher{name: "good", deals: []models.Deal{{Title: "x"}}},
		storeKey("bad"):     &fakeFetcher{name: "bad", err: errors.New("upstream down")},
		storeKey("crashed"): &fakeFetcher{name: "crashed", panic: true},
	}}
	agg := NewAggregator(reg, nopMetrics{}, newTestLogger(t), time.Second)

	results := agg.Run(context.Background(), []models.FetchTask{
		storeTask("good"), storeTask("bad"), storeTask("crashed"),
	})

	if len(results) != 3 {
		t.Fatalf("every task must settle, got %d results", len(results))
	}
	if got := results[storeKey("good")]; !got.Succeeded || len(got.Deals) != 1 {
		t.Errorf("healthy source affected by siblings: %+v", got)
	}
	for _, id := range []string{"bad", "crashed"} {
		got := results[storeKey(id)]
		if got.Succeeded {
			t.Errorf("%s should not have succeeded", id)
		}
		if got.Deals == nil || len(got.Deals) != 0 {
			t.Errorf("%s should settle as empty slice, got %#v", id, got.Deals)
		}
	}
}

func TestRunTaskTimeout(t *testing.T) {
	reg := &fakeRegistry{fetchers: map[models.CorrelationKey]repository.SourceFetcher{
		storeKey("slow"): &fakeFetcher{name: "slow", delay: time.Second, deals: []models.Deal{{Title: "late"}}},
		storeKey("fast"): &fakeFetcher{name: "fast", deals: []models.Deal{{Title: "ok"}}},
	}}
	agg := NewAggregator(reg, nopMetrics{}, newTestLogger(t), 50*time.Millisecond)

	results := agg.Run(context.Background(), []models.FetchTask{storeTask("slow"), storeTask("fast")})

	if got := results[storeKey("slow")]; got.Succeeded || len(got.Deals) != 0 {
		t.Errorf("slow source should time out to empty result: %+v", got)
	}
	if got := results[storeKey("fast")]; !got.Succeeded {
		t.Errorf("fast source should be unaffected: %+v", got)
	}
}

func TestRunUnknownKeySettlesEmpty(t *testing.T) {
	agg := NewAggregator(&fakeRegistry{}, nopMetrics{}, newTestLogger(t), time.Second)

	results := agg.Run(context.Background(), []models.FetchTask{storeTask("ghost")})
	got, ok := results[storeKey("ghost")]
	if !ok {
		t.Fatal("unresolvable task must still settle")
	}
	if got.Succeeded || got.Deals == nil {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestRunNilDealsNormalized(t *testing.T) {
	reg := &fakeRegistry{fetchers: map[models.CorrelationKey]repository.SourceFetcher{
		storeKey("empty"): &fakeFetcher{name: "empty", deals: nil},
	}}
	agg := NewAggregator(reg, nopMetrics{}, newTestLogger(t), time.Second)

	got := agg.Run(context.Background(), []models.FetchTask{storeTask("empty")})[storeKey("empty")]
	if !got.Succeeded {
		t.Fatalf("nil deals with nil error is a success: %+v", got)
	}
	if got.Deals == nil {
		t.Fatal("nil deals should normalize to empty slice")
	}
}
