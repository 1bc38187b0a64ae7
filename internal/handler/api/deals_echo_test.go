package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"DealPull/internal/domain/models"
	"DealPull/internal/domain/repository"
	"DealPull/internal/service/ratelimit"
	"DealPull/internal/usecase"
	"DealPull/pkg/cache"
	"DealPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fakeFetcher struct {
	name  string
	deals []models.Deal
	calls int32
}

func (f *fakeFetcher) Source() string { return f.name }

func (f *fakeFetcher) Fetch(context.Context, models.SourceParams) ([]models.Deal, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.deals, nil
}

type fakeRegistry struct {
	fetchers map[models.CorrelationKey]repository.SourceFetcher
}

func (r *fakeRegistry) Resolve(key models.CorrelationKey) (repository.SourceFetcher, bool) {
	f, ok := r.fetchers[key]
	return f, ok
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)         {}
func (nopMetrics) RecordFetchLatency(string, float64) {}
func (nopMetrics) RecordCache(string)                 {}
func (nopMetrics) RecordRateLimited()                 {}
func (nopMetrics) RecordDealCount(string, int)        {}

type fixture struct {
	e       *echo.Echo
	feed    *fakeFetcher
	amazon  *fakeFetcher
	cats    *fakeFetcher
	limiter *ratelimit.Limiter
}

func mkDeals(source string, n int) []models.Deal {
	deals := make([]models.Deal, n)
	for i := range deals {
		deals[i] = models.Deal{Title: source, Price: "$1.00", Source: source}
	}
	return deals
}

func newFixture(t *testing.T, quota int) *fixture {
	t.Helper()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	feed := &fakeFetcher{name: "slickdeals", deals: mkDeals("slickdeals", 3)}
	amazon := &fakeFetcher{name: "amazon", deals: mkDeals("amazon", 2)}
	cats := &fakeFetcher{name: "category", deals: mkDeals("category", 1)}

	reg := &fakeRegistry{fetchers: map[models.CorrelationKey]repository.SourceFetcher{
		{Kind: models.KindFeed, ID: "10001"}:           feed,
		{Kind: models.KindStore, ID: "amazon"}:         amazon,
		{Kind: models.KindCategory, ID: "restaurants"}: cats,
	}}

	deals := usecase.NewDealsUseCase(
		usecase.NewPlanner(),
		usecase.NewAggregator(reg, nopMetrics{}, log, time.Second),
		usecase.NewAssembler(),
		log,
	)

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })
	snapshots := usecase.NewSnapshotService(deals, mem, nopMetrics{}, nil, log, time.Minute, "10001")

	limiter := ratelimit.New(quota, time.Minute)
	h := NewDealsHandler(deals, snapshots, limiter, nopMetrics{}, log, time.Minute)

	e := echo.New()
	h.RegisterRoutes(e)

	return &fixture{e: e, feed: feed, amazon: amazon, cats: cats, limiter: limiter}
}

func postDiscounts(fx *fixture, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/get-discounts", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)
	return rec
}

func TestGetDiscounts(t *testing.T) {
	fx := newFixture(t, 10)

	rec := postDiscounts(fx, `{
		"country": "US",
		"zip": "10001",
		"stores": ["amazon", "slickdeals"],
		"categories": ["restaurants"]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.DealsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.Slickdeals) != 3 {
		t.Errorf("expected 3 feed deals, got %d", len(resp.Slickdeals))
	}
	if len(resp.StoreDeals["amazon"]) != 2 {
		t.Errorf("expected 2 amazon deals, got %d", len(resp.StoreDeals["amazon"]))
	}
	if len(resp.CategoryDeals["restaurants"]) != 1 {
		t.Errorf("expected 1 category deal, got %d", len(resp.CategoryDeals["restaurants"]))
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp not RFC3339: %q", resp.Timestamp)
	}
}

func TestGetDiscountsFailedSourceIsEmptyKey(t *testing.T) {
	fx := newFixture(t, 10)

	// walmart has no registered fetcher, so its slot settles empty
	rec := postDiscounts(fx, `{"country":"US","zip":"10001","stores":["amazon","walmart"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.DealsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	deals, ok := resp.StoreDeals["walmart"]
	if !ok {
		t.Fatal("failed store must still be present in store_deals")
	}
	if len(deals) != 0 {
		t.Fatalf("failed store should be an empty list, got %d", len(deals))
	}
}

func TestGetDiscountsValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zip too short", `{"country":"US","zip":"123"}`},
		{"zip not digits", `{"country":"US","zip":"1000a"}`},
		{"zip signed", `{"country":"US","zip":"-1000"}`},
		{"missing zip", `{"country":"US"}`},
		{"unsupported country", `{"country":"FR","zip":"10001"}`},
		{"unknown store", `{"country":"US","zip":"10001","stores":["ebay"]}`},
		{"malformed json", `{"country":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, 10)
			rec := postDiscounts(fx, tc.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			total := atomic.LoadInt32(&fx.feed.calls) + atomic.LoadInt32(&fx.amazon.calls) + atomic.LoadInt32(&fx.cats.calls)
			if total != 0 {
				t.Fatalf("invalid request must not reach any fetcher, got %d calls", total)
			}
		})
	}
}

func TestGetDiscountsDefaultStores(t *testing.T) {
	fx := newFixture(t, 10)

	rec := postDiscounts(fx, `{"country":"US","zip":"10001"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp models.DealsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// default store set is the full catalog plus the feed
	for _, store := range []string{"amazon", "walmart", "target"} {
		if _, ok := resp.StoreDeals[store]; !ok {
			t.Errorf("default stores should include %q", store)
		}
	}
	if atomic.LoadInt32(&fx.feed.calls) != 1 {
		t.Error("default stores should include the feed")
	}
}

func TestGetDiscountsRateLimited(t *testing.T) {
	fx := newFixture(t, 2)
	body := `{"country":"US","zip":"10001","stores":["amazon"]}`

	for i := 0; i < 2; i++ {
		if rec := postDiscounts(fx, body); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := postDiscounts(fx, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-quota request should get 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
	if calls := atomic.LoadInt32(&fx.amazon.calls); calls != 2 {
		t.Errorf("rejected request must not trigger fetches, got %d calls", calls)
	}
}

func TestSnapshotEndpointUnthrottled(t *testing.T) {
	fx := newFixture(t, 1)

	// exhaust the api quota
	postDiscounts(fx, `{"country":"US","zip":"10001","stores":["amazon"]}`)

	req := httptest.NewRequest(http.MethodGet, "/discounts", nil)
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot endpoint must not be throttled, got %d", rec.Code)
	}

	var body struct {
		Discounts []models.Deal `json:"discounts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Discounts) == 0 {
		t.Error("snapshot should carry the default aggregation")
	}
}

func TestStatusEndpoint(t *testing.T) {
	fx := newFixture(t, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected status body: %v", body)
	}
}
