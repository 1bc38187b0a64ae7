package repository

import (
	"context"

	"DealPull/internal/domain/models"
)

// SourceFetcher fetches normalized listings from one external source.
// Implementations must respect ctx and return an explicit error instead
// of panicking across this boundary; the aggregator still guards the
// call so one misbehaving source cannot take siblings down.
type SourceFetcher interface {
	Fetch(ctx context.Context, params models.SourceParams) ([]models.Deal, error)
	Source() string
}

// SourceRegistry resolves a correlation key to the fetcher serving it.
// Built once at startup from the closed set of source kinds.
type SourceRegistry interface {
	Resolve(key models.CorrelationKey) (SourceFetcher, bool)
}

// Publisher emits domain events (snapshot refresh notifications).
type Publisher interface {
	Publish(ctx context.Context, key string, payload interface{}) error
	Close() error
}

type Metrics interface {
	RecordFetch(source, status string)
	RecordFetchLatency(source string, seconds float64)
	RecordCache(event string)
	RecordRateLimited()
	RecordDealCount(source string, n int)
}
