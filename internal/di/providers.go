package di

import (
	"fmt"

	"DealPull/internal/domain/repository"
	"DealPull/internal/handler/api"
	"DealPull/internal/service/ratelimit"
	"DealPull/internal/source"
	"DealPull/internal/source/catalog"
	"DealPull/internal/source/category"
	"DealPull/internal/source/slickdeals"
	"DealPull/internal/usecase"
	"DealPull/pkg/cache"
	"DealPull/pkg/config"
	xhttp "DealPull/pkg/http"
	pkgkafka "DealPull/pkg/kafka"
	applogger "DealPull/pkg/logger"
	"DealPull/pkg/metrics"
	"DealPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the snapshot cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return newRedisCache(cfg)
	case "layered":
		rc, err := newRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(rc), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func newRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	return cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
}

// ProvideLimiter creates the sliding-window rate limiter.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Quota, cfg.RateLimit.Window)
}

// ProvideSourceClient creates the shared paced outbound client.
func ProvideSourceClient(cfg *config.Config) *source.Client {
	return source.NewClient(source.ClientConfig{
		Timeout:   cfg.Sources.FetchTimeout,
		MaxRPS:    cfg.Sources.MaxRPS,
		Burst:     cfg.Sources.Burst,
		UserAgent: cfg.Sources.UserAgent,
	})
}

// ProvideRegistry builds the source registry: the feed fetcher, one
// catalog scraper per store, and the category feed.
func ProvideRegistry(cfg *config.Config, client *source.Client) repository.SourceRegistry {
	stores := map[string]repository.SourceFetcher{
		"amazon":  catalog.NewAmazon(client, cfg.Sources.Catalogs.Amazon),
		"walmart": catalog.NewWalmart(client, cfg.Sources.Catalogs.Walmart),
		"target":  catalog.NewTarget(client, cfg.Sources.Catalogs.Target),
	}

	return source.NewRegistry(
		slickdeals.NewFeed(client, cfg.Sources.FeedURL),
		category.NewFeed(client, cfg.Sources.CategoryURL),
		stores,
	)
}

// ProvideDealsUseCase assembles the aggregation pipeline.
func ProvideDealsUseCase(
	registry repository.SourceRegistry,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.DealsUseCase {
	agg := usecase.NewAggregator(registry, m, log, cfg.Sources.FetchTimeout)
	return usecase.NewDealsUseCase(usecase.NewPlanner(), agg, usecase.NewAssembler(), log)
}

// ProvideKafkaPublisher creates the snapshot event producer, or nil
// when Kafka is disabled.
func ProvideKafkaPublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	return pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.EventTopic),
		pkgkafka.WithBatchBytes(cfg.Kafka.BatchBytes),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTO),
	)
}

// ProvideSnapshotService creates the cached default snapshot service.
func ProvideSnapshotService(
	deals *usecase.DealsUseCase,
	cacheSvc cache.Service,
	m repository.Metrics,
	publisher repository.Publisher,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.SnapshotService {
	return usecase.NewSnapshotService(deals, cacheSvc, m, publisher, log, cfg.Cache.SnapshotTTL, cfg.Sources.DefaultZip)
}

// ProvideKafkaConsumer creates the warmup consumer, or nil when Kafka
// is disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	return pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerTopic(cfg.Kafka.WarmupTopic),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerFetch(cfg.Kafka.MinBytes, cfg.Kafka.MaxBytes),
	)
}

// ProvideWarmupHandler creates the warmup message handler.
func ProvideWarmupHandler(snapshots *usecase.SnapshotService, cfg *config.Config, log *applogger.Logger) pkgkafka.MessageHandler {
	return usecase.NewWarmupHandler(snapshots, cfg.Kafka.WarmupTopic, log)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	deals *usecase.DealsUseCase,
	snapshots *usecase.SnapshotService,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewDealsHandler(deals, snapshots, limiter, m, log, cfg.RateLimit.Window)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	limiter *ratelimit.Limiter,
	snapshots *usecase.SnapshotService,
	cacheSvc cache.Service,
	publisher repository.Publisher,
	consumer *pkgkafka.Consumer,
	warmup pkgkafka.MessageHandler,
) *server.App {
	return server.New(cfg, log, handler, limiter, snapshots, cacheSvc, publisher, consumer, warmup)
}
