package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"DealPull/internal/domain/models"
	"DealPull/internal/domain/repository"
	"DealPull/pkg/logger"
)

// Aggregator runs planned fetch tasks concurrently and collects every
// outcome. A failed, panicked or timed-out task settles as an empty
// result for its key; nothing a single source does can fail the run.
type Aggregator struct {
	registry    repository.SourceRegistry
	metrics     repository.Metrics
	log         *logger.Logger
	taskTimeout time.Duration
}

func NewAggregator(registry repository.SourceRegistry, metrics repository.Metrics, log *logger.Logger, taskTimeout time.Duration) *Aggregator {
	if taskTimeout <= 0 {
		taskTimeout = 20 * time.Second
	}
	return &Aggregator{
		registry:    registry,
		metrics:     metrics,
		log:         log,
		taskTimeout: taskTimeout,
	}
}

// Run executes all tasks in parallel and returns once every task has
// settled. The result map holds exactly one entry per distinct task key.
func (a *Aggregator) Run(ctx context.Context, tasks []models.FetchTask) map[models.CorrelationKey]models.TaskResult {
	results := make(map[models.CorrelationKey]models.TaskResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	resultCh := make(chan models.TaskResult, len(tasks))
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task models.FetchTask) {
			defer wg.Done()
			resultCh <- a.runTask(ctx, task)
		}(task)
	}

	wg.Wait()
	close(resultCh)

	for res := range resultCh {
		results[res.Key] = res
	}
	return results
}

func (a *Aggregator) runTask(ctx context.Context, task models.FetchTask) models.TaskResult {
	fetcher, ok := a.registry.Resolve(task.Key)
	if !ok {
		a.log.Warn("no fetcher for task",
			logger.String("kind", string(task.Key.Kind)),
			logger.String("id", task.Key.ID))
		return models.TaskResult{Key: task.Key, Deals: []models.Deal{}}
	}

	taskCtx, cancel := context.WithTimeout(ctx, a.taskTimeout)
	defer cancel()

	start := time.Now()
	deals, err := a.fetchGuarded(taskCtx, fetcher, task.Params)
	elapsed := time.Since(start)

	a.metrics.RecordFetchLatency(fetcher.Source(), elapsed.Seconds())

	if err != nil {
		a.metrics.RecordFetch(fetcher.Source(), "error")
		a.log.Error("source fetch failed",
			logger.String("source", fetcher.Source()),
			logger.String("kind", string(task.Key.Kind)),
			logger.String("id", task.Key.ID),
			logger.Duration("elapsed_ms", elapsed),
			logger.Error(err))
		return models.TaskResult{Key: task.Key, Deals: []models.Deal{}}
	}

	if deals == nil {
		deals = []models.Deal{}
	}

	a.metrics.RecordFetch(fetcher.Source(), "success")
	a.metrics.RecordDealCount(fetcher.Source(), len(deals))
	a.log.Debug("source fetch finished",
		logger.String("source", fetcher.Source()),
		logger.Int("deals", len(deals)),
		logger.Duration("elapsed_ms", elapsed))

	return models.TaskResult{Key: task.Key, Deals: deals, Succeeded: true}
}

// fetchGuarded calls the fetcher and converts a panic into an error so
// one bad source cannot crash the aggregation.
func (a *Aggregator) fetchGuarded(ctx context.Context, fetcher repository.SourceFetcher, params models.SourceParams) (deals []models.Deal, err error) {
	defer func() {
		if r := recover(); r != nil {
			deals = nil
			err = fmt.Errorf("fetcher panic: %v", r)
		}
	}()
	return fetcher.Fetch(ctx, params)
}
