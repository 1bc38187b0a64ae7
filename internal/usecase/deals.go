package usecase

import (
	"context"
	"time"

	"DealPull/internal/domain/models"
	"DealPull/pkg/logger"
)

// DealsUseCase is the aggregation pipeline: plan, fan out, assemble.
type DealsUseCase struct {
	planner   *Planner
	agg       *Aggregator
	assembler *Assembler
	log       *logger.Logger
}

func NewDealsUseCase(planner *Planner, agg *Aggregator, assembler *Assembler, log *logger.Logger) *DealsUseCase {
	return &DealsUseCase{
		planner:   planner,
		agg:       agg,
		assembler: assembler,
		log:       log,
	}
}

// GetDeals aggregates listings for a validated request.
func (uc *DealsUseCase) GetDeals(ctx context.Context, req models.DealsRequest) (models.DealsResponse, error) {
	start := time.Now()

	tasks := uc.planner.Plan(req)
	results := uc.agg.Run(ctx, tasks)
	resp := uc.assembler.Assemble(tasks, results)

	succeeded := 0
	for _, res := range results {
		if res.Succeeded {
			succeeded++
		}
	}
	uc.log.Info("aggregation finished",
		logger.String("zip", req.Zip),
		logger.Int("tasks", len(tasks)),
		logger.Int("succeeded", succeeded),
		logger.Duration("elapsed_ms", time.Since(start)))

	return resp, nil
}
