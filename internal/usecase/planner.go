package usecase

import (
	"DealPull/internal/domain/models"
)

// Planner turns a validated request into the ordered list of fetch
// tasks the aggregator will run. Planning is pure and deterministic:
// the same request always yields the same tasks in the same order.
type Planner struct{}

func NewPlanner() *Planner { return &Planner{} }

// Plan expands a request into tasks: one zip-scoped feed task when the
// feed store was requested, then one task per remaining store in
// request order, then one task per category. Duplicate stores and
// categories collapse to their first occurrence.
func (p *Planner) Plan(req models.DealsRequest) []models.FetchTask {
	tasks := make([]models.FetchTask, 0, len(req.Stores)+len(req.Categories))

	seenStores := make(map[string]bool, len(req.Stores))
	wantFeed := false
	for _, store := range req.Stores {
		if seenStores[store] {
			continue
		}
		seenStores[store] = true
		if store == models.FeedStoreKey {
			wantFeed = true
		}
	}

	if wantFeed {
		tasks = append(tasks, models.FetchTask{
			Key:    models.CorrelationKey{Kind: models.KindFeed, ID: req.Zip},
			Params: models.SourceParams{Zip: req.Zip},
		})
	}

	emitted := make(map[string]bool, len(req.Stores))
	for _, store := range req.Stores {
		if store == models.FeedStoreKey || emitted[store] {
			continue
		}
		emitted[store] = true
		tasks = append(tasks, models.FetchTask{
			Key:    models.CorrelationKey{Kind: models.KindStore, ID: store},
			Params: models.SourceParams{Store: store, Zip: req.Zip},
		})
	}

	seenCats := make(map[string]bool, len(req.Categories))
	for _, cat := range req.Categories {
		if seenCats[cat] {
			continue
		}
		seenCats[cat] = true
		tasks = append(tasks, models.FetchTask{
			Key:    models.CorrelationKey{Kind: models.KindCategory, ID: cat},
			Params: models.SourceParams{Zip: req.Zip, Category: cat},
		})
	}

	return tasks
}
