package usecase

import (
	"sort"
	"time"

	"DealPull/internal/domain/models"
)

// Assembler folds settled task results back into the response shape.
// It walks the planned task list, not the result map, so the output is
// deterministic and every requested key is present even when its
// source failed.
type Assembler struct {
	now func() time.Time
}

func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Assemble builds the aggregated response for the given plan.
func (a *Assembler) Assemble(tasks []models.FetchTask, results map[models.CorrelationKey]models.TaskResult) models.DealsResponse {
	resp := models.DealsResponse{
		Slickdeals:    []models.Deal{},
		StoreDeals:    map[string][]models.Deal{},
		CategoryDeals: map[string][]models.Deal{},
		Timestamp:     a.now().UTC().Format(time.RFC3339),
	}

	for _, task := range tasks {
		deals := []models.Deal{}
		if res, ok := results[task.Key]; ok && res.Deals != nil {
			deals = res.Deals
		}

		switch task.Key.Kind {
		case models.KindFeed:
			resp.Slickdeals = deals
		case models.KindStore:
			resp.StoreDeals[task.Key.ID] = deals
		case models.KindCategory:
			resp.CategoryDeals[task.Key.ID] = deals
		}
	}

	return resp
}

// Flatten collapses a response into a single listing slice, used to
// build the cached default snapshot.
func Flatten(resp models.DealsResponse) []models.Deal {
	out := make([]models.Deal, 0, len(resp.Slickdeals))
	out = append(out, resp.Slickdeals...)
	for _, store := range orderedKeys(resp.StoreDeals) {
		out = append(out, resp.StoreDeals[store]...)
	}
	for _, cat := range orderedKeys(resp.CategoryDeals) {
		out = append(out, resp.CategoryDeals[cat]...)
	}
	return out
}

func orderedKeys(m map[string][]models.Deal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
