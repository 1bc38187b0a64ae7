package category

import (
	"context"
	"fmt"
	"strings"

	"DealPull/internal/domain/models"
	"DealPull/internal/source"
)

const sourceName = "category"

type feedItem struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Price    string `json:"price"`
	OldPrice string `json:"old_price"`
}

type feedResponse struct {
	Deals []feedItem `json:"deals"`
}

// Feed fetches local category deals from the JSON deals API, scoped
// by zip code and category name.
type Feed struct {
	client *source.Client
	url    string
}

func NewFeed(client *source.Client, url string) *Feed {
	return &Feed{client: client, url: url}
}

func (f *Feed) Source() string { return sourceName }

func (f *Feed) Fetch(ctx context.Context, params models.SourceParams) ([]models.Deal, error) {
	if params.Category == "" {
		return nil, fmt.Errorf("category fetch requires a category")
	}

	var resp feedResponse
	err := f.client.GetJSON(ctx, f.url, map[string][]string{
		"zip":      {params.Zip},
		"category": {params.Category},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch category %q: %w", params.Category, err)
	}

	deals := make([]models.Deal, 0, len(resp.Deals))
	for _, item := range resp.Deals {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		deals = append(deals, models.Deal{
			Title:         title,
			Link:          strings.TrimSpace(item.URL),
			Price:         source.NormalizePrice(item.Price),
			OriginalPrice: source.NormalizePrice(item.OldPrice),
			Source:        sourceName,
			Category:      params.Category,
		})
	}

	return deals, nil
}
