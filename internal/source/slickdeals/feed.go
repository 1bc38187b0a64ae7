package slickdeals

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"DealPull/internal/domain/models"
	"DealPull/internal/source"
)

const sourceName = "slickdeals"

// priceRe matches dollar amounts embedded in feed titles, e.g.
// "Anker 20W Charger $12.99 (was $25.99)".
var priceRe = regexp.MustCompile(`\$\d[\d,]*(?:\.\d{1,2})?`)

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

// Feed fetches frontpage deals from the slickdeals RSS feed.
type Feed struct {
	client *source.Client
	url    string
}

func NewFeed(client *source.Client, url string) *Feed {
	return &Feed{client: client, url: url}
}

func (f *Feed) Source() string { return sourceName }

// Fetch downloads the feed scoped to the request zip and maps every
// item onto a deal. Prices live inside the item titles, so the first
// dollar amount becomes the price and the second, when present, the
// original price.
func (f *Feed) Fetch(ctx context.Context, params models.SourceParams) ([]models.Deal, error) {
	query := map[string][]string{}
	if params.Zip != "" {
		query["zip"] = []string{params.Zip}
	}

	body, err := f.client.GetBytes(ctx, f.url, query)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	var doc rss
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	deals := make([]models.Deal, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		price, original := pricesFromTitle(title)
		deals = append(deals, models.Deal{
			Title:         title,
			Link:          strings.TrimSpace(item.Link),
			Price:         price,
			OriginalPrice: original,
			Source:        sourceName,
		})
	}

	return deals, nil
}

func pricesFromTitle(title string) (price, original string) {
	matches := priceRe.FindAllString(title, 2)
	price = models.PriceUnknown
	original = models.PriceUnknown
	if len(matches) > 0 {
		price = matches[0]
	}
	if len(matches) > 1 {
		original = matches[1]
	}
	return price, original
}
