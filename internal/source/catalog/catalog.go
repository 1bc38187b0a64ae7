package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"DealPull/internal/domain/models"
	"DealPull/internal/source"

	"github.com/PuerkitoBio/goquery"
)

// Selectors addresses the deal tiles on a store's clearance page.
// OriginalPrice may be empty for stores that never render one.
type Selectors struct {
	Item          string
	Title         string
	Link          string
	Price         string
	OriginalPrice string
}

// Scraper extracts deals from a retailer's clearance catalog page.
type Scraper struct {
	client *source.Client
	store  string
	url    string
	sel    Selectors
}

func NewScraper(client *source.Client, store, pageURL string, sel Selectors) *Scraper {
	return &Scraper{client: client, store: store, url: pageURL, sel: sel}
}

// NewAmazon builds a scraper for the Amazon deals page.
func NewAmazon(client *source.Client, pageURL string) *Scraper {
	return NewScraper(client, "amazon", pageURL, Selectors{
		Item:          "div[data-component-type='s-search-result']",
		Title:         "h2 a span",
		Link:          "h2 a",
		Price:         "span.a-price span.a-offscreen",
		OriginalPrice: "span.a-price.a-text-price span.a-offscreen",
	})
}

// NewWalmart builds a scraper for the Walmart clearance page.
func NewWalmart(client *source.Client, pageURL string) *Scraper {
	return NewScraper(client, "walmart", pageURL, Selectors{
		Item:          "div[data-item-id]",
		Title:         "span[data-automation-id='product-title']",
		Link:          "a[link-identifier]",
		Price:         "div[data-automation-id='product-price'] span.w_iUH7",
		OriginalPrice: "div[data-automation-id='product-price'] span.w_CW_l",
	})
}

// NewTarget builds a scraper for the Target clearance page.
func NewTarget(client *source.Client, pageURL string) *Scraper {
	return NewScraper(client, "target", pageURL, Selectors{
		Item:          "div[data-test='product-card']",
		Title:         "a[data-test='product-title']",
		Link:          "a[data-test='product-title']",
		Price:         "span[data-test='current-price']",
		OriginalPrice: "span[data-test='comparison-price']",
	})
}

func (s *Scraper) Source() string { return s.store }

// Fetch downloads the catalog page and walks every deal tile. Tiles
// missing a title are dropped; missing prices degrade to N/A.
func (s *Scraper) Fetch(ctx context.Context, params models.SourceParams) ([]models.Deal, error) {
	query := map[string][]string{}
	if params.Zip != "" {
		query["zip"] = []string{params.Zip}
	}

	body, err := s.client.GetBytes(ctx, s.url, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s catalog: %w", s.store, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s catalog: %w", s.store, err)
	}

	base, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}

	var deals []models.Deal
	doc.Find(s.sel.Item).Each(func(_ int, tile *goquery.Selection) {
		title := strings.TrimSpace(tile.Find(s.sel.Title).First().Text())
		if title == "" {
			return
		}

		deal := models.Deal{
			Title:         title,
			Link:          s.resolveLink(base, tile),
			Price:         source.NormalizePrice(tile.Find(s.sel.Price).First().Text()),
			OriginalPrice: models.PriceUnknown,
			Source:        s.store,
		}
		if s.sel.OriginalPrice != "" {
			deal.OriginalPrice = source.NormalizePrice(tile.Find(s.sel.OriginalPrice).First().Text())
		}

		deals = append(deals, deal)
	})

	return deals, nil
}

func (s *Scraper) resolveLink(base *url.URL, tile *goquery.Selection) string {
	href, ok := tile.Find(s.sel.Link).First().Attr("href")
	if !ok {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
