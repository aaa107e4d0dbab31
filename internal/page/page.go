// Package page extracts listings from rendered WooCommerce and Shopify product pages.
package page

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/urlnorm"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoPrice is returned when page has no parsable price.
	ErrNoPrice = errors.New("no price found on page")
	// ErrNoTitle is returned when page has no title.
	ErrNoTitle = errors.New("no title found on page")
)

// Option is custom configuration of Extractor.
type Option func(e *Extractor)

// Extractor builds listings from parsed product pages.
type Extractor struct {
	logger *zerolog.Logger
}

// NewExtractor returns new Extractor.
func NewExtractor(ops ...Option) *Extractor {
	nop := zerolog.Nop()

	e := &Extractor{logger: &nop}

	for _, op := range ops {
		op(e)
	}

	return e
}

// Parse parses html document.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("can't parse html: %w", err)
	}

	return doc, nil
}

// IsShopifyPage reports whether document was rendered by Shopify storefront.
func IsShopifyPage(doc *goquery.Document) bool {
	found := false

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		text := s.Text()
		found = strings.Contains(src, "cdn.shopify.com") ||
			strings.Contains(text, "Shopify.shop") ||
			analyticsStart(text) >= 0
		return !found
	})

	return found
}

// baseListing returns listing with fields shared by all page kinds.
func baseListing(src models.Source, pageURL, title string) (*models.Listing, error) {
	if title == "" {
		return nil, ErrNoTitle
	}

	canonical, err := urlnorm.CanonicalProductURL(pageURL)
	if err != nil {
		return nil, err
	}

	return &models.Listing{
		ShopID:   src.ShopID,
		Category: src.Category,
		Title:    title,
		URL:      canonical,
		Status:   models.StatusAvailable,
	}, nil
}

func firstText(selections ...*goquery.Selection) string {
	for _, s := range selections {
		if text := cleanText(s.First().Text()); text != "" {
			return text
		}
	}

	return ""
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func firstPrice(candidates ...*decimal.Decimal) *decimal.Decimal {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}

	return nil
}

// WithLogger sets Extractor's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}
