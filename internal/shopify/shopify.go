// Package shopify extracts listings from Shopify storefront JSON endpoints.
package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/pacer"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/urlnorm"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Fetcher --filename fetcher.go

const (
	// DefaultMaxCatalogPages bounds catalog walk.
	DefaultMaxCatalogPages = 200

	catalogPageSize = 100
)

var (
	// ErrNotProductURL is returned when URL has no /products/{handle} segment.
	ErrNotProductURL = errors.New("url is not a shopify product url")
	// ErrNoPricedVariant is returned when product has no variant with price.
	ErrNoPricedVariant = errors.New("product has no priced variant")
)

// Fetcher fetches JSON payloads.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, dst any) error
}

// Option is custom configuration of Extractor.
type Option func(e *Extractor)

// Extractor builds listings from Shopify product and catalog payloads.
type Extractor struct {
	fetcher  Fetcher
	throttle pacer.Throttle
	maxPages int
	logger   *zerolog.Logger
}

// NewExtractor returns new Extractor.
func NewExtractor(fetcher Fetcher, ops ...Option) *Extractor {
	nop := zerolog.Nop()

	e := &Extractor{
		fetcher:  fetcher,
		throttle: pacer.Unlimited(),
		maxPages: DefaultMaxCatalogPages,
		logger:   &nop,
	}

	for _, op := range ops {
		op(e)
	}

	return e
}

// ProductListing builds listing from /products/{handle}.js payload of productURL.
// Availability reported by this endpoint is reliable, so listing may be sold out.
func (e *Extractor) ProductListing(ctx context.Context, src models.Source, productURL string) (*models.Listing, error) {
	origin, handle, err := ProductHandle(productURL)
	if err != nil {
		return nil, err
	}

	var product ProductJS
	if err := e.fetcher.FetchJSON(ctx, origin+"/products/"+url.PathEscape(handle)+".js", &product); err != nil {
		return nil, fmt.Errorf("can't fetch product json: %w", err)
	}

	variants := product.variants()
	selection, ok := SelectVariant(variants)
	if !ok {
		return nil, ErrNoPricedVariant
	}

	canonical, err := urlnorm.CanonicalProductURL(origin + "/products/" + handle)
	if err != nil {
		return nil, err
	}

	status := models.StatusAvailable
	if (product.Available != nil && !*product.Available) || !AnyAvailable(variants) {
		status = models.StatusSoldOut
	}

	images := append([]string{selection.Variant.ImageURL, product.FeaturedImage}, product.Images...)

	return &models.Listing{
		ShopID:       src.ShopID,
		Category:     src.Category,
		Title:        ComposeTitle(product.Title, selection.Variant.Title),
		URL:          canonical,
		ImageURL:     firstImage(origin, images),
		PriceCAD:     selection.Price,
		SalePriceCAD: selection.SalePrice,
		Status:       status,
		Variant:      VariantLabel(selection.Variant.Title),
	}, nil
}

// CatalogListings walks /products.json pages of source origin and builds one listing per product.
// Catalog endpoint doesn't report stock reliably, all listings are available.
func (e *Extractor) CatalogListings(ctx context.Context, src models.Source) ([]models.Listing, error) {
	origin, err := urlnorm.Origin(src.URL)
	if err != nil {
		return nil, err
	}

	products, err := e.catalogProducts(ctx, origin)
	if err != nil {
		return nil, err
	}

	listings := make([]models.Listing, 0, len(products))
	for ix := range products {
		listing, err := catalogListing(src, origin, &products[ix])
		if err != nil {
			e.logger.Debug().
				Err(err).
				Str("origin", origin).
				Str("handle", products[ix].Handle).
				Msg("skipping catalog product")
			continue
		}
		listings = append(listings, *listing)
	}

	return listings, nil
}

func (e *Extractor) catalogProducts(ctx context.Context, origin string) ([]CatalogProduct, error) {
	var (
		products []CatalogProduct
		seen     = map[int64]struct{}{}
	)

	for page := 1; page <= e.maxPages; page++ {
		if err := e.throttle.Wait(ctx); err != nil {
			return products, err
		}

		var payload CatalogPage
		pageURL := fmt.Sprintf("%s/products.json?limit=%d&page=%d", origin, catalogPageSize, page)
		if err := e.fetcher.FetchJSON(ctx, pageURL, &payload); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("can't fetch catalog page: %w", err)
			}
			e.logger.Warn().
				Err(err).
				Str("origin", origin).
				Int("page", page).
				Msg("catalog walk interrupted")
			return products, nil
		}

		if len(payload.Products) == 0 {
			return products, nil
		}

		newOnPage := 0
		for _, product := range payload.Products {
			if _, ok := seen[product.ID]; ok && product.ID != 0 {
				continue
			}
			seen[product.ID] = struct{}{}
			products = append(products, product)
			newOnPage++
		}

		// storefront keeps returning last page
		if newOnPage == 0 {
			return products, nil
		}
	}

	e.logger.Warn().
		Str("origin", origin).
		Int("maxPages", e.maxPages).
		Msg("catalog page limit reached")

	return products, nil
}

func catalogListing(src models.Source, origin string, product *CatalogProduct) (*models.Listing, error) {
	if strings.TrimSpace(product.Handle) == "" {
		return nil, ErrNotProductURL
	}

	selection, ok := SelectVariant(product.variants())
	if !ok {
		return nil, ErrNoPricedVariant
	}

	canonical, err := urlnorm.CanonicalProductURL(origin + "/products/" + product.Handle)
	if err != nil {
		return nil, err
	}

	images := []string{selection.Variant.ImageURL, imageSrc(product.Image)}
	images = append(images, lo.Map(product.Images, func(img imageRef, _ int) string { return img.Src })...)

	return &models.Listing{
		ShopID:       src.ShopID,
		Category:     src.Category,
		Title:        ComposeTitle(product.Title, selection.Variant.Title),
		URL:          canonical,
		ImageURL:     firstImage(origin, images),
		PriceCAD:     selection.Price,
		SalePriceCAD: selection.SalePrice,
		Status:       models.StatusAvailable,
		Variant:      VariantLabel(selection.Variant.Title),
	}, nil
}

// ProductHandle returns origin and handle of Shopify product URL.
func ProductHandle(productURL string) (string, string, error) {
	origin, err := urlnorm.Origin(productURL)
	if err != nil {
		return "", "", err
	}

	u, err := url.Parse(productURL)
	if err != nil {
		return "", "", fmt.Errorf("can't parse url %q: %w", productURL, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for ix := 0; ix < len(segments)-1; ix++ {
		if segments[ix] == "products" {
			handle := strings.TrimSuffix(segments[ix+1], ".js")
			if handle == "" {
				break
			}
			return origin, handle, nil
		}
	}

	return "", "", fmt.Errorf("%w: %s", ErrNotProductURL, productURL)
}

// IsProductURL reports whether URL points to Shopify product page.
func IsProductURL(productURL string) bool {
	_, _, err := ProductHandle(productURL)
	return err == nil
}

func firstImage(origin string, candidates []string) *string {
	base, err := url.Parse(origin + "/")
	if err != nil {
		return nil
	}

	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, "//") {
			candidate = "https:" + candidate
		}
		resolved, ok := urlnorm.Resolve(base, candidate)
		if ok {
			return lo.ToPtr(resolved.String())
		}
	}

	return nil
}

// WithThrottle sets pacing of catalog pages.
func WithThrottle(throttle pacer.Throttle) Option {
	return func(e *Extractor) {
		e.throttle = throttle
	}
}

// WithMaxPages sets catalog page limit.
func WithMaxPages(n int) Option {
	return func(e *Extractor) {
		e.maxPages = n
	}
}

// WithLogger sets Extractor's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}
