// Package aggregator drives full refresh runs over configured sources.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MichalMitros/coral-price-aggregator/internal/classify"
	"github.com/MichalMitros/coral-price-aggregator/internal/detector"
	"github.com/MichalMitros/coral-price-aggregator/internal/pacer"
	"github.com/MichalMitros/coral-price-aggregator/internal/page"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/shopify"
	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Storage --filename storage.go
//go:generate mockery --name SourceLoader --filename source_loader.go
//go:generate mockery --name Detector --filename detector.go
//go:generate mockery --name Catalog --filename catalog.go
//go:generate mockery --name Discoverer --filename discoverer.go
//go:generate mockery --name PageFetcher --filename page_fetcher.go
//go:generate mockery --name PageScraper --filename page_scraper.go

// Storage is listing storage.
type Storage interface {
	// DeleteAllListings removes every stored listing and returns number of removed rows.
	DeleteAllListings(ctx context.Context) (int64, error)
	// UpsertListing inserts listing or overwrites one with the same shop id and url.
	UpsertListing(ctx context.Context, listing *models.Listing) error
}

// SourceLoader provides sources to crawl.
type SourceLoader interface {
	ActiveSources(ctx context.Context) ([]models.Source, error)
}

// Detector decides collection mode of source.
type Detector interface {
	Mode(ctx context.Context, src models.Source) (detector.Mode, error)
}

// Catalog extracts listings from Shopify JSON endpoints.
type Catalog interface {
	CatalogListings(ctx context.Context, src models.Source) ([]models.Listing, error)
	ProductListing(ctx context.Context, src models.Source, productURL string) (*models.Listing, error)
}

// Discoverer finds product links of category pages.
type Discoverer interface {
	Discover(ctx context.Context, categoryURL string) ([]string, error)
}

// PageFetcher fetches product pages.
type PageFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// PageScraper extracts listings from parsed product pages.
type PageScraper interface {
	WooCommerce(doc *goquery.Document, src models.Source, pageURL string) (*models.Listing, error)
	ShopifyPage(doc *goquery.Document, src models.Source, pageURL string) (*models.Listing, error)
}

// Clock provides times.
type Clock interface {
	// Now returns current UTC time.
	Now() time.Time
}

// Option is custom configuration of Aggregator.
type Option func(a *Aggregator)

// Aggregator runs sequential full refresh of listings.
type Aggregator struct {
	storage        Storage
	sources        SourceLoader
	detector       Detector
	catalog        Catalog
	discoverer     Discoverer
	pages          PageFetcher
	scraper        PageScraper
	sourceThrottle pacer.Throttle
	linkThrottle   pacer.Throttle
	clock          Clock
	newID          func() string
	logger         *zerolog.Logger
	running        sync.Mutex
}

// NewAggregator returns new Aggregator.
func NewAggregator(
	storage Storage,
	sources SourceLoader,
	detector Detector,
	catalog Catalog,
	discoverer Discoverer,
	pages PageFetcher,
	scraper PageScraper,
	ops ...Option,
) *Aggregator {
	nop := zerolog.Nop()

	agg := &Aggregator{
		storage:        storage,
		sources:        sources,
		detector:       detector,
		catalog:        catalog,
		discoverer:     discoverer,
		pages:          pages,
		scraper:        scraper,
		sourceThrottle: pacer.Unlimited(),
		linkThrottle:   pacer.Unlimited(),
		clock:          systemClock{},
		newID:          uuid.NewString,
		logger:         &nop,
	}

	for _, op := range ops {
		op(agg)
	}

	return agg
}

// Run clears stored listings and repopulates them from every active source.
// Failures of single sources are recorded in report, loading sources and clearing storage
// are fatal. It returns platform.ErrAlreadyRunning when another run is in progress.
func (a *Aggregator) Run(ctx context.Context) (*models.RunReport, error) {
	if !a.running.TryLock() {
		return nil, platform.ErrAlreadyRunning
	}
	defer a.running.Unlock()

	report := &models.RunReport{
		ID:        a.newID(),
		StartedAt: a.clock.Now(),
		Sources:   []models.SourceReport{},
	}
	logger := a.logger.With().Str("run", report.ID).Logger()

	sources, err := a.sources.ActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't load sources: %w", err)
	}

	cleared, err := a.storage.DeleteAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't clear listings: %w", err)
	}
	report.Cleared = cleared

	logger.Info().
		Int("sources", len(sources)).
		Int64("cleared", cleared).
		Msg("run started")

	err = pacer.Each(ctx, a.sourceThrottle, sources, func(ctx context.Context, src models.Source) error {
		entry := a.runSource(ctx, &logger, src)
		report.Sources = append(report.Sources, entry)
		report.Total += entry.Found
		return nil
	})
	report.FinishedAt = a.clock.Now()
	if err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}

	logger.Info().
		Int("total", report.Total).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("run finished")

	return report, nil
}

func (a *Aggregator) runSource(ctx context.Context, logger *zerolog.Logger, src models.Source) models.SourceReport {
	entry := models.SourceReport{Source: src.URL, ShopID: src.ShopID}
	srcLogger := logger.With().
		Str("source", src.URL).
		Str("shop", src.ShopID).
		Logger()

	mode, err := a.detector.Mode(ctx, src)
	if err != nil {
		return failed(&srcLogger, entry, fmt.Errorf("can't detect source mode: %w", err))
	}
	entry.Mode = string(mode)

	switch mode {
	case detector.ModeCatalog:
		err = a.collectCatalog(ctx, &srcLogger, src, &entry)
	default:
		err = a.collectLinks(ctx, &srcLogger, src, &entry)
	}
	if err != nil {
		return failed(&srcLogger, entry, err)
	}

	srcLogger.Info().
		Str("mode", entry.Mode).
		Int("found", entry.Found).
		Int("failed", entry.Failed).
		Msg("source finished")

	return entry
}

func (a *Aggregator) collectCatalog(
	ctx context.Context,
	logger *zerolog.Logger,
	src models.Source,
	entry *models.SourceReport,
) error {
	listings, err := a.catalog.CatalogListings(ctx, src)
	if err != nil {
		return fmt.Errorf("can't walk catalog: %w", err)
	}

	for ix := range listings {
		if err := a.persist(ctx, logger, src, &listings[ix], entry); err != nil {
			return err
		}
	}

	return nil
}

func (a *Aggregator) collectLinks(
	ctx context.Context,
	logger *zerolog.Logger,
	src models.Source,
	entry *models.SourceReport,
) error {
	links, err := a.discoverer.Discover(ctx, src.URL)
	if err != nil {
		return fmt.Errorf("can't discover product links: %w", err)
	}

	return pacer.Each(ctx, a.linkThrottle, links, func(ctx context.Context, link string) error {
		listing, err := a.extract(ctx, logger, src, link)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			entry.Failed++
			logger.Debug().
				Err(err).
				Str("url", link).
				Msg("skipping product")
			return nil
		}

		return a.persist(ctx, logger, src, listing, entry)
	})
}

// extract prefers Shopify product JSON and falls back to rendered page.
func (a *Aggregator) extract(
	ctx context.Context,
	logger *zerolog.Logger,
	src models.Source,
	link string,
) (*models.Listing, error) {
	if shopify.IsProductURL(link) {
		listing, err := a.catalog.ProductListing(ctx, src, link)
		if err == nil {
			return listing, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Debug().
			Err(err).
			Str("url", link).
			Msg("product json unavailable, falling back to html")
	}

	html, err := a.pages.FetchHTML(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("can't fetch product page: %w", err)
	}

	doc, err := page.Parse(html)
	if err != nil {
		return nil, err
	}

	if page.IsShopifyPage(doc) {
		return a.scraper.ShopifyPage(doc, src, link)
	}

	return a.scraper.WooCommerce(doc, src, link)
}

// persist finalizes listing and upserts it when valid. Rejected listings are counted as failed,
// other storage errors are returned.
func (a *Aggregator) persist(
	ctx context.Context,
	logger *zerolog.Logger,
	src models.Source,
	listing *models.Listing,
	entry *models.SourceReport,
) error {
	listing.ShopID = src.ShopID
	classify.Finalize(listing, src.Category)
	listing.Sanitize()

	if !listing.Valid() {
		logger.Debug().
			Str("url", listing.URL).
			Str("title", listing.Title).
			Msg("discarding invalid listing")
		return nil
	}

	if err := a.storage.UpsertListing(ctx, listing); err != nil {
		if errors.Is(err, platform.ErrInvalidListing) {
			entry.Failed++
			logger.Debug().
				Err(err).
				Str("url", listing.URL).
				Msg("storage rejected listing")
			return nil
		}
		return fmt.Errorf("can't upsert listing: %w", err)
	}
	entry.Found++

	return nil
}

func failed(logger *zerolog.Logger, entry models.SourceReport, err error) models.SourceReport {
	logger.Error().
		Err(err).
		Int("found", entry.Found).
		Msg("source failed")

	entry.Error = lo.ToPtr(err.Error())

	return entry
}

// WithSourceThrottle sets pacing between sources.
func WithSourceThrottle(throttle pacer.Throttle) Option {
	return func(a *Aggregator) {
		a.sourceThrottle = throttle
	}
}

// WithLinkThrottle sets pacing between product pages of crawled sources.
func WithLinkThrottle(throttle pacer.Throttle) Option {
	return func(a *Aggregator) {
		a.linkThrottle = throttle
	}
}

// WithClock sets Aggregator's custom Clock.
func WithClock(c Clock) Option {
	return func(a *Aggregator) {
		a.clock = c
	}
}

// WithIDGenerator sets generator of run ids.
func WithIDGenerator(fn func() string) Option {
	return func(a *Aggregator) {
		a.newID = fn
	}
}

// WithLogger sets Aggregator's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}
