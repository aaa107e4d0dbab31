package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/MichalMitros/coral-price-aggregator/internal/aggregator"
	"github.com/MichalMitros/coral-price-aggregator/internal/detector"
	"github.com/MichalMitros/coral-price-aggregator/internal/discovery"
	"github.com/MichalMitros/coral-price-aggregator/internal/fetcher"
	"github.com/MichalMitros/coral-price-aggregator/internal/pacer"
	"github.com/MichalMitros/coral-price-aggregator/internal/page"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/sources"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage"
	"github.com/MichalMitros/coral-price-aggregator/internal/shopify"

	_ "github.com/lib/pq"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

func (a *app) openPostgres() (*sql.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}

	db, err := sql.Open("postgres", a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("can't open Postgres connection: %w", err)
	}

	return db, nil
}

// sourceLoader prefers sources file over source table.
func (a *app) sourceLoader(pg *storage.Postgres) (aggregator.SourceLoader, error) {
	if a.cfg.SourcesFile != "" {
		return sources.NewFile(a.cfg.SourcesFile), nil
	}
	if pg == nil {
		return nil, fmt.Errorf("can't load sources: SOURCES_FILE is not set and %w", errNoDatabase)
	}

	return pg, nil
}

func (a *app) newAggregator(store aggregator.Storage, loader aggregator.SourceLoader) *aggregator.Aggregator {
	cfg := a.cfg.Scraper
	logger := a.logger

	fetch := fetcher.NewFetcher(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.UserAgent,
		cfg.AcceptLanguage,
		fetcher.WithMaxAttempts(cfg.MaxAttempts),
		fetcher.WithLogger(&logger),
	)

	return aggregator.NewAggregator(
		store,
		loader,
		detector.NewDetector(
			fetch,
			detector.WithForcedHosts(cfg.ForcedCatalogHosts),
			detector.WithLogger(&logger),
		),
		shopify.NewExtractor(
			fetch,
			shopify.WithThrottle(pacer.New(cfg.PageInterval, cfg.Jitter)),
			shopify.WithMaxPages(cfg.MaxCatalogPages),
			shopify.WithLogger(&logger),
		),
		discovery.NewDiscoverer(
			fetch,
			discovery.WithThrottle(pacer.New(cfg.PageInterval, cfg.Jitter)),
			discovery.WithMaxPages(cfg.MaxCrawlPages),
			discovery.WithLogger(&logger),
		),
		fetch,
		page.NewExtractor(page.WithLogger(&logger)),
		aggregator.WithSourceThrottle(pacer.New(cfg.SourceInterval, cfg.Jitter)),
		aggregator.WithLinkThrottle(pacer.New(cfg.LinkInterval, cfg.Jitter)),
		aggregator.WithLogger(&logger),
	)
}
