// Package detector routes sources to catalog walk or link crawl.
package detector

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/urlnorm"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Prober --filename prober.go

// Mode is the way products of a source are collected.
type Mode string

const (
	// ModeCatalog walks Shopify /products.json pages.
	ModeCatalog Mode = "catalog"
	// ModeCrawl discovers product links and extracts each page.
	ModeCrawl Mode = "crawl"
)

// DefaultForcedHosts are host tokens that always use catalog mode.
var DefaultForcedHosts = []string{"reefsolution"}

// Prober fetches JSON payloads.
type Prober interface {
	FetchJSON(ctx context.Context, url string, dst any) error
}

// Option is custom configuration of Detector.
type Option func(d *Detector)

// Detector decides collection mode of sources.
type Detector struct {
	prober      Prober
	forcedHosts []string
	logger      *zerolog.Logger
}

// NewDetector returns new Detector.
func NewDetector(prober Prober, ops ...Option) *Detector {
	nop := zerolog.Nop()

	d := &Detector{
		prober:      prober,
		forcedHosts: DefaultForcedHosts,
		logger:      &nop,
	}

	for _, op := range ops {
		op(d)
	}

	return d
}

// IsShopifyOrigin reports whether origin serves Shopify catalog endpoint.
func (d *Detector) IsShopifyOrigin(ctx context.Context, origin string) bool {
	var payload struct {
		Products *[]json.RawMessage `json:"products"`
	}

	probeURL := strings.TrimRight(origin, "/") + "/products.json?limit=1&page=1"
	if err := d.prober.FetchJSON(ctx, probeURL, &payload); err != nil {
		d.logger.Debug().
			Err(err).
			Str("origin", origin).
			Msg("shopify probe failed")
		return false
	}

	return payload.Products != nil
}

// IsForcedCatalog reports whether origin host contains one of forced host tokens.
func (d *Detector) IsForcedCatalog(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	return host != "" && lo.SomeBy(d.forcedHosts, func(token string) bool {
		return token != "" && strings.Contains(host, strings.ToLower(token))
	})
}

// Mode returns collection mode of source: forced hosts first, then Shopify probe, else crawl.
func (d *Detector) Mode(ctx context.Context, src models.Source) (Mode, error) {
	origin, err := urlnorm.Origin(src.URL)
	if err != nil {
		return "", err
	}

	if d.IsForcedCatalog(origin) {
		return ModeCatalog, nil
	}

	if d.IsShopifyOrigin(ctx, origin) {
		return ModeCatalog, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return ModeCrawl, nil
}

// WithForcedHosts sets host tokens routed to catalog mode.
func WithForcedHosts(tokens []string) Option {
	return func(d *Detector) {
		d.forcedHosts = tokens
	}
}

// WithLogger sets Detector's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}
