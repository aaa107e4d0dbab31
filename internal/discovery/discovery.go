// Package discovery walks paginated category pages and collects product links.
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/pacer"
	"github.com/MichalMitros/coral-price-aggregator/internal/urlnorm"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

//go:generate mockery --name Fetcher --filename fetcher.go

// DefaultMaxPages bounds category walk.
const DefaultMaxPages = 80

// ProductPathMarkers identify product pages of supported storefronts.
var ProductPathMarkers = []string{"/product/", "/products/", "/produit/"}

// Fetcher fetches html pages.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Option is custom configuration of Discoverer.
type Option func(d *Discoverer)

// Discoverer collects product links of category pages.
type Discoverer struct {
	fetcher  Fetcher
	throttle pacer.Throttle
	maxPages int
	logger   *zerolog.Logger
}

// NewDiscoverer returns new Discoverer.
func NewDiscoverer(fetcher Fetcher, ops ...Option) *Discoverer {
	nop := zerolog.Nop()

	d := &Discoverer{
		fetcher:  fetcher,
		throttle: pacer.Unlimited(),
		maxPages: DefaultMaxPages,
		logger:   &nop,
	}

	for _, op := range ops {
		op(d)
	}

	return d
}

// Discover returns canonical product URLs found on categoryURL and its following pages.
// Page N tries ?paged=N first and /page/N/ second, the walk stops on first page without new links.
func (d *Discoverer) Discover(ctx context.Context, categoryURL string) ([]string, error) {
	base, err := url.Parse(categoryURL)
	if err != nil {
		return nil, fmt.Errorf("can't parse category url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("category url %q is not absolute", categoryURL)
	}

	seen := map[string]struct{}{}
	var links []string

	collect := func(pageURL string) (int, error) {
		if err := d.throttle.Wait(ctx); err != nil {
			return 0, err
		}

		html, err := d.fetcher.FetchHTML(ctx, pageURL)
		if err != nil {
			return 0, err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return 0, fmt.Errorf("can't parse category page: %w", err)
		}

		added := 0
		for _, link := range ProductLinks(doc, pageURL) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
			added++
		}

		return added, nil
	}

	if _, err := collect(categoryURL); err != nil {
		return nil, fmt.Errorf("can't fetch category page: %w", err)
	}

	for page := 2; page <= d.maxPages; page++ {
		added := 0
		for _, pageURL := range PageURLs(base, page) {
			added, err = collect(pageURL)
			if ctx.Err() != nil {
				return links, ctx.Err()
			}
			if err != nil {
				d.logger.Debug().
					Err(err).
					Str("url", pageURL).
					Msg("category page unavailable")
				continue
			}
			if added > 0 {
				break
			}
		}

		if added == 0 {
			d.logger.Debug().
				Str("category", categoryURL).
				Int("pages", page).
				Int("links", len(links)).
				Msg("category walk finished")
			return links, nil
		}
	}

	d.logger.Warn().
		Str("category", categoryURL).
		Int("maxPages", d.maxPages).
		Msg("category page limit reached")

	return links, nil
}

// PageURLs returns query and path form of page number of category.
func PageURLs(category *url.URL, page int) []string {
	query := *category
	q := query.Query()
	q.Set("paged", strconv.Itoa(page))
	query.RawQuery = q.Encode()
	query.Fragment = ""

	path := *category
	q = path.Query()
	q.Del("paged")
	path.RawQuery = q.Encode()
	path.Fragment = ""
	path.RawPath = ""
	path.Path = strings.TrimRight(path.Path, "/") + "/page/" + strconv.Itoa(page) + "/"

	return []string{query.String(), path.String()}
}

// ProductLinks returns canonical same-host product URLs linked from document.
func ProductLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		resolved, ok := urlnorm.Resolve(base, s.AttrOr("href", ""))
		if !ok || !sameHost(base, resolved) || !isProductPath(resolved.Path) {
			return
		}

		canonical, err := urlnorm.CanonicalProductURL(resolved.String())
		if err != nil {
			return
		}
		links = append(links, canonical)
	})

	return lo.Uniq(links)
}

func sameHost(a, b *url.URL) bool {
	return strings.TrimPrefix(strings.ToLower(a.Hostname()), "www.") ==
		strings.TrimPrefix(strings.ToLower(b.Hostname()), "www.")
}

func isProductPath(path string) bool {
	path = strings.ToLower(path)
	return lo.SomeBy(ProductPathMarkers, func(marker string) bool {
		ix := strings.Index(path, marker)
		return ix >= 0 && strings.Trim(path[ix+len(marker):], "/") != ""
	})
}

// WithThrottle sets pacing of page fetches.
func WithThrottle(throttle pacer.Throttle) Option {
	return func(d *Discoverer) {
		d.throttle = throttle
	}
}

// WithMaxPages sets page limit.
func WithMaxPages(n int) Option {
	return func(d *Discoverer) {
		d.maxPages = n
	}
}

// WithLogger sets Discoverer's logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(d *Discoverer) {
		d.logger = logger
	}
}
