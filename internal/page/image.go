package page

import (
	"net/url"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/classify"
	"github.com/MichalMitros/coral-price-aggregator/internal/urlnorm"
	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

const maxRegionImages = 12

var lazyAttrs = []string{"data-src", "data-lazy-src", "data-original", "src"}

// SelectImage returns first usable product image of page: Open Graph tags, featured image,
// gallery, then first images of root. Candidates are resolved against pageURL.
func SelectImage(doc *goquery.Document, root *goquery.Selection, pageURL string) *string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	for _, candidate := range imageCandidates(doc, root) {
		resolved, ok := urlnorm.Resolve(base, candidate)
		if !ok {
			continue
		}
		if abs := resolved.String(); !classify.IsBadImage(abs) {
			return lo.ToPtr(abs)
		}
	}

	return nil
}

func imageCandidates(doc *goquery.Document, root *goquery.Selection) []string {
	var candidates []string

	doc.Find(`meta[property="og:image"], meta[property="og:image:secure_url"]`).Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, s.AttrOr("content", ""))
	})

	candidates = append(candidates, imgSources(root.Find("img.wp-post-image").First())...)

	root.Find(".woocommerce-product-gallery__image, .product__media, .product-gallery").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Find("a[href]").First().Attr("href"); ok {
			candidates = append(candidates, href)
		}
		s.Find("img").Each(func(_ int, img *goquery.Selection) {
			candidates = append(candidates, imgSources(img)...)
		})
	})

	root.Find("img").Slice(0, min(maxRegionImages, root.Find("img").Length())).Each(func(_ int, img *goquery.Selection) {
		candidates = append(candidates, imgSources(img)...)
	})

	return lo.Filter(candidates, func(c string, _ int) bool { return strings.TrimSpace(c) != "" })
}

// imgSources returns lazy loading attributes of img in priority order, then first srcset URL.
func imgSources(img *goquery.Selection) []string {
	if img.Length() == 0 {
		return nil
	}

	sources := lo.FilterMap(lazyAttrs, func(attr string, _ int) (string, bool) {
		return img.Attr(attr)
	})

	if srcset, ok := img.Attr("srcset"); ok {
		if fields := strings.Fields(strings.Split(srcset, ",")[0]); len(fields) > 0 {
			sources = append(sources, fields[0])
		}
	}

	return sources
}
