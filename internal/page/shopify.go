package page

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/price"
	"github.com/MichalMitros/coral-price-aggregator/internal/shopify"
	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

var analyticsPattern = regexp.MustCompile(`var\s+meta\s*=\s*`)

// ShopifyPage builds listing from rendered Shopify product page.
// Embedded analytics variants are preferred, then meta tags, JSON-LD offers and price elements.
func (e *Extractor) ShopifyPage(doc *goquery.Document, src models.Source, pageURL string) (*models.Listing, error) {
	title := firstText(
		doc.Find("h1.product__title, h1.product-single__title, h1.product_title"),
		doc.Find("h1"),
	)
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}
	if title == "" {
		title = firstText(doc.Find("title"))
	}

	listing, err := baseListing(src, pageURL, title)
	if err != nil {
		return nil, err
	}

	if meta, ok := analyticsMeta(doc); ok {
		if selection, ok := shopify.SelectVariant(meta.Product.ToVariants()); ok {
			listing.Title = shopify.ComposeTitle(title, selection.Variant.Title)
			listing.Variant = shopify.VariantLabel(selection.Variant.Title)
			listing.PriceCAD = selection.Price
			listing.SalePriceCAD = selection.SalePrice
		}
	}

	if listing.PriceCAD == nil {
		listing.PriceCAD = firstPrice(
			metaPrice(doc),
			jsonLDPrice(doc),
			price.ParsePtr(doc.Find(`[class*="price"]`).First().Text()),
		)
	}

	if listing.PriceCAD == nil {
		return nil, ErrNoPrice
	}

	if containsFold(doc.Text(), "sold out") {
		listing.Status = models.StatusSoldOut
	}

	listing.ImageURL = SelectImage(doc, shopifyRoot(doc), pageURL)

	e.logger.Debug().
		Str("url", listing.URL).
		Str("title", listing.Title).
		Msg("shopify page extracted")

	return listing, nil
}

func shopifyRoot(doc *goquery.Document) *goquery.Selection {
	if root := doc.Find(`[id^="MainProduct"], .product, main`).First(); root.Length() > 0 {
		return root
	}

	return doc.Selection
}

func analyticsStart(script string) int {
	loc := analyticsPattern.FindStringIndex(script)
	if loc == nil {
		return -1
	}

	return loc[1]
}

// analyticsMeta decodes first "var meta = {...}" object found in inline scripts.
func analyticsMeta(doc *goquery.Document) (shopify.AnalyticsMeta, bool) {
	var (
		meta  shopify.AnalyticsMeta
		found bool
	)

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		start := analyticsStart(text)
		if start < 0 {
			return true
		}

		var candidate shopify.AnalyticsMeta
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&candidate); err != nil {
			return true
		}
		if candidate.Product == nil || len(candidate.Product.Variants) == 0 {
			return true
		}

		meta, found = candidate, true
		return false
	})

	return meta, found
}

func metaPrice(doc *goquery.Document) *decimal.Decimal {
	for _, selector := range []string{
		`meta[property="product:price:amount"]`,
		`meta[property="og:price:amount"]`,
	} {
		if p := price.ParsePtr(metaContent(doc, selector)); p != nil {
			return p
		}
	}

	itemprop := doc.Find(`[itemprop="price"]`).First()
	if content, ok := itemprop.Attr("content"); ok {
		if p := price.ParsePtr(content); p != nil {
			return p
		}
	}

	return price.ParsePtr(itemprop.Text())
}

// ldNode is JSON-LD node, offers may be single object or list.
type ldNode struct {
	Offers json.RawMessage   `json:"offers"`
	Graph  []json.RawMessage `json:"@graph"`
}

type ldOffer struct {
	Price    price.Amount `json:"price"`
	LowPrice price.Amount `json:"lowPrice"`
}

func jsonLDPrice(doc *goquery.Document) *decimal.Decimal {
	var found *decimal.Decimal

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = ldPrice([]byte(s.Text()), 0)
		return found == nil
	})

	return found
}

func ldPrice(raw json.RawMessage, depth int) *decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || depth > 3 {
		return nil
	}

	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil
		}
		for _, item := range list {
			if p := ldPrice(item, depth+1); p != nil {
				return p
			}
		}
		return nil
	}

	var node ldNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil
	}

	if p := offersPrice(node.Offers); p != nil {
		return p
	}

	for _, item := range node.Graph {
		if p := ldPrice(item, depth+1); p != nil {
			return p
		}
	}

	return nil
}

func offersPrice(raw json.RawMessage) *decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var offers []ldOffer
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &offers); err != nil {
			return nil
		}
	} else {
		var offer ldOffer
		if err := json.Unmarshal(raw, &offer); err != nil {
			return nil
		}
		offers = append(offers, offer)
	}

	for _, offer := range offers {
		if p := firstPrice(offer.Price.Ptr(), offer.LowPrice.Ptr()); p != nil && p.IsPositive() {
			return p
		}
	}

	return nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
