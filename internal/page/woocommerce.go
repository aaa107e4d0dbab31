package page

import (
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/price"
	"github.com/PuerkitoBio/goquery"
)

var outOfStockPhrases = []string{"out of stock", "rupture de stock"}

// WooCommerce builds listing from WooCommerce product page.
func (e *Extractor) WooCommerce(doc *goquery.Document, src models.Source, pageURL string) (*models.Listing, error) {
	root := productRoot(doc)

	title := firstText(
		root.Find("h1.product_title"),
		doc.Find("h1"),
		doc.Find("h2"),
		doc.Find("h3"),
		doc.Find("title"),
	)

	listing, err := baseListing(src, pageURL, title)
	if err != nil {
		return nil, err
	}

	box := root.Find("p.price, span.price, .summary .price").First()
	if box.Length() == 0 {
		box = root.Find(".price").First()
	}

	sale := price.ParsePtr(box.Find("ins").First().Text())
	regular := price.ParsePtr(box.Find("del").First().Text())
	single := price.ParsePtr(box.Find(".amount").
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.ParentsFiltered("del, ins").Length() == 0
		}).
		First().
		Text())
	if single == nil && sale == nil && regular == nil {
		single = price.ParsePtr(box.Text())
	}

	if sale != nil && regular != nil && regular.GreaterThan(*sale) {
		listing.PriceCAD = regular
		listing.SalePriceCAD = sale
	} else {
		listing.PriceCAD = firstPrice(sale, single, regular)
	}

	if listing.PriceCAD == nil {
		return nil, ErrNoPrice
	}

	if wooSoldOut(root) {
		listing.Status = models.StatusSoldOut
	}

	listing.ImageURL = SelectImage(doc, root, pageURL)

	e.logger.Debug().
		Str("url", listing.URL).
		Str("title", listing.Title).
		Msg("woocommerce page extracted")

	return listing, nil
}

// productRoot returns WooCommerce product wrapper, body or whole document.
func productRoot(doc *goquery.Document) *goquery.Selection {
	if root := doc.Find("div.product").First(); root.Length() > 0 {
		return root
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}

	return doc.Selection
}

func wooSoldOut(root *goquery.Selection) bool {
	if root.HasClass("outofstock") {
		return true
	}

	stock := root.Find(".stock, .availability").Text()
	for _, phrase := range outOfStockPhrases {
		if containsFold(stock, phrase) {
			return true
		}
	}

	return false
}
