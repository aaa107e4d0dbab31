package shopify_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MichalMitros/coral-price-aggregator/internal/fetcher"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/price"
	"github.com/MichalMitros/coral-price-aggregator/internal/shopify"
	"github.com/MichalMitros/coral-price-aggregator/internal/shopify/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const productJS = `{
	"id": 101,
	"title": "Gold Torch",
	"handle": "gold-torch",
	"available": true,
	"featured_image": "//cdn.example.com/gold-torch.jpg",
	"images": ["//cdn.example.com/gold-torch-2.jpg"],
	"tags": "torch, euphyllia",
	"variants": [
		{"id": 1, "title": "1 head", "price": 3000, "compare_at_price": 4000, "available": true},
		{"id": 2, "title": "2 heads", "price": 2500, "compare_at_price": null, "available": false},
		{"id": 3, "title": "3 heads", "price": 9000, "compare_at_price": null, "available": true}
	]
}`

const soldOutProductJS = `{
	"id": 102,
	"title": "Hammer",
	"handle": "hammer",
	"available": false,
	"featured_image": null,
	"images": [],
	"variants": [
		{"id": 1, "title": "Default Title", "price": 5500, "compare_at_price": null, "available": false,
		 "featured_image": {"src": "https://cdn.example.com/hammer.jpg"}}
	]
}`

func TestUnitProductListing(t *testing.T) {
	srv := newShopServer(t, map[string]string{
		"/products/gold-torch.js": productJS,
		"/products/hammer.js":     soldOutProductJS,
	})
	ext := shopify.NewExtractor(newFetcher(srv))
	src := models.Source{ShopID: "reef-shop", Category: models.CategoryTorch, URL: srv.URL + "/collections/torch"}

	tests := map[string]struct {
		productURL    string
		wantTitle     string
		wantURL       string
		wantPrice     string
		wantSalePrice *string
		wantStatus    string
		wantImage     string
		wantVariant   *string
	}{
		"discounted cheapest available variant": {
			productURL:    srv.URL + "/en/products/gold-torch/?variant=1#reviews",
			wantTitle:     "Gold Torch — 1 head",
			wantURL:       srv.URL + "/products/gold-torch",
			wantPrice:     "40",
			wantSalePrice: strPtr("30"),
			wantStatus:    models.StatusAvailable,
			wantImage:     "https://cdn.example.com/gold-torch.jpg",
			wantVariant:   strPtr("1 head"),
		},
		"sold out product": {
			productURL: srv.URL + "/products/hammer",
			wantTitle:  "Hammer",
			wantURL:    srv.URL + "/products/hammer",
			wantPrice:  "55",
			wantStatus: models.StatusSoldOut,
			wantImage:  "https://cdn.example.com/hammer.jpg",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			listing, err := ext.ProductListing(context.TODO(), src, tt.productURL)

			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, src.ShopID, listing.ShopID, "should copy shop id")
			assert.Equal(t, src.Category, listing.Category, "should copy source category")
			assert.Equal(t, tt.wantTitle, listing.Title, "should compose title")
			assert.Equal(t, tt.wantURL, listing.URL, "should return canonical url")
			assertPrice(t, &tt.wantPrice, listing.PriceCAD, "should return regular price")
			assertPrice(t, tt.wantSalePrice, listing.SalePriceCAD, "should return sale price")
			assert.Equal(t, tt.wantStatus, listing.Status, "should return correct status")
			require.NotNil(t, listing.ImageURL, "should return image")
			assert.Equal(t, tt.wantImage, *listing.ImageURL, "should return first usable image")
			assert.Equal(t, tt.wantVariant, listing.Variant, "should return variant label")
		})
	}
}

func TestUnitProductListingErrors(t *testing.T) {
	srv := newShopServer(t, map[string]string{
		"/products/no-price.js": `{"title": "Empty", "variants": [{"title": "A", "price": null}]}`,
	})
	ext := shopify.NewExtractor(newFetcher(srv))
	src := models.Source{ShopID: "reef-shop", URL: srv.URL}

	tests := map[string]struct {
		productURL string
		wantErr    error
	}{
		"not a product url": {productURL: srv.URL + "/collections/torch", wantErr: shopify.ErrNotProductURL},
		"no priced variant": {productURL: srv.URL + "/products/no-price", wantErr: shopify.ErrNoPricedVariant},
		"missing product":   {productURL: srv.URL + "/products/missing"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			listing, err := ext.ProductListing(context.TODO(), src, tt.productURL)

			require.Error(t, err, "should return error")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr, "should return correct error")
			} else {
				var statusErr *fetcher.StatusError
				require.ErrorAs(t, err, &statusErr, "should return status error")
				assert.Equal(t, http.StatusNotFound, statusErr.StatusCode, "should return not found status")
			}
			assert.Nil(t, listing, "shouldn't return listing")
		})
	}
}

func TestUnitCatalogListings(t *testing.T) {
	pages := map[string]string{
		"1": `{"products": [
			{"id": 1, "title": "Hellfire Torch", "handle": "hellfire-torch",
			 "image": {"src": "https://cdn.example.com/hellfire.jpg"},
			 "variants": [{"title": "Default Title", "price": "89.99", "compare_at_price": "120.00", "available": false}]},
			{"id": 2, "title": "Green Zoa", "handle": "green-zoa", "images": [{"src": "/files/zoa.jpg"}],
			 "variants": [{"title": "Small", "price": "25.00"}, {"title": "Large", "price": "45.00"}]}
		]}`,
		"2": `{"products": [
			{"id": 3, "title": "No Price", "handle": "no-price", "variants": [{"title": "A", "price": null}]},
			{"id": 4, "title": "Banana Torch", "handle": "banana-torch", "variants": [{"title": "Default Title", "price": "150"}]}
		]}`,
		"3": `{"products": []}`,
	}

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/products.json", req.URL.Path, "should request catalog endpoint")
		assert.Equal(t, "100", req.URL.Query().Get("limit"), "should request full pages")
		_, _ = wrt.Write([]byte(pages[req.URL.Query().Get("page")]))
	}))
	t.Cleanup(srv.Close)

	src := models.Source{ShopID: "reef-solution", Category: models.CategoryMixed, URL: srv.URL + "/collections/all"}
	ext := shopify.NewExtractor(newFetcher(srv))

	listings, err := ext.CatalogListings(context.TODO(), src)

	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, int32(3), requests.Load(), "should stop on empty page")
	require.Len(t, listings, 3, "should skip products without price")

	assert.Equal(t, "Hellfire Torch", listings[0].Title, "should keep default variant out of title")
	assert.Equal(t, srv.URL+"/products/hellfire-torch", listings[0].URL, "should build product url")
	assertPrice(t, strPtr("120"), listings[0].PriceCAD, "should use compare-at price as regular price")
	assertPrice(t, strPtr("89.99"), listings[0].SalePriceCAD, "should use price as sale price")
	assert.Equal(t, "https://cdn.example.com/hellfire.jpg", *listings[0].ImageURL, "should use product image")

	assert.Equal(t, "Green Zoa — Small", listings[1].Title, "should select cheapest variant")
	assertPrice(t, strPtr("25"), listings[1].PriceCAD, "should use variant price")
	assert.Nil(t, listings[1].SalePriceCAD, "shouldn't set sale price")
	assert.Equal(t, srv.URL+"/files/zoa.jpg", *listings[1].ImageURL, "should resolve gallery image")

	assert.Nil(t, listings[2].ImageURL, "shouldn't invent image")
	for _, listing := range listings {
		assert.Equal(t, models.StatusAvailable, listing.Status, "should mark catalog listings available")
		assert.Equal(t, models.CategoryMixed, listing.Category, "should copy source category")
	}
}

func TestUnitCatalogListingsStops(t *testing.T) {
	repeated := `{"products": [{"id": 7, "title": "Joker Torch", "handle": "joker", "variants": [{"title": "A", "price": "60"}]}]}`

	tests := map[string]struct {
		maxPages     int
		wantRequests int32
	}{
		"page limit":       {maxPages: 1, wantRequests: 1},
		"recycled results": {maxPages: 200, wantRequests: 2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var requests atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
				requests.Add(1)
				_, _ = wrt.Write([]byte(repeated))
			}))
			t.Cleanup(srv.Close)

			ext := shopify.NewExtractor(newFetcher(srv), shopify.WithMaxPages(tt.maxPages))
			listings, err := ext.CatalogListings(context.TODO(), models.Source{ShopID: "shop", URL: srv.URL})

			require.NoError(t, err, "shouldn't return any error")
			assert.Len(t, listings, 1, "should return each product once")
			assert.Equal(t, tt.wantRequests, requests.Load(), "should stop walking catalog")
		})
	}
}

func TestUnitCatalogListingsFetchError(t *testing.T) {
	origin := "https://reefsolution.example"
	src := models.Source{ShopID: "reef-solution", URL: origin + "/collections/all"}
	pageURL := func(page int) string {
		return fmt.Sprintf("%s/products.json?limit=100&page=%d", origin, page)
	}

	t.Run("first page", func(t *testing.T) {
		fet := mocks.NewFetcher(t)
		fet.On("FetchJSON", mock.Anything, pageURL(1), mock.Anything).Return(assert.AnError).Once()

		listings, err := shopify.NewExtractor(fet).CatalogListings(context.TODO(), src)

		require.ErrorIs(t, err, assert.AnError, "should return error containing assert.AnError")
		assert.Nil(t, listings, "shouldn't return listings")
	})

	t.Run("later page", func(t *testing.T) {
		fet := mocks.NewFetcher(t)
		fet.On("FetchJSON", mock.Anything, pageURL(1), mock.Anything).
			Run(func(args mock.Arguments) {
				page := args.Get(2).(*shopify.CatalogPage)
				page.Products = []shopify.CatalogProduct{{
					ID:       1,
					Title:    "Torch",
					Handle:   "torch",
					Variants: []shopify.CatalogVariant{{Title: "A", Price: priceAmount("50")}},
				}}
			}).
			Return(nil).Once()
		fet.On("FetchJSON", mock.Anything, pageURL(2), mock.Anything).Return(assert.AnError).Once()

		listings, err := shopify.NewExtractor(fet).CatalogListings(context.TODO(), src)

		require.NoError(t, err, "shouldn't fail when some pages were read")
		assert.Len(t, listings, 1, "should return listings collected so far")
	})
}

func TestUnitSelectVariant(t *testing.T) {
	tests := map[string]struct {
		variants      []shopify.Variant
		wantOK        bool
		wantTitle     string
		wantPrice     string
		wantSalePrice *string
	}{
		"tie goes to first available": {
			variants: []shopify.Variant{
				{Title: "A", Price: decPtr("20"), Available: true},
				{Title: "B", Price: decPtr("10"), Available: true},
				{Title: "C", Price: decPtr("10"), Available: true},
			},
			wantOK:    true,
			wantTitle: "B",
			wantPrice: "10",
		},
		"none available picks cheapest of all": {
			variants: []shopify.Variant{
				{Title: "A", Price: decPtr("20")},
				{Title: "B", Price: decPtr("10")},
				{Title: "C", Price: decPtr("10")},
			},
			wantOK:    true,
			wantTitle: "B",
			wantPrice: "10",
		},
		"available preferred over cheaper sold out": {
			variants: []shopify.Variant{
				{Title: "1 head", Price: decPtr("30"), CompareAtPrice: decPtr("40"), Available: true},
				{Title: "2 heads", Price: decPtr("25")},
			},
			wantOK:        true,
			wantTitle:     "1 head",
			wantPrice:     "40",
			wantSalePrice: strPtr("30"),
		},
		"unpriced variants skipped": {
			variants: []shopify.Variant{
				{Title: "A", Available: true},
				{Title: "B", Price: decPtr("15"), Available: true},
			},
			wantOK:    true,
			wantTitle: "B",
			wantPrice: "15",
		},
		"unpriced available widens to priced sold out": {
			variants: []shopify.Variant{
				{Title: "A", Available: true},
				{Title: "B", Price: decPtr("10")},
			},
			wantOK:    true,
			wantTitle: "B",
			wantPrice: "10",
		},
		"compare at not above price": {
			variants: []shopify.Variant{
				{Title: "A", Price: decPtr("12"), CompareAtPrice: decPtr("12"), Available: true},
			},
			wantOK:    true,
			wantTitle: "A",
			wantPrice: "12",
		},
		"no priced variant": {
			variants: []shopify.Variant{{Title: "A", Available: true}},
		},
		"no variants": {},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			selection, ok := shopify.SelectVariant(tt.variants)

			require.Equal(t, tt.wantOK, ok, "should report whether variant was selected")
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantTitle, selection.Variant.Title, "should select correct variant")
			assertPrice(t, &tt.wantPrice, selection.Price, "should return regular price")
			assertPrice(t, tt.wantSalePrice, selection.SalePrice, "should return sale price")
		})
	}
}

func TestUnitProductHandle(t *testing.T) {
	tests := map[string]struct {
		url        string
		wantOrigin string
		wantHandle string
		wantErr    bool
	}{
		"product":            {url: "https://Shop.example/products/gold-torch", wantOrigin: "https://shop.example", wantHandle: "gold-torch"},
		"collection product": {url: "https://shop.example/collections/lps/products/gold-torch?v=1", wantOrigin: "https://shop.example", wantHandle: "gold-torch"},
		"js endpoint":        {url: "https://shop.example/products/gold-torch.js", wantOrigin: "https://shop.example", wantHandle: "gold-torch"},
		"collection":         {url: "https://shop.example/collections/lps", wantErr: true},
		"relative":           {url: "/products/gold-torch", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			origin, handle, err := shopify.ProductHandle(tt.url)

			if tt.wantErr {
				assert.Error(t, err, "should return error")
				assert.False(t, shopify.IsProductURL(tt.url), "shouldn't be product url")
				return
			}
			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, tt.wantOrigin, origin, "should return origin")
			assert.Equal(t, tt.wantHandle, handle, "should return handle")
			assert.True(t, shopify.IsProductURL(tt.url), "should be product url")
		})
	}
}

func newShopServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		body, ok := routes[req.URL.Path]
		if !ok {
			wrt.WriteHeader(http.StatusNotFound)
			return
		}
		wrt.Header().Set("Content-Type", "application/json")
		_, _ = wrt.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newFetcher(srv *httptest.Server) *fetcher.Fetcher {
	return fetcher.NewFetcher(srv.Client(), "test/0.0.0", "en-CA",
		fetcher.WithMaxAttempts(1),
		fetcher.WithJitter(func() time.Duration { return 0 }),
	)
}

func assertPrice(t *testing.T, want *string, got *decimal.Decimal, msg string) {
	t.Helper()

	if want == nil {
		assert.Nil(t, got, msg)
		return
	}
	if assert.NotNil(t, got, msg) {
		assert.Truef(t, decimal.RequireFromString(*want).Equal(*got), "%s: want %s, got %s", msg, *want, got)
	}
}

func priceAmount(s string) price.Amount {
	return price.Amount{Value: decimal.RequireFromString(s), Valid: true}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}
