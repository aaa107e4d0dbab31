package helpers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pgmodels "github.com/MichalMitros/coral-price-aggregator/internal/platform/storage/gen/postgres/public/model"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage/storagetesting"
	"github.com/go-jet/jet/v2/qrm"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

const (
	contentType = "Content-Type"
)

const catalogPage = `{"products":[
  {"id":1,"title":"Gold Torch WYSIWYG","handle":"gold-torch","images":[{"src":"//cdn.example/gold.jpg"}],
   "variants":[{"id":11,"title":"Default Title","price":"120.00","compare_at_price":"150.00","available":true}]},
  {"id":2,"title":"Dragon Soul Torch","handle":"dragon-soul","images":[],
   "variants":[
     {"id":21,"title":"1 head","price":"65.00","compare_at_price":null,"available":true},
     {"id":22,"title":"2 heads","price":"120.00","compare_at_price":null,"available":true}]}
]}`

const categoryPage = `<html><body><ul class="products">
<li><a href="/product/green-hammer/?utm_source=list">Green Hammer</a></li>
<li><a href="/product/rainbow-chalice/">Rainbow Chalice</a></li>
<li><a href="/about/">About</a></li>
</ul></body></html>`

const productPage = `<html><head><title>%[1]s</title></head><body>
<div class="product type-product instock">
  <img class="wp-post-image" src="/wp-content/uploads/%[2]s-main.jpg">
  <h1 class="product_title">%[1]s</h1>
  <p class="price"><span class="woocommerce-Price-amount amount">$%[3]s</span></p>
</div></body></html>`

// NewShopifyShop returns fake Shopify storefront serving two catalog products.
func NewShopifyShop(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/products.json" {
			http.NotFound(wrt, req)
			return
		}

		wrt.Header().Add(contentType, "application/json")
		if req.URL.Query().Get("page") == "1" {
			_, _ = wrt.Write([]byte(catalogPage))
			return
		}
		_, _ = wrt.Write([]byte(`{"products":[]}`))
	}))

	t.Cleanup(srv.Close)

	return srv
}

// NewWooCommerceShop returns fake WooCommerce storefront with one category of two products.
func NewWooCommerceShop(t *testing.T) *httptest.Server {
	t.Helper()

	products := map[string]string{
		"/product/green-hammer/":    fmt.Sprintf(productPage, "Green Hammer", "green-hammer", "85.00"),
		"/product/green-hammer":     fmt.Sprintf(productPage, "Green Hammer", "green-hammer", "85.00"),
		"/product/rainbow-chalice/": fmt.Sprintf(productPage, "Rainbow Chalice", "rainbow-chalice", "49.99"),
		"/product/rainbow-chalice":  fmt.Sprintf(productPage, "Rainbow Chalice", "rainbow-chalice", "49.99"),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		wrt.Header().Add(contentType, "text/html; charset=utf-8")

		if strings.HasPrefix(req.URL.Path, "/product-category/lps") && !strings.Contains(req.URL.Path, "/page/") {
			_, _ = wrt.Write([]byte(categoryPage))
			return
		}

		if body, ok := products[req.URL.Path]; ok {
			_, _ = wrt.Write([]byte(body))
			return
		}

		http.NotFound(wrt, req)
	}))

	t.Cleanup(srv.Close)

	return srv
}

// NewForbiddenShop returns server rejecting every request.
func NewForbiddenShop(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, _ *http.Request) {
		wrt.WriteHeader(http.StatusForbidden)
	}))

	t.Cleanup(srv.Close)

	return srv
}

// WriteSourcesFile writes YAML sources file and returns its path.
func WriteSourcesFile(t *testing.T, shopify, woo, forbidden string) string {
	t.Helper()

	content := fmt.Sprintf(`sources:
  - url: %s/collections/torch
    shop_id: fake-shopify
    category: torch
  - url: %s/product-category/lps/
    shop_id: fake-woo
    category: mixed
  - url: %s/collections/all
    shop_id: fake-forbidden
    category: other
  - url: %s/collections/zoa
    shop_id: fake-inactive
    category: zoa
    active: false
`, shopify, woo, forbidden, shopify)

	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		require.FailNow(t, "can't write sources file", err)
	}

	return path
}

// WaitForListings is blocking helper function, returns listings once at least n are stored.
func WaitForListings(t *testing.T, queryable qrm.Queryable, n int, timeout time.Duration) []pgmodels.Listing {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case <-deadline:
			require.FailNow(t, "listings not stored in time")
		case <-time.After(250 * time.Millisecond):
		}

		if listings := storagetesting.GetListings(t, queryable); len(listings) >= n {
			return listings
		}
	}
}

// CleanupRMQ deletes queue and exchange after test is finished.
func CleanupRMQ(t *testing.T, channel *amqp.Channel, queueName, exchange string) {
	t.Helper()

	t.Cleanup(func() {
		if _, err := channel.QueueDelete(queueName, false, false, true); err != nil {
			require.FailNow(t, "can't delete queue", queueName, err)
		}
		if err := channel.ExchangeDelete(exchange, false, true); err != nil {
			require.FailNow(t, "can't delete exchange", exchange, err)
		}
	})
}
