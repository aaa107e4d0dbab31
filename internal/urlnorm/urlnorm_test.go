package urlnorm_test

import (
	"net/url"
	"testing"

	"github.com/MichalMitros/coral-price-aggregator/internal/urlnorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitNormalize(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want string
	}{
		"already normal": {
			raw:  "https://shop.example/products/torch",
			want: "https://shop.example/products/torch",
		},
		"locale prefix": {
			raw:  "https://shop.example/en/products/torch",
			want: "https://shop.example/products/torch",
		},
		"region locale prefix": {
			raw:  "https://shop.example/en-ca/products/torch/",
			want: "https://shop.example/products/torch",
		},
		"tracking params": {
			raw:  "https://shop.example/products/torch?utm_source=ig&fbclid=abc&gclid=1&utm_campaign=x",
			want: "https://shop.example/products/torch",
		},
		"sorted params": {
			raw:  "https://shop.example/products/torch?variant=12&color=red",
			want: "https://shop.example/products/torch?color=red&variant=12",
		},
		"fragment and host case": {
			raw:  "HTTPS://Shop.Example/product/zoa/#reviews",
			want: "https://shop.example/product/zoa",
		},
		"not locale segment": {
			raw:  "https://shop.example/product/zoa",
			want: "https://shop.example/product/zoa",
		},
		"root": {
			raw:  "https://shop.example/",
			want: "https://shop.example",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := urlnorm.Normalize(tt.raw)

			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, tt.want, got, "should return normalized url")

			again, err := urlnorm.Normalize(got)
			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, got, again, "should be idempotent")
		})
	}
}

func TestUnitNormalizeEquivalentURLs(t *testing.T) {
	equivalent := []string{
		"https://shop.example/products/torch?b=2&a=1",
		"https://shop.example/en/products/torch?a=1&b=2",
		"https://shop.example/fr-ca/products/torch/?a=1&utm_medium=email&b=2",
		"https://shop.example/products/torch?fbclid=x&b=2&a=1",
	}

	want, err := urlnorm.Normalize(equivalent[0])
	require.NoError(t, err, "shouldn't return any error")

	for _, raw := range equivalent[1:] {
		got, err := urlnorm.Normalize(raw)
		require.NoError(t, err, "shouldn't return any error")
		assert.Equalf(t, want, got, "%s should normalize to the same url", raw)
	}
}

func TestUnitCanonicalProductURL(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want string
	}{
		"variant param": {
			raw:  "https://shop.example/products/torch?variant=123",
			want: "https://shop.example/products/torch",
		},
		"locale and tracking": {
			raw:  "https://shop.example/en/products/torch/?utm_source=x&variant=1",
			want: "https://shop.example/products/torch",
		},
		"empty query marker": {
			raw:  "https://shop.example/produit/zoa?",
			want: "https://shop.example/produit/zoa",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := urlnorm.CanonicalProductURL(tt.raw)

			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, tt.want, got, "should return canonical url")

			parsed, err := url.Parse(got)
			require.NoError(t, err, "canonical url should be parsable")
			assert.Empty(t, parsed.RawQuery, "canonical url should have empty query")
		})
	}
}

func TestUnitCanonicalProductURLError(t *testing.T) {
	_, err := urlnorm.CanonicalProductURL("http://[::1")

	require.ErrorContains(t, err, "can't parse url", "should return parsing error")
}

func TestUnitResolve(t *testing.T) {
	base, err := url.Parse("https://shop.example/collections/torch?page=2")
	require.NoError(t, err)

	tests := map[string]struct {
		ref    string
		want   string
		wantOK bool
	}{
		"relative":   {ref: "/products/a", want: "https://shop.example/products/a", wantOK: true},
		"absolute":   {ref: "https://cdn.example/a.jpg", want: "https://cdn.example/a.jpg", wantOK: true},
		"protocol":   {ref: "//cdn.example/a.jpg", want: "https://cdn.example/a.jpg", wantOK: true},
		"fragment":   {ref: "#top"},
		"javascript": {ref: "javascript:void(0)"},
		"mailto":     {ref: "mailto:a@b.c"},
		"empty":      {ref: " "},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := urlnorm.Resolve(base, tt.ref)

			require.Equal(t, tt.wantOK, ok, "should report if reference is usable")
			if tt.wantOK {
				assert.Equal(t, tt.want, got.String(), "should resolve reference")
			}
		})
	}
}

func TestUnitOrigin(t *testing.T) {
	origin, err := urlnorm.Origin("https://Shop.Example/collections/torch?page=1")
	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, "https://shop.example", origin, "should return origin")

	_, err = urlnorm.Origin("/collections/torch")
	require.Error(t, err, "should reject relative url")
}
