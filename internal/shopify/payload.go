package shopify

import (
	"bytes"
	"encoding/json"

	"github.com/MichalMitros/coral-price-aggregator/internal/price"
	"github.com/samber/lo"
)

// ProductJS is payload of /products/{handle}.js, amounts are in cents.
type ProductJS struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Handle        string      `json:"handle"`
	Available     *bool       `json:"available"`
	FeaturedImage string      `json:"featured_image"`
	Images        []string    `json:"images"`
	Variants      []VariantJS `json:"variants"`
}

// VariantJS is variant of ProductJS.
type VariantJS struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	PublicTitle    *string      `json:"public_title"`
	Price          price.Amount `json:"price"`
	CompareAtPrice price.Amount `json:"compare_at_price"`
	Available      *bool        `json:"available"`
	FeaturedImage  *imageRef    `json:"featured_image"`
}

// CatalogPage is payload of /products.json, amounts are decimal strings.
type CatalogPage struct {
	Products []CatalogProduct `json:"products"`
}

// CatalogProduct is product of CatalogPage.
type CatalogProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Handle   string           `json:"handle"`
	Image    *imageRef        `json:"image"`
	Images   []imageRef       `json:"images"`
	Variants []CatalogVariant `json:"variants"`
}

// CatalogVariant is variant of CatalogProduct.
type CatalogVariant struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Price          price.Amount `json:"price"`
	CompareAtPrice price.Amount `json:"compare_at_price"`
	Available      *bool        `json:"available"`
	FeaturedImage  *imageRef    `json:"featured_image"`
}

// AnalyticsMeta is analytics object embedded in Shopify product pages, amounts are in cents.
type AnalyticsMeta struct {
	Product *AnalyticsProduct `json:"product"`
}

// AnalyticsProduct is product of AnalyticsMeta.
type AnalyticsProduct struct {
	ID       int64              `json:"id"`
	Vendor   string             `json:"vendor"`
	Type     string             `json:"type"`
	Variants []AnalyticsVariant `json:"variants"`
}

// AnalyticsVariant is variant of AnalyticsProduct.
type AnalyticsVariant struct {
	ID          int64        `json:"id"`
	Price       price.Amount `json:"price"`
	Name        string       `json:"name"`
	PublicTitle *string      `json:"public_title"`
}

// imageRef decodes image sent either as {"src": "..."} or as plain string.
type imageRef struct {
	Src string
}

func (i *imageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*i = imageRef{}
	case data[0] == '"':
		return json.Unmarshal(data, &i.Src)
	case data[0] == '{':
		var obj struct {
			Src string `json:"src"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		i.Src = obj.Src
	}
	return nil
}

func (p *ProductJS) variants() []Variant {
	return lo.Map(p.Variants, func(v VariantJS, _ int) Variant {
		return Variant{
			Title:          v.Title,
			Price:          v.Price.Cents().Ptr(),
			CompareAtPrice: v.CompareAtPrice.Cents().Ptr(),
			Available:      availableOr(v.Available),
			ImageURL:       imageSrc(v.FeaturedImage),
		}
	})
}

func (p *CatalogProduct) variants() []Variant {
	return lo.Map(p.Variants, func(v CatalogVariant, _ int) Variant {
		return Variant{
			Title:          v.Title,
			Price:          v.Price.Ptr(),
			CompareAtPrice: v.CompareAtPrice.Ptr(),
			Available:      availableOr(v.Available),
			ImageURL:       imageSrc(v.FeaturedImage),
		}
	})
}

// ToVariants converts analytics variants, analytics payload has no availability or compare-at price.
func (p *AnalyticsProduct) ToVariants() []Variant {
	return lo.Map(p.Variants, func(v AnalyticsVariant, _ int) Variant {
		title := lo.FromPtr(v.PublicTitle)
		if title == "" {
			title = DefaultVariantTitle
		}
		return Variant{
			Title:     title,
			Price:     v.Price.Cents().Ptr(),
			Available: true,
		}
	})
}

func imageSrc(ref *imageRef) string {
	if ref == nil {
		return ""
	}
	return ref.Src
}

// availableOr treats missing availability as available.
func availableOr(available *bool) bool {
	return available == nil || *available
}
