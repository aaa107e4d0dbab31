package shopify

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// DefaultVariantTitle is title Shopify gives to the only variant of a product.
const DefaultVariantTitle = "Default Title"

// Variant is purchasable option of a product, normalized from any payload shape.
type Variant struct {
	Title          string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Available      bool
	ImageURL       string
}

// Selection is variant chosen to represent whole product.
type Selection struct {
	Variant Variant
	// Price is regular price, compare-at price when variant is discounted.
	Price *decimal.Decimal
	// SalePrice is set only when variant is discounted.
	SalePrice *decimal.Decimal
}

// Effective returns price customer pays for variant.
func (v Variant) Effective() *decimal.Decimal {
	return v.Price
}

// Discounted reports whether compare-at price exceeds price.
func (v Variant) Discounted() bool {
	return v.Price != nil && v.CompareAtPrice != nil && v.CompareAtPrice.GreaterThan(*v.Price)
}

// SelectVariant returns available variant with lowest effective price, ties go to first one.
// Variants without price are skipped, when no priced variant is available all priced variants are considered.
func SelectVariant(variants []Variant) (Selection, bool) {
	priced := lo.Filter(variants, func(v Variant, _ int) bool { return v.Effective() != nil })
	pool := lo.Filter(priced, func(v Variant, _ int) bool { return v.Available })
	if len(pool) == 0 {
		pool = priced
	}

	var (
		best  Variant
		found bool
	)
	for _, v := range pool {
		if !found || v.Effective().LessThan(*best.Effective()) {
			best = v
			found = true
		}
	}

	if !found {
		return Selection{}, false
	}

	if best.Discounted() {
		return Selection{
			Variant:   best,
			Price:     best.CompareAtPrice,
			SalePrice: best.Price,
		}, true
	}

	return Selection{Variant: best, Price: best.Price}, true
}

// ComposeTitle appends variant title to product title unless it's the default one.
func ComposeTitle(productTitle, variantTitle string) string {
	productTitle = strings.TrimSpace(productTitle)
	variantTitle = strings.TrimSpace(variantTitle)

	if variantTitle == "" || strings.EqualFold(variantTitle, DefaultVariantTitle) {
		return productTitle
	}

	return productTitle + " — " + variantTitle
}

// VariantLabel returns variant title or nil for default variant.
func VariantLabel(variantTitle string) *string {
	variantTitle = strings.TrimSpace(variantTitle)
	if variantTitle == "" || strings.EqualFold(variantTitle, DefaultVariantTitle) {
		return nil
	}
	return &variantTitle
}

// AnyAvailable reports whether at least one variant is available.
func AnyAvailable(variants []Variant) bool {
	return lo.SomeBy(variants, func(v Variant) bool { return v.Available })
}
