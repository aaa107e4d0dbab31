package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Listing statuses.
const (
	StatusAvailable = "available"
	StatusSoldOut   = "sold_out"
)

// Sale modes.
const (
	SaleModeWYSIWYG = "wysiwyg"
	SaleModePerUnit = "per_unit"
)

// Unit types.
const (
	UnitHead  = "head"
	UnitPolyp = "polyp"
	UnitFrag  = "frag"
)

// Categories.
const (
	CategoryTorch     = "torch"
	CategoryHammer    = "hammer"
	CategoryFrogspawn = "frogspawn"
	CategoryAcropora  = "acropora"
	CategoryMontipora = "montipora"
	CategoryZoa       = "zoa"
	CategoryChalice   = "chalice"
	CategoryMushroom  = "mushroom"
	CategoryOther     = "other"
	// CategoryMixed is only valid on sources, listings get categorized by title.
	CategoryMixed = "mixed"
)

// SourceCategories lists categories accepted on sources.
var SourceCategories = []string{
	CategoryTorch,
	CategoryHammer,
	CategoryFrogspawn,
	CategoryAcropora,
	CategoryMontipora,
	CategoryZoa,
	CategoryChalice,
	CategoryMushroom,
	CategoryOther,
	CategoryMixed,
}

// Source is a crawl origin from configuration.
type Source struct {
	ID       int
	URL      string
	ShopID   string
	Category string
	IsActive bool
}

// Listing is one normalized product of a shop.
type Listing struct {
	ID           int              `json:"id"`
	ShopID       string           `json:"shop_id"`
	Category     string           `json:"category"`
	Title        string           `json:"title"`
	URL          string           `json:"url"`
	ImageURL     *string          `json:"image_url"`
	PriceCAD     *decimal.Decimal `json:"price_cad"`
	SalePriceCAD *decimal.Decimal `json:"sale_price_cad"`
	Status       string           `json:"status"`
	Variant      *string          `json:"variant"`
	SaleMode     *string          `json:"sale_mode"`
	UnitType     *string          `json:"unit_type"`
	UnitCount    *int             `json:"unit_count"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Sanitize drops values breaking listing invariants which can be repaired.
// Prices are rounded to cents first, then non-positive prices become nil
// and a sale price not lower than the regular price is dropped.
func (l *Listing) Sanitize() {
	l.PriceCAD = roundCents(l.PriceCAD)
	l.SalePriceCAD = roundCents(l.SalePriceCAD)
	if l.PriceCAD != nil && !l.PriceCAD.IsPositive() {
		l.PriceCAD = nil
	}
	if l.SalePriceCAD != nil && !l.SalePriceCAD.IsPositive() {
		l.SalePriceCAD = nil
	}
	if l.SalePriceCAD != nil && (l.PriceCAD == nil || !l.SalePriceCAD.LessThan(*l.PriceCAD)) {
		l.SalePriceCAD = nil
	}
	if l.UnitCount != nil && *l.UnitCount <= 0 {
		l.UnitCount = nil
	}
	if l.Status != StatusSoldOut {
		l.Status = StatusAvailable
	}
	l.Title = strings.TrimSpace(l.Title)
}

func roundCents(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	rounded := d.Round(2)
	return &rounded
}

// Valid reports whether listing can be persisted.
func (l *Listing) Valid() bool {
	return strings.TrimSpace(l.ShopID) != "" &&
		strings.TrimSpace(l.URL) != "" &&
		l.PriceCAD != nil &&
		l.PriceCAD.IsPositive()
}

// Listing query limits.
const (
	DefaultListingLimit = 100
	MaxListingLimit     = 500
)

// ListingFilter narrows listing queries.
type ListingFilter struct {
	Category string
	// Search matches title or variant, case-insensitive.
	Search string
	Limit  int
}

// Normalized returns copy of filter with trimmed values and limit within bounds.
func (f ListingFilter) Normalized() ListingFilter {
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Search = strings.TrimSpace(f.Search)

	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListingLimit
	case f.Limit > MaxListingLimit:
		f.Limit = MaxListingLimit
	}

	return f
}

// RunReport summarizes one aggregation run.
type RunReport struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Cleared    int64          `json:"cleared"`
	Total      int            `json:"total"`
	Sources    []SourceReport `json:"debug"`
}

// SourceReport is a per source entry of RunReport.
// Found counts listings persisted before a source failure, they stay stored and count toward the run total.
type SourceReport struct {
	Source string  `json:"source"`
	ShopID string  `json:"shopId"`
	Mode   string  `json:"mode,omitempty"`
	Found  int     `json:"found"`
	Failed int     `json:"failed"`
	Error  *string `json:"error,omitempty"`
}
