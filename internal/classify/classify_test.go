package classify_test

import (
	"testing"

	"github.com/MichalMitros/coral-price-aggregator/internal/classify"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models/modelstesting"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestUnitEnforceTorch(t *testing.T) {
	tests := map[string]struct {
		category     string
		title        string
		unitCount    *int
		wantSaleMode *string
		wantUnitType *string
		wantCount    *int
	}{
		"wysiwyg lower case": {
			category:     models.CategoryTorch,
			title:        "Indo Gold Torch wysiwyg",
			wantSaleMode: lo.ToPtr(models.SaleModeWYSIWYG),
		},
		"wysiwyg mixed case": {
			category:     models.CategoryTorch,
			title:        "Dragon Soul Torch (WySiWyG)",
			wantSaleMode: lo.ToPtr(models.SaleModeWYSIWYG),
		},
		"per head by default": {
			category:     models.CategoryTorch,
			title:        "Hellfire Torch",
			wantSaleMode: lo.ToPtr(models.SaleModePerUnit),
			wantUnitType: lo.ToPtr(models.UnitHead),
		},
		"count kept": {
			category:     models.CategoryTorch,
			title:        "Banana Torch 3 heads",
			unitCount:    lo.ToPtr(3),
			wantSaleMode: lo.ToPtr(models.SaleModePerUnit),
			wantUnitType: lo.ToPtr(models.UnitHead),
			wantCount:    lo.ToPtr(3),
		},
		"other category untouched": {
			category: models.CategoryAcropora,
			title:    "Walt Disney Acro",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			listing := modelstesting.FakeListing(func(l *models.Listing) {
				l.Category = tt.category
				l.Title = tt.title
				l.UnitCount = tt.unitCount
			})

			classify.EnforceTorch(&listing)

			assert.Equal(t, tt.wantSaleMode, listing.SaleMode, "should set correct sale mode")
			assert.Equal(t, tt.wantUnitType, listing.UnitType, "should set correct unit type")
			assert.Equal(t, tt.wantCount, listing.UnitCount, "shouldn't change unit count")
		})
	}
}

func TestUnitCategorize(t *testing.T) {
	tests := map[string]struct {
		title          string
		sourceCategory string
		want           string
	}{
		"source category wins":  {title: "Rainbow Acropora", sourceCategory: models.CategoryTorch, want: models.CategoryTorch},
		"mixed torch":           {title: "Jason Fox Joker Torch", sourceCategory: models.CategoryMixed, want: models.CategoryTorch},
		"mixed hammer":          {title: "Gold Hammer", sourceCategory: models.CategoryMixed, want: models.CategoryHammer},
		"mixed acropora":        {title: "Strawberry Shortcake Acro", sourceCategory: models.CategoryMixed, want: models.CategoryAcropora},
		"mixed zoa":             {title: "Rasta Zoas", sourceCategory: models.CategoryMixed, want: models.CategoryZoa},
		"empty source category": {title: "Ricordea Florida", want: models.CategoryMushroom},
		"unknown":               {title: "Frag rack", sourceCategory: models.CategoryMixed, want: models.CategoryOther},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify.Categorize(tt.title, tt.sourceCategory), "should return correct category")
		})
	}
}

func TestUnitMatchesTorch(t *testing.T) {
	assert.True(t, classify.MatchesTorch("Holy Grail TORCH"), "should match torch keyword")
	assert.True(t, classify.MatchesTorch("Banana Euphyllia"), "should match trade name")
	assert.False(t, classify.MatchesTorch("Green Star Polyps"), "shouldn't match unrelated title")
}

func TestUnitFinalize(t *testing.T) {
	listing := modelstesting.FakeListing(func(l *models.Listing) { l.Title = "Master Torch" })

	classify.Finalize(&listing, models.CategoryMixed)

	assert.Equal(t, models.CategoryTorch, listing.Category, "should categorize by title")
	assert.Equal(t, lo.ToPtr(models.SaleModePerUnit), listing.SaleMode, "should enforce torch sale mode")
}

func TestUnitIsBadImage(t *testing.T) {
	tests := map[string]bool{
		"https://x/logo.svg":                       true,
		"https://x/prod-150x150.jpg":               true,
		"https://x/prod-300x.png":                  true,
		"https://x/prod-full.jpg":                  false,
		"https://cdn.shopify.com/files/coral.jpg?v=12": false,
		"https://x/wp-content/placeholder.png":     true,
		"https://x/favicon.ico":                    true,
		"https://x/cropped-site-icon-32x32.png":    true,
		"https://x/vector.SVG?ver=2":               true,
		"data:image/gif;base64,R0lGOD":             true,
		"":                                         true,
		"https://x/Store-LOGO-white.webp":          true,
	}

	for url, want := range tests {
		t.Run(url, func(t *testing.T) {
			assert.Equal(t, want, classify.IsBadImage(url), "should classify image correctly")
		})
	}
}
