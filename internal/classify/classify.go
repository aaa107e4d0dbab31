// Package classify holds keyword heuristics applied to scraped listings.
package classify

import (
	"regexp"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/samber/lo"
)

// TorchKeywords match torch coral titles. Trade names like "banana" or "joker"
// also appear on other euphyllia, such false positives are accepted.
var TorchKeywords = []string{
	"torch",
	"euphyllia glabrescens",
	"glabrescens",
	"banana",
	"joker",
	"indo gold",
	"holy grail",
	"dragon soul",
	"hellfire",
	"sunset",
	"tyree",
	"master torch",
}

// CategoryKeywords is ordered, first category with matching keyword wins.
var CategoryKeywords = []struct {
	Category string
	Keywords []string
}{
	{Category: models.CategoryHammer, Keywords: []string{"hammer", "ancora"}},
	{Category: models.CategoryFrogspawn, Keywords: []string{"frogspawn", "divisa"}},
	{Category: models.CategoryAcropora, Keywords: []string{"acropora", "acro ", "acro-", "tort", "millepora"}},
	{Category: models.CategoryMontipora, Keywords: []string{"montipora", "monti ", "monti-", "digitata"}},
	{Category: models.CategoryZoa, Keywords: []string{"zoa", "zoanthid", "paly", "palythoa"}},
	{Category: models.CategoryChalice, Keywords: []string{"chalice", "echinophyllia", "oxypora", "mycedium"}},
	{Category: models.CategoryMushroom, Keywords: []string{"mushroom", "rhodactis", "discosoma", "ricordea", "shroom"}},
	{Category: models.CategoryTorch, Keywords: TorchKeywords},
}

var (
	wysiwygPattern = regexp.MustCompile(`(?i)wysiwyg`)

	// thumbnails generated by WordPress carry size suffix like -150x150.jpg
	thumbnailPattern = regexp.MustCompile(`-\d{2,4}x(\d{2,4})?(\.[a-z0-9]+)?$`)

	badImageTokens = []string{"logo", "placeholder", "favicon", "site-icon", "spinner", "loading"}
)

// EnforceTorch sets sale mode and unit type of torch listings.
// WYSIWYG titles are sold as one specimen, everything else is sold per head.
func EnforceTorch(listing *models.Listing) {
	if listing.Category != models.CategoryTorch {
		return
	}

	if wysiwygPattern.MatchString(listing.Title) {
		listing.SaleMode = lo.ToPtr(models.SaleModeWYSIWYG)
		return
	}

	listing.SaleMode = lo.ToPtr(models.SaleModePerUnit)
	listing.UnitType = lo.ToPtr(models.UnitHead)
}

// MatchesTorch reports whether title looks like a torch coral.
func MatchesTorch(title string) bool {
	return containsAny(strings.ToLower(title), TorchKeywords)
}

// Categorize returns sourceCategory unless it is empty or mixed,
// then category is guessed from title keywords.
func Categorize(title, sourceCategory string) string {
	if sourceCategory != "" && sourceCategory != models.CategoryMixed {
		return sourceCategory
	}

	lower := strings.ToLower(title) + " "
	for _, entry := range CategoryKeywords {
		if containsAny(lower, entry.Keywords) {
			return entry.Category
		}
	}

	return models.CategoryOther
}

// Finalize categorizes listing and applies category rules, it must be the last
// step before validation.
func Finalize(listing *models.Listing, sourceCategory string) {
	listing.Category = Categorize(listing.Title, sourceCategory)
	EnforceTorch(listing)
}

// IsBadImage reports whether image URL is not a product photo.
func IsBadImage(imageURL string) bool {
	lower := strings.ToLower(strings.TrimSpace(imageURL))
	if lower == "" || strings.HasPrefix(lower, "data:") {
		return true
	}

	path := lower
	if ix := strings.IndexAny(path, "?#"); ix >= 0 {
		path = path[:ix]
	}

	if strings.HasSuffix(path, ".svg") {
		return true
	}

	if containsAny(path, badImageTokens) {
		return true
	}

	return thumbnailPattern.MatchString(path)
}

func containsAny(s string, tokens []string) bool {
	return lo.SomeBy(tokens, func(token string) bool {
		return strings.Contains(s, token)
	})
}
