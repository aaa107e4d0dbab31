package modelstesting

import (
	"fmt"
	"math/rand"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/go-faker/faker/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FakeListing returns valid models.Listing with fake data.
func FakeListing(ops ...func(l *models.Listing)) models.Listing {
	price := decimal.NewFromInt(int64(rand.Intn(200) + 20))

	listing := models.Listing{
		ShopID:       faker.Word(),
		Category:     models.CategoryAcropora,
		Title:        faker.Sentence(),
		URL:          fmt.Sprintf("https://%s.example/products/%s", faker.Word(), faker.Word()),
		ImageURL:     lo.ToPtr(fmt.Sprintf("https://cdn.example/%s.jpg", faker.Word())),
		PriceCAD:     &price,
		SalePriceCAD: lo.ToPtr(price.Sub(decimal.NewFromInt(5))),
		Status:       models.StatusAvailable,
		Variant:      lo.ToPtr(faker.Word()),
	}

	for _, op := range ops {
		op(&listing)
	}

	return listing
}

// FakeSource returns active models.Source with fake data.
func FakeSource(ops ...func(s *models.Source)) models.Source {
	source := models.Source{
		ID:       rand.Intn(10000) + 1,
		URL:      fmt.Sprintf("https://%s.example/collections/%s", faker.Word(), faker.Word()),
		ShopID:   faker.Word(),
		Category: models.CategoryTorch,
		IsActive: true,
	}

	for _, op := range ops {
		op(&source)
	}

	return source
}

// Price returns pointer to decimal parsed from s, it panics on invalid input.
func Price(s string) *decimal.Decimal {
	return lo.ToPtr(decimal.RequireFromString(s))
}
