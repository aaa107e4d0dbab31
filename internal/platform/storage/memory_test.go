package storage_test

import (
	"context"
	"testing"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models/modelstesting"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitMemoryUpsertListing(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	first := modelstesting.FakeListing(func(l *models.Listing) {
		l.ShopID = "reef-shop"
		l.URL = "https://reef.example/products/gold-torch"
		l.Title = "Gold Torch"
	})
	second := first
	second.ID = 0
	second.Title = "Gold Torch — 2 heads"

	require.NoError(t, mem.UpsertListing(ctx, &first), "shouldn't return any error")
	require.NoError(t, mem.UpsertListing(ctx, &second), "shouldn't return any error")

	listings, err := mem.QueryListings(ctx, models.ListingFilter{})
	require.NoError(t, err, "shouldn't return any error")
	require.Len(t, listings, 1, "should keep one listing per shop and url")
	assert.Equal(t, "Gold Torch — 2 heads", listings[0].Title, "should keep latest values")
	assert.Equal(t, first.ID, second.ID, "should reuse stored id")
	assert.Equal(t, listings, mem.Listings(), "should list stored listing")
}

func TestUnitMemoryUpsertListingRejectsInvalid(t *testing.T) {
	tests := map[string]func(l *models.Listing){
		"missing price":        func(l *models.Listing) { l.PriceCAD, l.SalePriceCAD = nil, nil },
		"missing shop id":      func(l *models.Listing) { l.ShopID = "" },
		"sale price not lower": func(l *models.Listing) { l.SalePriceCAD = l.PriceCAD },
	}

	for name, op := range tests {
		t.Run(name, func(t *testing.T) {
			mem := storage.NewMemory()
			listing := modelstesting.FakeListing(op)

			err := mem.UpsertListing(context.Background(), &listing)

			require.ErrorIs(t, err, platform.ErrInvalidListing, "should return invalid listing error")
			assert.Empty(t, mem.Listings(), "shouldn't store listing")
		})
	}
}

func TestUnitMemoryDeleteAllListings(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		listing := modelstesting.FakeListing()
		require.NoError(t, mem.UpsertListing(ctx, &listing), "shouldn't return any error")
	}

	deleted, err := mem.DeleteAllListings(ctx)
	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, int64(3), deleted, "should return number of deleted listings")

	listings, err := mem.QueryListings(ctx, models.ListingFilter{})
	require.NoError(t, err, "shouldn't return any error")
	assert.Empty(t, listings, "should remove all listings")
}

func TestUnitMemoryQueryListings(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	stored := []models.Listing{
		modelstesting.FakeListing(func(l *models.Listing) {
			l.URL, l.Title, l.Category = "https://a.example/1", "Gold Torch", models.CategoryTorch
			l.Variant = nil
		}),
		modelstesting.FakeListing(func(l *models.Listing) {
			l.URL, l.Title, l.Category = "https://a.example/2", "Green Hammer", models.CategoryHammer
			l.Variant = lo.ToPtr("Gold tips")
		}),
		modelstesting.FakeListing(func(l *models.Listing) {
			l.URL, l.Title, l.Category = "https://a.example/3", "Rainbow Chalice", models.CategoryChalice
			l.Variant = nil
		}),
	}
	for ix := range stored {
		require.NoError(t, mem.UpsertListing(ctx, &stored[ix]), "shouldn't return any error")
	}

	tests := map[string]struct {
		filter    models.ListingFilter
		wantTitle []string
	}{
		"all newest first": {
			wantTitle: []string{"Rainbow Chalice", "Green Hammer", "Gold Torch"},
		},
		"by category": {
			filter:    models.ListingFilter{Category: "Torch"},
			wantTitle: []string{"Gold Torch"},
		},
		"search title and variant": {
			filter:    models.ListingFilter{Search: "GOLD"},
			wantTitle: []string{"Green Hammer", "Gold Torch"},
		},
		"limit": {
			filter:    models.ListingFilter{Limit: 1},
			wantTitle: []string{"Rainbow Chalice"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			listings, err := mem.QueryListings(ctx, tt.filter)

			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, tt.wantTitle, lo.Map(listings, func(l models.Listing, _ int) string {
				return l.Title
			}), "should return matching listings")
		})
	}
}
