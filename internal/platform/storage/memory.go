package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/samber/lo"
)

type listingKey struct {
	shopID string
	url    string
}

// Memory is in-process listing storage used by dry runs and tests.
type Memory struct {
	mu       sync.RWMutex
	listings map[listingKey]models.Listing
	nextID   int
	now      func() time.Time
}

// NewMemory returns empty Memory.
func NewMemory() *Memory {
	return &Memory{
		listings: map[listingKey]models.Listing{},
		nextID:   1,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DeleteAllListings removes every listing. Returns number of deleted listings.
func (m *Memory) DeleteAllListings(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := int64(len(m.listings))
	clear(m.listings)

	return deleted, nil
}

// UpsertListing stores listing overwriting one with the same shop id and url.
// Listings Postgres would reject return platform.ErrInvalidListing.
func (m *Memory) UpsertListing(_ context.Context, listing *models.Listing) error {
	if !listing.Valid() || (listing.SalePriceCAD != nil && !listing.SalePriceCAD.LessThan(*listing.PriceCAD)) {
		return platform.ErrInvalidListing
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := listingKey{shopID: listing.ShopID, url: listing.URL}
	now := m.now()

	if stored, ok := m.listings[key]; ok {
		listing.ID = stored.ID
		listing.CreatedAt = stored.CreatedAt
	} else {
		listing.ID = m.nextID
		listing.CreatedAt = now
		m.nextID++
	}
	listing.UpdatedAt = now

	m.listings[key] = *listing

	return nil
}

// QueryListings returns listings matching filter, newest first.
func (m *Memory) QueryListings(_ context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	filter = filter.Normalized()
	search := strings.ToLower(filter.Search)

	m.mu.RLock()
	listings := lo.Filter(lo.Values(m.listings), func(l models.Listing, _ int) bool {
		if filter.Category != "" && l.Category != filter.Category {
			return false
		}
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(l.Title), search) ||
			strings.Contains(strings.ToLower(lo.FromPtr(l.Variant)), search)
	})
	m.mu.RUnlock()

	slices.SortFunc(listings, func(a, b models.Listing) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return b.ID - a.ID
	})

	if len(listings) > filter.Limit {
		listings = listings[:filter.Limit]
	}

	return listings, nil
}

// Listings returns every stored listing in insertion order.
func (m *Memory) Listings() []models.Listing {
	m.mu.RLock()
	listings := lo.Values(m.listings)
	m.mu.RUnlock()

	slices.SortFunc(listings, func(a, b models.Listing) int {
		return a.ID - b.ID
	})

	return listings
}

// Ping always succeeds.
func (m *Memory) Ping(_ context.Context) error {
	return nil
}
