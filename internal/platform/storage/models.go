package storage

import (
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/samber/lo"

	pgmodels "github.com/MichalMitros/coral-price-aggregator/internal/platform/storage/gen/postgres/public/model"
)

//go:generate make -C ../../../ generate-db

// ToDBListing converts models.Listing into postgres listing model.
func ToDBListing(listing *models.Listing) *pgmodels.Listing {
	dbListing := pgmodels.Listing{
		ID:           int32(listing.ID),
		ShopID:       listing.ShopID,
		Category:     listing.Category,
		Title:        listing.Title,
		URL:          listing.URL,
		ImageURL:     listing.ImageURL,
		PriceCad:     listing.PriceCAD,
		SalePriceCad: listing.SalePriceCAD,
		Status:       listing.Status,
		Variant:      listing.Variant,
		SaleMode:     listing.SaleMode,
		UnitType:     listing.UnitType,
		CreatedAt:    listing.CreatedAt,
		UpdatedAt:    listing.UpdatedAt,
	}

	if listing.UnitCount != nil {
		dbListing.UnitCount = lo.ToPtr(int32(*listing.UnitCount))
	}

	return &dbListing
}

// FromDBListing converts postgres listing model into models.Listing.
func FromDBListing(dbListing *pgmodels.Listing) models.Listing {
	listing := models.Listing{
		ID:           int(dbListing.ID),
		ShopID:       dbListing.ShopID,
		Category:     dbListing.Category,
		Title:        dbListing.Title,
		URL:          dbListing.URL,
		ImageURL:     dbListing.ImageURL,
		PriceCAD:     dbListing.PriceCad,
		SalePriceCAD: dbListing.SalePriceCad,
		Status:       dbListing.Status,
		Variant:      dbListing.Variant,
		SaleMode:     dbListing.SaleMode,
		UnitType:     dbListing.UnitType,
		CreatedAt:    dbListing.CreatedAt,
		UpdatedAt:    dbListing.UpdatedAt,
	}

	if dbListing.UnitCount != nil {
		listing.UnitCount = lo.ToPtr(int(*dbListing.UnitCount))
	}

	return listing
}

// FromDBSource converts postgres source model into models.Source.
func FromDBSource(dbSource *pgmodels.Source) models.Source {
	return models.Source{
		ID:       int(dbSource.ID),
		URL:      dbSource.URL,
		ShopID:   dbSource.ShopID,
		Category: dbSource.Category,
		IsActive: dbSource.IsActive,
	}
}
