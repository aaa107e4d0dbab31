package storagetesting

import (
	"database/sql"
	"os"
	"testing"

	pgmodels "github.com/MichalMitros/coral-price-aggregator/internal/platform/storage/gen/postgres/public/model"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage/gen/postgres/public/table"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"

	_ "github.com/lib/pq"
)

// Open opens connection to DB. Test is skipped when DATABASE_URL is not set.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("please provide database URL via DATABASE_URL environment variable")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("can't open connection to %q: %s", dbURL, err)
	}

	return db
}

// BeginTx begins DB transaction. Returns function to roll it back.
func BeginTx(t *testing.T, db *sql.DB) (*sql.Tx, func()) {
	t.Helper()

	tx, err := db.Begin()
	if err != nil {
		t.Fatal("begin transaction", err)
	}

	rollback := func() {
		if err := tx.Rollback(); err != nil {
			t.Fatal("can't rollback transaction", err)
		}
	}

	return tx, rollback
}

// InsertSources is a helper test function to insert sources.
func InsertSources(t *testing.T, exc qrm.Executable, sources ...pgmodels.Source) {
	t.Helper()

	if len(sources) == 0 {
		return
	}

	_, err := table.Source.INSERT(table.Source.AllColumns.Except(table.Source.ID, table.Source.CreatedAt)).
		MODELS(sources).
		Exec(exc)
	if err != nil {
		t.Fatal("can't insert sources", err)
	}
}

// InsertListings is a helper test function to insert listings.
func InsertListings(t *testing.T, exc qrm.Executable, listings ...pgmodels.Listing) {
	t.Helper()

	if len(listings) == 0 {
		return
	}

	_, err := table.Listing.INSERT(table.Listing.AllColumns.Except(table.Listing.ID)).
		MODELS(listings).
		Exec(exc)
	if err != nil {
		t.Fatal("can't insert listings", err)
	}
}

// GetListings is a helper test function to get all listings.
func GetListings(t *testing.T, queryable qrm.Queryable) []pgmodels.Listing {
	t.Helper()

	listings := []pgmodels.Listing{}
	err := table.Listing.SELECT(table.Listing.AllColumns).
		WHERE(table.Listing.ID.IS_NOT_NULL()).
		ORDER_BY(table.Listing.ID.ASC()).
		Query(queryable, &listings)
	if err != nil {
		t.Fatal("can't get listings", err)
	}

	return listings
}

// GetListingsByShopID is a helper test function to get listings of shop.
func GetListingsByShopID(t *testing.T, queryable qrm.Queryable, shopID string) []pgmodels.Listing {
	t.Helper()

	listings := []pgmodels.Listing{}
	err := table.Listing.SELECT(table.Listing.AllColumns).
		WHERE(table.Listing.ShopID.EQ(pg.String(shopID))).
		ORDER_BY(table.Listing.ID.ASC()).
		Query(queryable, &listings)
	if err != nil {
		t.Fatal("can't get listings", err)
	}

	return listings
}

// GetSources is a helper test function to get all sources.
func GetSources(t *testing.T, queryable qrm.Queryable) []pgmodels.Source {
	t.Helper()

	sources := []pgmodels.Source{}
	err := table.Source.SELECT(table.Source.AllColumns).
		WHERE(table.Source.ID.IS_NOT_NULL()).
		ORDER_BY(table.Source.ID.ASC()).
		Query(queryable, &sources)
	if err != nil {
		t.Fatal("can't get sources", err)
	}

	return sources
}

// CleanupData removes all listings and sources.
func CleanupData(t *testing.T, exc qrm.Executable) {
	t.Helper()

	_, err := table.Listing.DELETE().WHERE(table.Listing.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete listings data", err)
	}

	_, err = table.Source.DELETE().WHERE(table.Source.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete sources data", err)
	}
}
