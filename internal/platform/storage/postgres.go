package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage/gen/postgres/public/table"
	"github.com/samber/lo"

	pgmodels "github.com/MichalMitros/coral-price-aggregator/internal/platform/storage/gen/postgres/public/model"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/lib/pq"
)

// integrityViolation is Postgres error class of constraint violations.
const integrityViolation = "23"

//go:embed schema.sql
var schema string

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Postgres is storage for listings and sources.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns new Postgres.
func NewPostgres(db *sql.DB) Postgres {
	return Postgres{
		db: db,
	}
}

// Migrate creates missing tables and indexes.
func (p Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("can't apply schema: %w", err)
	}

	return nil
}

// Ping checks database connection.
func (p Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// DeleteAllListings removes every listing. Returns number of deleted rows.
func (p Postgres) DeleteAllListings(ctx context.Context) (int64, error) {
	result, err := table.Listing.DELETE().
		WHERE(table.Listing.ID.IS_NOT_NULL()).
		ExecContext(ctx, p.db)
	if err != nil {
		return 0, fmt.Errorf("can't delete listings: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("can't count deleted listings: %w", err)
	}

	return deleted, nil
}

// UpsertListing inserts listing or overwrites stored one with the same shop id and url.
// Listing's ID and timestamps are set from stored row. Constraint violations return platform.ErrInvalidListing.
func (p Postgres) UpsertListing(ctx context.Context, listing *models.Listing) error {
	columnList := table.Listing.AllColumns.Except(table.Listing.ID, table.Listing.CreatedAt, table.Listing.UpdatedAt)

	excludedExpressions := make([]pg.Expression, 0, len(columnList)) // converting to expression
	for _, col := range table.Listing.EXCLUDED.AllColumns.Except(
		table.Listing.ID,
		table.Listing.CreatedAt,
		table.Listing.UpdatedAt,
	) {
		excludedExpressions = append(excludedExpressions, col)
	}

	dbListing := ToDBListing(listing)
	err := table.Listing.INSERT(columnList).
		MODEL(dbListing).
		ON_CONFLICT(table.Listing.ShopID, table.Listing.URL).
		DO_UPDATE(
			pg.SET(
				columnList.SET(pg.ROW(excludedExpressions...)),
				table.Listing.UpdatedAt.SET(pg.NOW()),
			),
		).
		RETURNING(table.Listing.ID, table.Listing.CreatedAt, table.Listing.UpdatedAt).
		QueryContext(ctx, p.db, dbListing)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Class() == integrityViolation {
			return fmt.Errorf("%w: %s", platform.ErrInvalidListing, pqErr.Message)
		}
		return fmt.Errorf("can't upsert listing into database: %w", err)
	}

	listing.ID = int(dbListing.ID)
	listing.CreatedAt = dbListing.CreatedAt
	listing.UpdatedAt = dbListing.UpdatedAt

	return nil
}

// QueryListings returns listings matching filter, newest first.
func (p Postgres) QueryListings(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	filter = filter.Normalized()

	condition := pg.Bool(true)
	if filter.Category != "" {
		condition = condition.AND(table.Listing.Category.EQ(pg.String(filter.Category)))
	}
	if filter.Search != "" {
		pattern := pg.String("%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%")
		condition = condition.AND(pg.OR(
			pg.LOWER(table.Listing.Title).LIKE(pattern),
			pg.LOWER(table.Listing.Variant).LIKE(pattern),
		))
	}

	dbListings := []pgmodels.Listing{}
	err := table.Listing.SELECT(table.Listing.AllColumns).
		WHERE(condition).
		ORDER_BY(table.Listing.CreatedAt.DESC(), table.Listing.ID.DESC()).
		LIMIT(int64(filter.Limit)).
		QueryContext(ctx, p.db, &dbListings)
	if err != nil {
		return nil, fmt.Errorf("can't query listings: %w", err)
	}

	return lo.Map(dbListings, func(_ pgmodels.Listing, ix int) models.Listing {
		return FromDBListing(&dbListings[ix])
	}), nil
}

// ActiveSources returns sources marked as active ordered by id.
func (p Postgres) ActiveSources(ctx context.Context) ([]models.Source, error) {
	dbSources := []pgmodels.Source{}
	err := table.Source.SELECT(table.Source.AllColumns).
		WHERE(table.Source.IsActive.IS_TRUE()).
		ORDER_BY(table.Source.ID.ASC()).
		QueryContext(ctx, p.db, &dbSources)
	if err != nil {
		return nil, fmt.Errorf("can't get active sources: %w", err)
	}

	return lo.Map(dbSources, func(_ pgmodels.Source, ix int) models.Source {
		return FromDBSource(&dbSources[ix])
	}), nil
}

// SyncSources upserts sources by shop id and url and deactivates every source not present in sources.
func (p Postgres) SyncSources(ctx context.Context, sources []models.Source) error {
	return runInTransaction(ctx, p.db, func(tx *sql.Tx) error {
		_, err := table.Source.UPDATE().
			SET(table.Source.IsActive.SET(pg.Bool(false))).
			WHERE(table.Source.ID.IS_NOT_NULL()).
			ExecContext(ctx, tx)
		if err != nil {
			return fmt.Errorf("can't deactivate sources: %w", err)
		}

		if len(sources) == 0 {
			return nil
		}

		return upsertSources(ctx, tx, sources)
	})
}

func upsertSources(ctx context.Context, db qrm.DB, sources []models.Source) error {
	columnList := pg.ColumnList{table.Source.URL, table.Source.ShopID, table.Source.Category, table.Source.IsActive}

	dbSources := lo.Map(sources, func(_ models.Source, ix int) pgmodels.Source {
		return pgmodels.Source{
			URL:      sources[ix].URL,
			ShopID:   sources[ix].ShopID,
			Category: sources[ix].Category,
			IsActive: sources[ix].IsActive,
		}
	})

	_, err := table.Source.INSERT(columnList).
		MODELS(dbSources).
		ON_CONFLICT(table.Source.ShopID, table.Source.URL).
		DO_UPDATE(
			pg.SET(
				table.Source.Category.SET(table.Source.EXCLUDED.Category),
				table.Source.IsActive.SET(table.Source.EXCLUDED.IsActive),
			),
		).
		ExecContext(ctx, db)
	if err != nil {
		return fmt.Errorf("can't upsert sources into database: %w", err)
	}

	return nil
}

func runInTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var (
		tx  *sql.Tx
		err error
	)

	if tx, err = db.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("can't rollback transaction: %w (rollback reason: %w)", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit transaction: %w", err)
	}

	return nil
}
