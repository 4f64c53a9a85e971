// Package repository holds the Postgres access layer: the catalog loader
// feeding the snapshot cache and the user store backing authentication.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qtota/offer-service/internal/discovery"
)

// CatalogRepository loads full catalog snapshots for the snapshot cache.
type CatalogRepository struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewCatalogRepository creates a catalog repository.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: log.With().Str("component", "catalog_repository").Logger(),
	}
}

// Load reads the whole catalog in a single read-only transaction so the
// snapshot is internally consistent.
func (r *CatalogRepository) Load(ctx context.Context) (*discovery.Snapshot, error) {
	start := time.Now()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stores, err := loadStores(ctx, tx)
	if err != nil {
		return nil, err
	}
	branches, err := loadBranches(ctx, tx)
	if err != nil {
		return nil, err
	}
	categories, err := loadCategories(ctx, tx)
	if err != nil {
		return nil, err
	}
	products, err := loadProducts(ctx, tx)
	if err != nil {
		return nil, err
	}
	offers, err := loadOffers(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	snap, err := discovery.NewSnapshot(stores, branches, categories, products, offers)
	if err != nil {
		return nil, fmt.Errorf("building snapshot: %w", err)
	}

	r.logger.Debug().
		Int("stores", len(stores)).
		Int("branches", len(branches)).
		Int("products", len(products)).
		Int("offers", len(offers)).
		Dur("duration", time.Since(start)).
		Msg("Loaded catalog from database")

	return snap, nil
}

func loadStores(ctx context.Context, tx pgx.Tx) ([]*discovery.Store, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, COALESCE(logo, '') FROM stores`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var out []*discovery.Store
	for rows.Next() {
		s := &discovery.Store{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Logo); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func loadBranches(ctx context.Context, tx pgx.Tx) ([]*discovery.Branch, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, store_id, description, latitude, longitude
		FROM store_branches
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer rows.Close()

	var out []*discovery.Branch
	for rows.Next() {
		b := &discovery.Branch{}
		if err := rows.Scan(&b.ID, &b.StoreID, &b.Description, &b.Latitude, &b.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func loadCategories(ctx context.Context, tx pgx.Tx) ([]*discovery.Category, error) {
	rows, err := tx.Query(ctx, `SELECT id, name, COALESCE(url_icon, '') FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []*discovery.Category
	for rows.Next() {
		c := &discovery.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.URLIcon); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadProducts(ctx context.Context, tx pgx.Tx) ([]*discovery.Product, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, description, measure, measure_type, origin,
		       shelf_life_days, COALESCE(url_image, ''), COALESCE(category_id, 0)
		FROM products
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []*discovery.Product
	for rows.Next() {
		p := &discovery.Product{}
		var measureType string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Measure, &measureType,
			&p.Origin, &p.ShelfLifeDays, &p.URLImage, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.MeasureType = discovery.MeasureType(measureType)
		out = append(out, p)
	}
	return out, rows.Err()
}

func loadOffers(ctx context.Context, tx pgx.Tx) ([]*discovery.Offer, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, product_id, store_id, price, start_date, expiration_date
		FROM offers
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var out []*discovery.Offer
	for rows.Next() {
		o := &discovery.Offer{}
		if err := rows.Scan(&o.ID, &o.ProductID, &o.StoreID, &o.Price,
			&o.StartDate, &o.ExpirationDate); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
