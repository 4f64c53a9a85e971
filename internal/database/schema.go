package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate applies the schema. Every statement is idempotent so the function
// can run on every startup.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS stores (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		logo TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS store_branches (
		id BIGSERIAL PRIMARY KEY,
		store_id BIGINT NOT NULL REFERENCES stores(id) ON UPDATE CASCADE ON DELETE CASCADE,
		description TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		url_icon TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		measure INTEGER NOT NULL DEFAULT 0,
		measure_type TEXT NOT NULL DEFAULT 'WEIGHT'
			CHECK (measure_type IN ('WEIGHT', 'VOLUME', 'LENGTH')),
		origin TEXT NOT NULL DEFAULT '',
		shelf_life_days INTEGER NOT NULL DEFAULT 0,
		url_image TEXT,
		category_id BIGINT REFERENCES categories(id) ON UPDATE CASCADE ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS offers (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id) ON UPDATE CASCADE ON DELETE CASCADE,
		store_id BIGINT NOT NULL REFERENCES stores(id) ON UPDATE CASCADE ON DELETE CASCADE,
		price DOUBLE PRECISION NOT NULL CHECK (price > 0),
		start_date DATE NOT NULL,
		expiration_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (expiration_date >= start_date)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS store_branches_store_id_idx ON store_branches(store_id)`,
	`CREATE INDEX IF NOT EXISTS products_category_id_idx ON products(category_id)`,
	`CREATE INDEX IF NOT EXISTS offers_product_id_idx ON offers(product_id)`,
	`CREATE INDEX IF NOT EXISTS offers_store_id_idx ON offers(store_id)`,
	`CREATE INDEX IF NOT EXISTS offers_expiration_idx ON offers(expiration_date)`,

	// Two offers for the same product and store must not have overlapping
	// validity periods.
	`CREATE OR REPLACE FUNCTION offer_no_overlap() RETURNS trigger AS $$
	BEGIN
		IF EXISTS (
			SELECT 1
			FROM offers o
			WHERE o.product_id = NEW.product_id
			  AND o.store_id = NEW.store_id
			  AND o.id <> NEW.id
			  AND o.start_date <= NEW.expiration_date
			  AND o.expiration_date >= NEW.start_date
		) THEN
			RAISE EXCEPTION 'offer period overlaps an existing offer for product % at store %',
				NEW.product_id, NEW.store_id;
		END IF;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS trg_offer_no_overlap ON offers`,

	`CREATE TRIGGER trg_offer_no_overlap
		BEFORE INSERT OR UPDATE ON offers
		FOR EACH ROW EXECUTE FUNCTION offer_no_overlap()`,
}
