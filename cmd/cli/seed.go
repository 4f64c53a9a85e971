package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/qtota/offer-service/internal/database"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog from a JSON file",
	Long: `Loads stores, branches, categories, products and offers from a JSON
file into the database. Existing rows with the same id are updated.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "path to the seed JSON file (required)")
	seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}

// seedData mirrors the JSON seed file layout.
type seedData struct {
	Stores []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Logo string `json:"logo"`
	} `json:"stores"`
	Branches []struct {
		ID          int64   `json:"id"`
		StoreID     int64   `json:"store_id"`
		Description string  `json:"description"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	} `json:"branches"`
	Categories []struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		URLIcon string `json:"url_icon"`
	} `json:"categories"`
	Products []struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		Description   string `json:"description"`
		Measure       int    `json:"measure"`
		MeasureType   string `json:"measure_type"`
		Origin        string `json:"origin"`
		ShelfLifeDays int    `json:"shelf_life_days"`
		URLImage      string `json:"url_image"`
		CategoryID    int64  `json:"category_id"`
	} `json:"products"`
	Offers []struct {
		ID             int64   `json:"id"`
		ProductID      int64   `json:"product_id"`
		StoreID        int64   `json:"store_id"`
		Price          float64 `json:"price"`
		StartDate      string  `json:"start_date"`
		ExpirationDate string  `json:"expiration_date"`
	} `json:"offers"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var data seedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	ctx := context.Background()
	tx, err := database.Pool().BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, s := range data.Stores {
		if _, err := tx.Exec(ctx, `
			INSERT INTO stores (id, name, logo) VALUES ($1, $2, NULLIF($3, ''))
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, logo = EXCLUDED.logo
		`, s.ID, s.Name, s.Logo); err != nil {
			return fmt.Errorf("seeding store %d: %w", s.ID, err)
		}
	}

	for _, b := range data.Branches {
		if _, err := tx.Exec(ctx, `
			INSERT INTO store_branches (id, store_id, description, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				store_id = EXCLUDED.store_id, description = EXCLUDED.description,
				latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude
		`, b.ID, b.StoreID, b.Description, b.Latitude, b.Longitude); err != nil {
			return fmt.Errorf("seeding branch %d: %w", b.ID, err)
		}
	}

	for _, c := range data.Categories {
		if _, err := tx.Exec(ctx, `
			INSERT INTO categories (id, name, url_icon) VALUES ($1, $2, NULLIF($3, ''))
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, url_icon = EXCLUDED.url_icon
		`, c.ID, c.Name, c.URLIcon); err != nil {
			return fmt.Errorf("seeding category %d: %w", c.ID, err)
		}
	}

	for _, p := range data.Products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (id, name, description, measure, measure_type,
				origin, shelf_life_days, url_image, category_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, 0))
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, description = EXCLUDED.description,
				measure = EXCLUDED.measure, measure_type = EXCLUDED.measure_type,
				origin = EXCLUDED.origin, shelf_life_days = EXCLUDED.shelf_life_days,
				url_image = EXCLUDED.url_image, category_id = EXCLUDED.category_id
		`, p.ID, p.Name, p.Description, p.Measure, p.MeasureType,
			p.Origin, p.ShelfLifeDays, p.URLImage, p.CategoryID); err != nil {
			return fmt.Errorf("seeding product %d: %w", p.ID, err)
		}
	}

	for _, o := range data.Offers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO offers (id, product_id, store_id, price, start_date, expiration_date)
			VALUES ($1, $2, $3, $4, $5::date, $6::date)
			ON CONFLICT (id) DO UPDATE SET
				product_id = EXCLUDED.product_id, store_id = EXCLUDED.store_id,
				price = EXCLUDED.price, start_date = EXCLUDED.start_date,
				expiration_date = EXCLUDED.expiration_date
		`, o.ID, o.ProductID, o.StoreID, o.Price, o.StartDate, o.ExpirationDate); err != nil {
			return fmt.Errorf("seeding offer %d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	logger.Info().
		Int("stores", len(data.Stores)).
		Int("branches", len(data.Branches)).
		Int("categories", len(data.Categories)).
		Int("products", len(data.Products)).
		Int("offers", len(data.Offers)).
		Msg("Catalog seeded")
	return nil
}
