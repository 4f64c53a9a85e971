package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/qtota/offer-service/internal/database"
)

// setupTestDB starts a PostgreSQL container, applies the schema and returns
// the pool with a cleanup function.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	config, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	require.NoError(t, err, "Failed to create connection pool")

	require.NoError(t, database.Migrate(ctx, pool), "Failed to apply schema")

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup
}

func seedCatalog(t *testing.T, ctx context.Context, db *pgxpool.Pool) {
	t.Helper()

	_, err := db.Exec(ctx, `
		INSERT INTO stores (id, name, logo) VALUES
			(1, 'Mercado A', 'https://cdn.example/a.png'),
			(2, 'Mercado B', NULL)
	`)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO store_branches (id, store_id, description, latitude, longitude) VALUES
			(10, 1, 'Centro', 0, 0.01),
			(20, 2, 'Bairro Alto', 0, 0.02)
	`)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO categories (id, name) VALUES (1, 'Mercearia')
	`)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO products (id, name, description, measure, measure_type, origin, shelf_life_days, category_id)
		VALUES (100, 'Arroz Branco', 'Arroz tipo 1', 1000, 'WEIGHT', 'BR', 365, 1)
	`)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO offers (id, product_id, store_id, price, start_date, expiration_date) VALUES
			(1, 100, 1, 8.00, '2025-06-01', '2025-06-30'),
			(2, 100, 2, 10.00, '2025-06-01', '2025-06-30')
	`)
	require.NoError(t, err)
}

func TestCatalogLoad(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, ctx, db)

	snap, err := NewCatalogRepository(db).Load(ctx)
	require.NoError(t, err)

	stores, branches, categories, products, offers := snap.Counts()
	assert.Equal(t, 2, stores)
	assert.Equal(t, 2, branches)
	assert.Equal(t, 1, categories)
	assert.Equal(t, 1, products)
	assert.Equal(t, 2, offers)

	p := snap.ProductByID(100)
	require.NotNil(t, p)
	assert.Equal(t, "Arroz Branco", p.Name)
	assert.Equal(t, int64(1), p.CategoryID)

	require.Len(t, snap.OffersByProduct(100), 2)
	assert.Equal(t, 8.0, snap.OffersByProduct(100)[0].Price)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// Schema was applied once in setup; a second run must not fail.
	require.NoError(t, database.Migrate(ctx, db))
}

func TestOfferOverlapRejected(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, ctx, db)

	// Overlaps offer 1 (product 100, store 1, June 2025).
	_, err := db.Exec(ctx, `
		INSERT INTO offers (product_id, store_id, price, start_date, expiration_date)
		VALUES (100, 1, 7.50, '2025-06-15', '2025-07-15')
	`)
	assert.Error(t, err)

	// A disjoint period for the same product and store is fine.
	_, err = db.Exec(ctx, `
		INSERT INTO offers (product_id, store_id, price, start_date, expiration_date)
		VALUES (100, 1, 7.50, '2025-07-01', '2025-07-31')
	`)
	assert.NoError(t, err)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(db)

	u, err := repo.Create(ctx, "Ana", "ana@example.com", "hashed")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = repo.Create(ctx, "Other", "ana@example.com", "hashed2")
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ana", got.Name)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", byID.Email)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
