package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource serves a fixed snapshot; the engine tests use it in place of the
// database-backed cache.
type stubSource struct {
	snap *Snapshot
}

func (s *stubSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.snap, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testToday is the fixed reference date used across the engine tests.
var testToday = day(2025, time.June, 15)

func offerOn(id, productID, storeID int64, price float64) *Offer {
	return &Offer{
		ID:             id,
		ProductID:      productID,
		StoreID:        storeID,
		Price:          price,
		StartDate:      day(2025, time.June, 1),
		ExpirationDate: day(2025, time.June, 30),
	}
}

func TestNewSnapshotBuildsIndexes(t *testing.T) {
	snap, err := NewSnapshot(
		[]*Store{{ID: 1, Name: "Mercado A"}, {ID: 2, Name: "Mercado B"}},
		[]*Branch{
			{ID: 10, StoreID: 1, Latitude: 0, Longitude: 0.01},
			{ID: 11, StoreID: 1, Latitude: 0, Longitude: 0.05},
			{ID: 20, StoreID: 2, Latitude: 0, Longitude: 0.02},
		},
		[]*Category{{ID: 1, Name: "Hortifruti"}},
		[]*Product{{ID: 100, Name: "Arroz", CategoryID: 1}},
		[]*Offer{offerOn(1000, 100, 1, 8), offerOn(1001, 100, 2, 10)},
	)
	require.NoError(t, err)

	assert.Len(t, snap.BranchesByStore(1), 2)
	assert.Len(t, snap.BranchesByStore(2), 1)
	assert.Len(t, snap.OffersByProduct(100), 2)
	assert.NotNil(t, snap.StoreByID(2))
	assert.Nil(t, snap.StoreByID(99))

	stores, branches, categories, products, offers := snap.Counts()
	assert.Equal(t, 2, stores)
	assert.Equal(t, 3, branches)
	assert.Equal(t, 1, categories)
	assert.Equal(t, 1, products)
	assert.Equal(t, 2, offers)
}

func TestNewSnapshotRejectsDanglingOfferProduct(t *testing.T) {
	_, err := NewSnapshot(
		[]*Store{{ID: 1}},
		nil, nil, nil,
		[]*Offer{offerOn(1, 999, 1, 5)},
	)
	require.Error(t, err)
	var ierr *IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "offer", ierr.Entity)
	assert.Equal(t, "product", ierr.Ref)
	assert.Equal(t, int64(999), ierr.RefID)
}

func TestNewSnapshotRejectsDanglingBranchStore(t *testing.T) {
	_, err := NewSnapshot(
		nil,
		[]*Branch{{ID: 7, StoreID: 3}},
		nil, nil, nil,
	)
	require.Error(t, err)
	var ierr *IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "branch", ierr.Entity)
}
