package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferencePriceMeanOfValidOffers(t *testing.T) {
	offers := []*Offer{
		offerOn(1, 100, 1, 8),
		offerOn(2, 100, 2, 10),
		{ID: 3, ProductID: 100, StoreID: 3, Price: 100, // expired, ignored
			StartDate: day(2025, time.May, 1), ExpirationDate: day(2025, time.May, 31)},
	}
	ref, n := referencePrice(offers, testToday)
	assert.Equal(t, 9.0, ref)
	assert.Equal(t, 2, n)
}

func TestReferencePriceNoValidOffers(t *testing.T) {
	ref, n := referencePrice(nil, testToday)
	assert.Equal(t, 0.0, ref)
	assert.Equal(t, 0, n)
}

func TestDiscountPercent(t *testing.T) {
	assert.InDelta(t, 11.111, discountPercent(9, 8), 0.001)
	assert.Equal(t, 0.0, discountPercent(10, 10))
	assert.Equal(t, 0.0, discountPercent(0, 5))  // degenerate reference
	assert.Equal(t, 0.0, discountPercent(-1, 5)) // never a division fault
	assert.Less(t, discountPercent(9, 10), 0.0)  // above the mean is legal
}

func discountFixture(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(
		[]*Store{{ID: 1}, {ID: 2}, {ID: 3}},
		[]*Branch{
			{ID: 10, StoreID: 1, Latitude: 0, Longitude: 0.01},
			{ID: 20, StoreID: 2, Latitude: 0, Longitude: 0.02},
			{ID: 30, StoreID: 3, Latitude: 0, Longitude: 0.9}, // far away
		},
		nil,
		[]*Product{{ID: 100, Name: "Arroz"}},
		[]*Offer{
			offerOn(1, 100, 1, 8),
			offerOn(2, 100, 2, 10),
			offerOn(3, 100, 3, 18), // only in the global baseline
		},
	)
	require.NoError(t, err)
	return snap
}

func TestPickCandidatesLowestPriceWins(t *testing.T) {
	snap := discountFixture(t)
	nearby := nearestBranches(snap, Location{0, 0}, 10000, 0)
	filtered := filterOffers(snap, nearby, testToday, "", 0)

	cands := pickCandidates(snap, filtered, testToday, ReferenceNearby)
	require.Len(t, cands, 1)
	assert.Equal(t, int64(1), cands[0].offer.ID)
	assert.Equal(t, 9.0, cands[0].refPrice) // (8+10)/2, far offer excluded
	assert.InDelta(t, 11.111, cands[0].discount, 0.001)
}

func TestPickCandidatesGlobalReferenceScope(t *testing.T) {
	snap := discountFixture(t)
	nearby := nearestBranches(snap, Location{0, 0}, 10000, 0)
	filtered := filterOffers(snap, nearby, testToday, "", 0)

	cands := pickCandidates(snap, filtered, testToday, ReferenceGlobal)
	require.Len(t, cands, 1)
	// Global baseline includes the distant store: (8+10+18)/3 = 12.
	assert.Equal(t, 12.0, cands[0].refPrice)
	assert.Equal(t, 3, cands[0].refSamples)
	assert.InDelta(t, 33.333, cands[0].discount, 0.001)
	// Candidate stays local: lowest price within the nearby set.
	assert.Equal(t, int64(1), cands[0].offer.ID)
}

func TestPickCandidatesPriceTieBreaksOnStoreID(t *testing.T) {
	snap, err := NewSnapshot(
		[]*Store{{ID: 1}, {ID: 2}},
		[]*Branch{
			{ID: 10, StoreID: 1, Latitude: 0, Longitude: 0.01},
			{ID: 20, StoreID: 2, Latitude: 0, Longitude: 0.01},
		},
		nil,
		[]*Product{{ID: 100}},
		[]*Offer{
			offerOn(2, 100, 2, 5),
			offerOn(1, 100, 1, 5),
		},
	)
	require.NoError(t, err)

	nearby := nearestBranches(snap, Location{0, 0}, 10000, 0)
	filtered := filterOffers(snap, nearby, testToday, "", 0)
	cands := pickCandidates(snap, filtered, testToday, ReferenceGlobal)

	require.Len(t, cands, 1)
	assert.Equal(t, int64(1), cands[0].offer.StoreID)
}

func TestPickCandidatesZeroDiscountWhenPricesEqual(t *testing.T) {
	snap, err := NewSnapshot(
		[]*Store{{ID: 1}},
		[]*Branch{{ID: 10, StoreID: 1, Latitude: 0, Longitude: 0.01}},
		nil,
		[]*Product{{ID: 100}},
		[]*Offer{offerOn(1, 100, 1, 7)},
	)
	require.NoError(t, err)

	nearby := nearestBranches(snap, Location{0, 0}, 10000, 0)
	filtered := filterOffers(snap, nearby, testToday, "", 0)
	cands := pickCandidates(snap, filtered, testToday, ReferenceGlobal)

	require.Len(t, cands, 1)
	assert.Equal(t, 0.0, cands[0].discount)
}
