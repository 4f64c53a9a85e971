package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(
		[]*Store{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}},
		[]*Branch{
			{ID: 10, StoreID: 1, Latitude: 0, Longitude: 0.01},
			{ID: 20, StoreID: 2, Latitude: 0, Longitude: 0.02},
		},
		[]*Category{{ID: 1, Name: "Mercearia"}, {ID: 2, Name: "Hortifruti"}},
		[]*Product{
			{ID: 100, Name: "Açúcar Cristal", CategoryID: 1},
			{ID: 101, Name: "Feijão Preto", CategoryID: 1},
			{ID: 102, Name: "Banana Prata", CategoryID: 2},
		},
		[]*Offer{
			offerOn(1, 100, 1, 4.5),
			offerOn(2, 101, 1, 7.9),
			offerOn(3, 102, 2, 3.2),
			{ // expired last week
				ID: 4, ProductID: 100, StoreID: 2, Price: 4.0,
				StartDate: day(2025, time.May, 1), ExpirationDate: day(2025, time.June, 8),
			},
			{ // starts next month
				ID: 5, ProductID: 101, StoreID: 2, Price: 6.0,
				StartDate: day(2025, time.July, 1), ExpirationDate: day(2025, time.July, 31),
			},
			{ // non-positive price is unusable
				ID: 6, ProductID: 102, StoreID: 1, Price: 0,
				StartDate: day(2025, time.June, 1), ExpirationDate: day(2025, time.June, 30),
			},
		},
	)
	require.NoError(t, err)
	return snap
}

func offerIDs(offers []*Offer) []int64 {
	ids := make([]int64, 0, len(offers))
	for _, o := range offers {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestFilterOffersValidityAndQualifyingSet(t *testing.T) {
	snap := filterFixture(t)
	qualifying := nearestBranches(snap, Location{0, 0}, 10000, 0)

	got := filterOffers(snap, qualifying, testToday, "", 0)
	assert.ElementsMatch(t, []int64{1, 2, 3}, offerIDs(got))

	for _, o := range got {
		assert.False(t, o.ExpirationDate.Before(testToday))
		assert.Greater(t, o.Price, 0.0)
	}
}

func TestFilterOffersEmptyQualifyingShortCircuits(t *testing.T) {
	snap := filterFixture(t)
	got := filterOffers(snap, nil, testToday, "", 0)
	assert.Empty(t, got)
}

func TestFilterOffersTextQueryAccentInsensitive(t *testing.T) {
	snap := filterFixture(t)
	qualifying := nearestBranches(snap, Location{0, 0}, 10000, 0)

	got := filterOffers(snap, qualifying, testToday, "acucar", 0)
	assert.Equal(t, []int64{1}, offerIDs(got))

	got = filterOffers(snap, qualifying, testToday, "FEIJÃO", 0)
	assert.Equal(t, []int64{2}, offerIDs(got))

	got = filterOffers(snap, qualifying, testToday, "nonexistent", 0)
	assert.Empty(t, got)
}

func TestFilterOffersCategory(t *testing.T) {
	snap := filterFixture(t)
	qualifying := nearestBranches(snap, Location{0, 0}, 10000, 0)

	got := filterOffers(snap, qualifying, testToday, "", 2)
	assert.Equal(t, []int64{3}, offerIDs(got))
}

func TestFilterOffersPredicatesAreANDed(t *testing.T) {
	snap := filterFixture(t)
	qualifying := nearestBranches(snap, Location{0, 0}, 10000, 0)

	// Query matches product 102 but category 1 does not.
	got := filterOffers(snap, qualifying, testToday, "banana", 1)
	assert.Empty(t, got)
}

func TestFilterOffersStoreRestriction(t *testing.T) {
	snap := filterFixture(t)
	// Store restriction happens at branch resolution: only store 2 qualifies.
	qualifying := nearestBranches(snap, Location{0, 0}, 10000, 2)

	got := filterOffers(snap, qualifying, testToday, "", 0)
	assert.Equal(t, []int64{3}, offerIDs(got))
}
