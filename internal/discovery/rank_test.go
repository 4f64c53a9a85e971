package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candFor(productID int64, discount float64) candidate {
	return candidate{
		product:  &Product{ID: productID},
		offer:    &Offer{ID: productID * 10, ProductID: productID, StoreID: 1, Price: 1},
		discount: discount,
	}
}

func TestRankCandidatesTotalOrder(t *testing.T) {
	cands := []candidate{
		candFor(5, 10),
		candFor(2, 25),
		candFor(3, 10), // ties with product 5 on discount
		candFor(1, 10),
		candFor(4, -5),
	}
	rankCandidates(cands)

	got := make([]int64, len(cands))
	for i, c := range cands {
		got[i] = c.product.ID
	}
	// Discount descending; equal discounts ordered by product id ascending;
	// negative discount sorts last.
	assert.Equal(t, []int64{2, 1, 3, 5, 4}, got)
}

func TestRankCandidatesReproducible(t *testing.T) {
	build := func() []candidate {
		return []candidate{
			candFor(3, 7), candFor(1, 7), candFor(2, 7),
		}
	}
	a := build()
	b := build()
	rankCandidates(a)
	rankCandidates(b)
	for i := range a {
		assert.Equal(t, a[i].product.ID, b[i].product.ID)
	}
}

func TestPageOfBounds(t *testing.T) {
	cands := []candidate{candFor(1, 3), candFor(2, 2), candFor(3, 1)}

	assert.Len(t, pageOf(cands, 1, 2), 2)
	assert.Len(t, pageOf(cands, 2, 2), 1)
	assert.Empty(t, pageOf(cands, 3, 2))
	assert.Empty(t, pageOf(cands, 100, 2))
	assert.Len(t, pageOf(cands, 0, 2), 2) // page 0 treated as first page
}

func TestPaginationCompleteness(t *testing.T) {
	// Union of pages 1..ceil(N/L) reproduces the sorted list exactly once.
	var cands []candidate
	for i := 1; i <= 23; i++ {
		cands = append(cands, candFor(int64(i), float64(i%5)))
	}
	rankCandidates(cands)

	for _, limit := range []int{1, 4, 5, 23, 50} {
		var rebuilt []int64
		page := 1
		for {
			p := pageOf(cands, page, limit)
			if len(p) == 0 {
				break
			}
			for _, c := range p {
				rebuilt = append(rebuilt, c.product.ID)
			}
			page++
		}

		require.Len(t, rebuilt, len(cands), "limit %d", limit)
		seen := make(map[int64]bool)
		for i, id := range rebuilt {
			assert.Equal(t, cands[i].product.ID, id)
			assert.False(t, seen[id], "duplicate product %d at limit %d", id, limit)
			seen[id] = true
		}
	}
}
