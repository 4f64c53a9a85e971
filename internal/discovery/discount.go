package discovery

import "time"

// candidate is the lowest-priced qualifying offer for one product, with its
// discount against the reference price at full precision.
type candidate struct {
	product    *Product
	offer      *Offer
	discount   float64 // percentage, unrounded; negative when priced above mean
	refPrice   float64
	refSamples int
}

// referencePrice returns the arithmetic mean of the valid offer prices in the
// slice, and the sample count. Invalid offers contribute nothing.
func referencePrice(offers []*Offer, today time.Time) (float64, int) {
	sum := 0.0
	n := 0
	for _, o := range offers {
		if !offerValid(o, today) {
			continue
		}
		sum += o.Price
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// discountPercent computes the relative saving of the candidate price against
// the reference price. A non-positive reference yields 0, never an error.
func discountPercent(ref, cand float64) float64 {
	if ref <= 0 {
		return 0
	}
	return (ref - cand) / ref * 100
}

// pickCandidates groups the filtered offers by product and selects, per
// product, the minimum-priced offer (ties broken by the smaller store id).
// The reference price comes from either the product's system-wide valid
// offers or the filtered subset, per the configured scope.
func pickCandidates(snap *Snapshot, filtered []*Offer, today time.Time, scope ReferenceScope) []candidate {
	byProduct := make(map[int64][]*Offer)
	for _, o := range filtered {
		byProduct[o.ProductID] = append(byProduct[o.ProductID], o)
	}

	out := make([]candidate, 0, len(byProduct))
	for productID, offers := range byProduct {
		best := offers[0]
		for _, o := range offers[1:] {
			if o.Price < best.Price || (o.Price == best.Price && o.StoreID < best.StoreID) {
				best = o
			}
		}

		refSet := offers
		if scope == ReferenceGlobal {
			refSet = snap.OffersByProduct(productID)
		}
		ref, n := referencePrice(refSet, today)

		out = append(out, candidate{
			product:    snap.ProductByID(productID),
			offer:      best,
			discount:   discountPercent(ref, best.Price),
			refPrice:   ref,
			refSamples: n,
		})
	}
	return out
}
