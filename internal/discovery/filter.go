package discovery

import (
	"time"

	"github.com/qtota/offer-service/internal/textnorm"
)

// offerValid reports whether an offer is usable for discovery on the given
// reference date: positive price and not yet expired. Offers with a start
// date in the future are not yet active.
func offerValid(o *Offer, today time.Time) bool {
	if o.Price <= 0 {
		return false
	}
	if !o.StartDate.IsZero() && dateOnly(o.StartDate).After(today) {
		return false
	}
	return !dateOnly(o.ExpirationDate).Before(today)
}

// filterOffers selects the offers that pass every active predicate: the
// offer's store must be in the qualifying set, the offer must be valid on
// the reference date, and the product must match the optional text query and
// category filter. All predicates AND together. An empty qualifying set
// short-circuits to an empty result.
func filterOffers(snap *Snapshot, qualifying map[int64]NearestBranch, today time.Time, query string, categoryID int64) []*Offer {
	if len(qualifying) == 0 {
		return nil
	}

	var out []*Offer
	for _, o := range snap.Offers() {
		if _, ok := qualifying[o.StoreID]; !ok {
			continue
		}
		if !offerValid(o, today) {
			continue
		}
		p := snap.ProductByID(o.ProductID)
		if categoryID > 0 && p.CategoryID != categoryID {
			continue
		}
		if query != "" && !textnorm.ContainsFold(p.Name, query) {
			continue
		}
		out = append(out, o)
	}
	return out
}
