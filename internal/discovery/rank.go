package discovery

import "sort"

// rankCandidates orders candidates by discount percentage descending, then by
// product id ascending. The secondary key makes the ordering a total order, so
// ranking is stable and reproducible even though discount ties are common.
func rankCandidates(cands []candidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.discount != b.discount {
			return a.discount > b.discount
		}
		return a.product.ID < b.product.ID
	})
}

// pageOf slices the 1-based page of the given size out of the ranked list.
// Pages beyond the list yield an empty slice, never an error. Concatenating
// pages 1..ceil(N/limit) reproduces the full list with no gaps or overlaps.
func pageOf(cands []candidate, page, limit int) []candidate {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(cands) {
		return nil
	}
	end := start + limit
	if end > len(cands) {
		end = len(cands)
	}
	return cands[start:end]
}
