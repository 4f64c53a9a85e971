package discovery

import "sort"

// NearestBranch pairs a store with its closest branch to the query point.
type NearestBranch struct {
	Store          *Store
	Branch         *Branch
	DistanceMeters float64
}

// nearestBranches resolves, for every store with at least one branch within
// maxMeters, the branch minimizing distance to loc. Equidistant branches of
// the same store tie-break on the smaller branch id so results are
// reproducible. A storeID > 0 restricts resolution to that store.
func nearestBranches(snap *Snapshot, loc Location, maxMeters float64, storeID int64) map[int64]NearestBranch {
	result := make(map[int64]NearestBranch)

	resolve := func(id int64) {
		branches := snap.BranchesByStore(id)
		if len(branches) == 0 {
			return
		}
		var best *Branch
		var bestDist float64
		for _, b := range branches {
			d := HaversineMeters(loc.Latitude, loc.Longitude, b.Latitude, b.Longitude)
			if best == nil || d < bestDist || (d == bestDist && b.ID < best.ID) {
				best = b
				bestDist = d
			}
		}
		if bestDist <= maxMeters {
			result[id] = NearestBranch{Store: snap.StoreByID(id), Branch: best, DistanceMeters: bestDist}
		}
	}

	if storeID > 0 {
		resolve(storeID)
		return result
	}
	for _, id := range snap.StoreIDs() {
		resolve(id)
	}
	return result
}

// sortByDistance orders nearest-branch records by ascending distance, with
// the store id as deterministic tie-breaker.
func sortByDistance(records []NearestBranch) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		return a.Store.ID < b.Store.ID
	})
}
