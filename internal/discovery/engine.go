// Package discovery implements the geo-ranked offer discovery engine: given a
// user coordinate and an immutable catalog snapshot it resolves the nearest
// branch per store, filters the currently valid offers inside a distance
// bound, computes per-product discount percentages against a reference price
// and returns a deterministically ordered, paginated result list.
//
// The engine is a pure synchronous computation. It holds no cross-request
// state, performs no I/O and never mutates the snapshot, so invocations may
// run concurrently on the same snapshot without locking.
package discovery

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Engine computes ranked deals and nearby-store listings over snapshots
// provided by a SnapshotSource.
type Engine struct {
	source  SnapshotSource
	config  *Config
	metrics *MetricsRecorder
	logger  zerolog.Logger
}

// NewEngine creates a discovery engine. A nil config selects the defaults.
func NewEngine(source SnapshotSource, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		source:  source,
		config:  config,
		metrics: NewMetricsRecorder(),
		logger:  log.With().Str("component", "discovery_engine").Logger(),
	}
}

// Deals returns one page of the ranked deal list: the best discount per
// distinct product among valid offers of stores within the distance bound.
func (e *Engine) Deals(ctx context.Context, req *DiscoverRequest) ([]Deal, error) {
	start := time.Now()
	defer func() { e.metrics.RecordDuration("deals", time.Since(start)) }()

	if err := req.Validate(e.config.MaxPageSize); err != nil {
		e.metrics.RecordError("deals")
		return nil, err
	}

	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		e.metrics.RecordError("deals")
		return nil, err
	}

	maxMeters := req.DistanceMeters
	if maxMeters == 0 {
		maxMeters = e.config.OfferDistanceMeters
	}
	today := req.today()

	nearest := nearestBranches(snap, req.Location, maxMeters, req.StoreID)
	e.metrics.RecordQualifyingStores(len(nearest))

	filtered := filterOffers(snap, nearest, today, req.Query, req.CategoryID)
	cands := pickCandidates(snap, filtered, today, e.config.ReferenceScope)
	rankCandidates(cands)
	e.metrics.RecordRankedDeals(len(cands))

	limit := req.Limit
	if limit == 0 {
		limit = e.config.DefaultPageSize
	}
	page := pageOf(cands, req.Page, limit)

	deals := make([]Deal, 0, len(page))
	for _, c := range page {
		deals = append(deals, e.buildDeal(c, nearest))
	}
	return deals, nil
}

func (e *Engine) buildDeal(c candidate, nearest map[int64]NearestBranch) Deal {
	nb := nearest[c.offer.StoreID]
	return Deal{
		ProductID:       c.product.ID,
		Name:            c.product.Name,
		URLImage:        c.product.URLImage,
		Price:           c.offer.Price,
		Percentage:      roundToInt(c.discount),
		OfferExpiration: c.offer.ExpirationDate,
		Store: StoreRef{
			ID:             nb.Store.ID,
			Name:           nb.Store.Name,
			Branch:         nb.Branch.Description,
			DistanceMeters: roundToInt(nb.DistanceMeters),
			Logo:           nb.Store.Logo,
		},
	}
}

// NearbyStores returns, for every store with a branch inside the bound, one
// record carrying the nearest branch, ordered by ascending distance.
func (e *Engine) NearbyStores(ctx context.Context, req *StoresRequest) ([]StoreListing, error) {
	start := time.Now()
	defer func() { e.metrics.RecordDuration("stores", time.Since(start)) }()

	if err := validateLocation(req.Location); err != nil {
		e.metrics.RecordError("stores")
		return nil, err
	}

	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		e.metrics.RecordError("stores")
		return nil, err
	}

	maxMeters := req.DistanceMeters
	if maxMeters == 0 {
		maxMeters = e.config.StoreDistanceMeters
	}

	nearest := nearestBranches(snap, req.Location, maxMeters, 0)
	records := make([]NearestBranch, 0, len(nearest))
	for _, nb := range nearest {
		records = append(records, nb)
	}
	sortByDistance(records)

	if len(records) > 0 {
		e.metrics.RecordNearestDistance(records[0].DistanceMeters)
	}
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	out := make([]StoreListing, 0, len(records))
	for _, nb := range records {
		out = append(out, StoreListing{
			ID:             nb.Store.ID,
			Name:           nb.Store.Name,
			Branch:         nb.Branch.Description,
			Latitude:       nb.Branch.Latitude,
			Longitude:      nb.Branch.Longitude,
			DistanceMeters: roundToInt(nb.DistanceMeters),
			Logo:           nb.Store.Logo,
		})
	}
	return out, nil
}

// NearbyBranches returns every branch inside the bound (not only the nearest
// per store), ordered by ascending distance with the branch id as tie-break.
// A StoreID restricts the listing to that store's branches.
func (e *Engine) NearbyBranches(ctx context.Context, req *BranchesRequest) ([]StoreListing, error) {
	start := time.Now()
	defer func() { e.metrics.RecordDuration("branches", time.Since(start)) }()

	if err := validateLocation(req.Location); err != nil {
		e.metrics.RecordError("branches")
		return nil, err
	}

	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		e.metrics.RecordError("branches")
		return nil, err
	}

	maxMeters := req.DistanceMeters
	if maxMeters == 0 {
		maxMeters = e.config.StoreDistanceMeters
	}

	type branchDist struct {
		store  *Store
		branch *Branch
		dist   float64
	}
	var records []branchDist
	for _, storeID := range snap.StoreIDs() {
		if req.StoreID > 0 && storeID != req.StoreID {
			continue
		}
		store := snap.StoreByID(storeID)
		for _, b := range snap.BranchesByStore(storeID) {
			d := HaversineMeters(req.Location.Latitude, req.Location.Longitude, b.Latitude, b.Longitude)
			if d <= maxMeters {
				records = append(records, branchDist{store: store, branch: b, dist: d})
			}
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].dist != records[j].dist {
			return records[i].dist < records[j].dist
		}
		return records[i].branch.ID < records[j].branch.ID
	})
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	out := make([]StoreListing, 0, len(records))
	for _, r := range records {
		out = append(out, StoreListing{
			ID:             r.store.ID,
			Name:           r.store.Name,
			Branch:         r.branch.Description,
			Latitude:       r.branch.Latitude,
			Longitude:      r.branch.Longitude,
			DistanceMeters: roundToInt(r.dist),
			Logo:           r.store.Logo,
		})
	}
	return out, nil
}

// ProductDetail returns a product with every valid offer within the offer
// distance bound, each carrying its store context, distance and discount
// against the product's reference price. Returns ErrNotFound for an unknown
// product id.
func (e *Engine) ProductDetail(ctx context.Context, productID int64, loc Location, today time.Time) (*ProductDetail, error) {
	start := time.Now()
	defer func() { e.metrics.RecordDuration("detail", time.Since(start)) }()

	if err := validateLocation(loc); err != nil {
		e.metrics.RecordError("detail")
		return nil, err
	}

	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		e.metrics.RecordError("detail")
		return nil, err
	}

	p := snap.ProductByID(productID)
	if p == nil {
		return nil, ErrNotFound
	}

	day := dateOnly(today)
	nearest := nearestBranches(snap, loc, e.config.OfferDistanceMeters, 0)
	ref, _ := referencePrice(snap.OffersByProduct(productID), day)

	var stores []ProductStoreOffer
	for _, o := range snap.OffersByProduct(productID) {
		if !offerValid(o, day) {
			continue
		}
		nb, ok := nearest[o.StoreID]
		if !ok {
			continue
		}
		stores = append(stores, ProductStoreOffer{
			StoreID:            nb.Store.ID,
			StoreName:          nb.Store.Name,
			Branch:             nb.Branch.Description,
			Price:              o.Price,
			DiscountPercentage: roundToInt(discountPercent(ref, o.Price)),
			OfferExpiration:    o.ExpirationDate,
			Logo:               nb.Store.Logo,
			DistanceMeters:     roundToInt(nb.DistanceMeters),
		})
	}
	sort.Slice(stores, func(i, j int) bool {
		if stores[i].Price != stores[j].Price {
			return stores[i].Price < stores[j].Price
		}
		return stores[i].StoreID < stores[j].StoreID
	})

	return &ProductDetail{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Measure:       p.Measure,
		MeasureType:   p.MeasureType,
		Origin:        p.Origin,
		ShelfLifeDays: p.ShelfLifeDays,
		URLImage:      p.URLImage,
		CategoryID:    p.CategoryID,
		Stores:        stores,
	}, nil
}

// Home builds the composite home-screen payload: the top ranked deals, the
// categories present in the nearby offer set and the closest stores.
func (e *Engine) Home(ctx context.Context, loc Location, today time.Time) (*HomeFeed, error) {
	start := time.Now()
	defer func() { e.metrics.RecordDuration("home", time.Since(start)) }()

	if err := validateLocation(loc); err != nil {
		e.metrics.RecordError("home")
		return nil, err
	}

	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		e.metrics.RecordError("home")
		return nil, err
	}

	day := dateOnly(today)
	nearest := nearestBranches(snap, loc, e.config.OfferDistanceMeters, 0)
	filtered := filterOffers(snap, nearest, day, "", 0)
	cands := pickCandidates(snap, filtered, day, e.config.ReferenceScope)
	rankCandidates(cands)

	top := pageOf(cands, 1, e.config.HomeProducts)
	deals := make([]Deal, 0, len(top))
	for _, c := range top {
		deals = append(deals, e.buildDeal(c, nearest))
	}

	// Categories with at least one product in the nearby offer set.
	seen := make(map[int64]bool)
	var categories []*Category
	for _, o := range filtered {
		catID := snap.ProductByID(o.ProductID).CategoryID
		if catID == 0 || seen[catID] {
			continue
		}
		seen[catID] = true
		if c := snap.CategoryByID(catID); c != nil {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

	storeReq := &StoresRequest{Location: loc, Limit: e.config.HomeStores}
	nearbyStores, err := e.NearbyStores(ctx, storeReq)
	if err != nil {
		e.metrics.RecordError("home")
		return nil, err
	}

	e.logger.Debug().
		Int("deals", len(deals)).
		Int("categories", len(categories)).
		Int("stores", len(nearbyStores)).
		Msg("Home feed computed")

	return &HomeFeed{
		Products:     deals,
		Categories:   categories,
		NearbyStores: nearbyStores,
	}, nil
}
