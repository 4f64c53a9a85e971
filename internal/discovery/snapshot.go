package discovery

import (
	"context"
	"fmt"
	"time"
)

// MeasureType tags a product's measure value.
type MeasureType string

const (
	MeasureWeight MeasureType = "WEIGHT"
	MeasureVolume MeasureType = "VOLUME"
	MeasureLength MeasureType = "LENGTH"
)

// Store is a retail chain with one or more physical branches.
type Store struct {
	ID   int64
	Name string
	Logo string // logo image URL, may be empty
}

// Branch is a physical location of a store.
type Branch struct {
	ID          int64
	StoreID     int64
	Description string  // free-text location description
	Latitude    float64 // decimal degrees, [-90, 90]
	Longitude   float64 // decimal degrees, [-180, 180]
}

// Category groups products.
type Category struct {
	ID      int64
	Name    string
	URLIcon string
}

// Product is a catalog item.
type Product struct {
	ID            int64
	Name          string
	Description   string
	Measure       int
	MeasureType   MeasureType
	Origin        string
	ShelfLifeDays int
	URLImage      string
	CategoryID    int64
}

// Offer is a priced, time-bounded availability of a product at a store.
// The price applies at every branch of the store; distance is computed
// against the store's nearest branch.
type Offer struct {
	ID             int64
	ProductID      int64
	StoreID        int64
	Price          float64
	StartDate      time.Time
	ExpirationDate time.Time
}

// Snapshot is an immutable, point-in-time view of the catalog. All traversal
// goes through explicit index lookups built once at construction; there are
// no live back-references between entities.
type Snapshot struct {
	stores     map[int64]*Store
	branches   map[int64]*Branch
	categories map[int64]*Category
	products   map[int64]*Product
	offers     []*Offer

	offersByProduct map[int64][]*Offer
	branchesByStore map[int64][]*Branch

	loadedAt time.Time
}

// IntegrityError reports snapshot data that references a missing entity.
// This is a data fault to surface, not something the engine recovers from.
type IntegrityError struct {
	Entity string // entity kind carrying the dangling reference
	ID     int64  // its identity
	Ref    string // referenced entity kind
	RefID  int64  // missing identity
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %d references missing %s %d", e.Entity, e.ID, e.Ref, e.RefID)
}

// NewSnapshot builds the index maps and verifies referential integrity:
// every branch must belong to a known store and every offer must resolve
// to a known product and store.
func NewSnapshot(stores []*Store, branches []*Branch, categories []*Category, products []*Product, offers []*Offer) (*Snapshot, error) {
	s := &Snapshot{
		stores:          make(map[int64]*Store, len(stores)),
		branches:        make(map[int64]*Branch, len(branches)),
		categories:      make(map[int64]*Category, len(categories)),
		products:        make(map[int64]*Product, len(products)),
		offers:          offers,
		offersByProduct: make(map[int64][]*Offer),
		branchesByStore: make(map[int64][]*Branch),
		loadedAt:        time.Now(),
	}

	for _, st := range stores {
		s.stores[st.ID] = st
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	for _, b := range branches {
		if _, ok := s.stores[b.StoreID]; !ok {
			return nil, &IntegrityError{Entity: "branch", ID: b.ID, Ref: "store", RefID: b.StoreID}
		}
		s.branches[b.ID] = b
		s.branchesByStore[b.StoreID] = append(s.branchesByStore[b.StoreID], b)
	}
	for _, o := range offers {
		if _, ok := s.products[o.ProductID]; !ok {
			return nil, &IntegrityError{Entity: "offer", ID: o.ID, Ref: "product", RefID: o.ProductID}
		}
		if _, ok := s.stores[o.StoreID]; !ok {
			return nil, &IntegrityError{Entity: "offer", ID: o.ID, Ref: "store", RefID: o.StoreID}
		}
		s.offersByProduct[o.ProductID] = append(s.offersByProduct[o.ProductID], o)
	}

	return s, nil
}

// StoreByID returns the store with the given id, or nil.
func (s *Snapshot) StoreByID(id int64) *Store { return s.stores[id] }

// ProductByID returns the product with the given id, or nil.
func (s *Snapshot) ProductByID(id int64) *Product { return s.products[id] }

// CategoryByID returns the category with the given id, or nil.
func (s *Snapshot) CategoryByID(id int64) *Category { return s.categories[id] }

// BranchesByStore returns the branches owned by a store.
func (s *Snapshot) BranchesByStore(storeID int64) []*Branch { return s.branchesByStore[storeID] }

// OffersByProduct returns every offer of a product, valid or not.
func (s *Snapshot) OffersByProduct(productID int64) []*Offer { return s.offersByProduct[productID] }

// Offers returns every offer in the snapshot.
func (s *Snapshot) Offers() []*Offer { return s.offers }

// Categories returns every category.
func (s *Snapshot) Categories() []*Category {
	out := make([]*Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out
}

// StoreIDs returns the ids of every store.
func (s *Snapshot) StoreIDs() []int64 {
	out := make([]int64, 0, len(s.stores))
	for id := range s.stores {
		out = append(out, id)
	}
	return out
}

// Counts reports entity cardinalities, for logging and metrics.
func (s *Snapshot) Counts() (stores, branches, categories, products, offers int) {
	return len(s.stores), len(s.branches), len(s.categories), len(s.products), len(s.offers)
}

// LoadedAt reports when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// SnapshotSource provides the engine with a consistent catalog snapshot.
// Implementations must return a snapshot that is never mutated after it is
// handed out; the cache implementation swaps whole snapshots atomically.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
