package discovery

import (
	"errors"
	"time"
)

// ReferenceScope selects the baseline for discount computation.
type ReferenceScope string

const (
	// ReferenceGlobal averages every valid offer of the product system-wide.
	// This answers "how good is this deal versus the norm" and is the default.
	ReferenceGlobal ReferenceScope = "global"
	// ReferenceNearby restricts the average to the nearby/filtered offer set.
	ReferenceNearby ReferenceScope = "nearby"
)

// Location is a user or branch coordinate in decimal degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Config contains the tunable settings of the discovery engine.
type Config struct {
	// OfferDistanceMeters bounds offer discovery when the request carries no
	// explicit threshold.
	OfferDistanceMeters float64
	// StoreDistanceMeters bounds store/branch listings when the request
	// carries no explicit threshold.
	StoreDistanceMeters float64

	DefaultPageSize int // page size when the request omits limit
	MaxPageSize     int // hard cap on requested page size

	HomeProducts int // number of ranked deals on the home feed
	HomeStores   int // number of nearby stores on the home feed

	// ReferenceScope is the discount baseline policy.
	ReferenceScope ReferenceScope
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		OfferDistanceMeters: 10000,
		StoreDistanceMeters: 5000,
		DefaultPageSize:     5,
		MaxPageSize:         25,
		HomeProducts:        5,
		HomeStores:          10,
		ReferenceScope:      ReferenceGlobal,
	}
}

// DiscoverRequest asks for the ranked deal list around a coordinate.
type DiscoverRequest struct {
	Location   Location
	Query      string // optional product-name substring, accent/case-insensitive
	CategoryID int64  // optional category filter, 0 = none
	StoreID    int64  // optional store filter, 0 = none
	Page       int    // 1-based page, 0 = first
	Limit      int    // page size, 0 = engine default

	// DistanceMeters overrides the configured offer distance bound when > 0.
	DistanceMeters float64
	// Today is the reference date for offer validity. Zero means time.Now.
	Today time.Time
}

// StoresRequest asks for the nearby-store listing.
type StoresRequest struct {
	Location       Location
	DistanceMeters float64 // 0 = configured store bound
	Limit          int     // 0 = unlimited
}

// BranchesRequest asks for the nearby-branch listing, optionally for one store.
type BranchesRequest struct {
	Location       Location
	StoreID        int64   // 0 = all stores
	DistanceMeters float64 // 0 = configured store bound
	Limit          int     // 0 = unlimited
}

// StoreRef is the store context attached to a ranked deal.
type StoreRef struct {
	ID             int64
	Name           string
	Branch         string // nearest branch description
	DistanceMeters int    // rounded half away from zero
	Logo           string
}

// Deal is one ranked (product, candidate offer) record.
type Deal struct {
	ProductID       int64
	Name            string
	URLImage        string
	Price           float64 // candidate offer price
	Percentage      int     // rounded discount percentage, may be negative
	OfferExpiration time.Time
	Store           StoreRef
}

// StoreListing is one record of a nearby store or branch listing.
type StoreListing struct {
	ID             int64 // store id
	Name           string
	Branch         string
	Latitude       float64
	Longitude      float64
	DistanceMeters int
	Logo           string
}

// ProductStoreOffer is one store's offer inside a product detail.
type ProductStoreOffer struct {
	StoreID            int64
	StoreName          string
	Branch             string
	Price              float64
	DiscountPercentage int
	OfferExpiration    time.Time
	Logo               string
	DistanceMeters     int
}

// ProductDetail is the full product view with every valid nearby offer.
type ProductDetail struct {
	ID            int64
	Name          string
	Description   string
	Measure       int
	MeasureType   MeasureType
	Origin        string
	ShelfLifeDays int
	URLImage      string
	CategoryID    int64
	Stores        []ProductStoreOffer
}

// HomeFeed is the composite home-screen payload.
type HomeFeed struct {
	Products     []Deal
	Categories   []*Category
	NearbyStores []StoreListing
}

// ErrNotFound is returned when a requested entity is absent from the snapshot.
var ErrNotFound = errors.New("not found")

// ErrInvalidRequest is returned when request parameters fail validation.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return e.Field + ": " + e.Reason
}

func validateLocation(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return ErrInvalidRequest{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return ErrInvalidRequest{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	return nil
}

// Validate checks the request against engine limits.
func (r *DiscoverRequest) Validate(maxPageSize int) error {
	if err := validateLocation(r.Location); err != nil {
		return err
	}
	if r.Page < 0 {
		return ErrInvalidRequest{Field: "page", Reason: "must be >= 1"}
	}
	if r.Limit < 0 || r.Limit > maxPageSize {
		return ErrInvalidRequest{Field: "limit", Reason: "out of range"}
	}
	if r.DistanceMeters < 0 {
		return ErrInvalidRequest{Field: "distance", Reason: "must be positive"}
	}
	return nil
}

// today returns the request reference date truncated to a calendar day.
func (r *DiscoverRequest) today() time.Time {
	return dateOnly(r.Today)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
