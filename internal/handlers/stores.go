package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qtota/offer-service/internal/discovery"
)

// ListStores handles the nearby store listing: one record per store carrying
// its closest branch, ordered by distance.
// GET /store?lat=&lon=&distance=&limit=
func ListStores(c *gin.Context) {
	loc, ok := parseLocation(c)
	if !ok {
		return
	}
	distance, ok := queryFloat(c, "distance")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	stores, err := engine.NearbyStores(c.Request.Context(), &discovery.StoresRequest{
		Location:       loc,
		DistanceMeters: distance,
		Limit:          int(limit),
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoreListingResponses(stores))
}

// ListBranches handles the branch listing: every branch inside the bound,
// optionally restricted to a single store.
// GET /store/branches?lat=&lon=&store=&distance=&limit=
func ListBranches(c *gin.Context) {
	loc, ok := parseLocation(c)
	if !ok {
		return
	}
	storeID, ok := queryInt(c, "store")
	if !ok {
		return
	}
	distance, ok := queryFloat(c, "distance")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	branches, err := engine.NearbyBranches(c.Request.Context(), &discovery.BranchesRequest{
		Location:       loc,
		StoreID:        storeID,
		DistanceMeters: distance,
		Limit:          int(limit),
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStoreListingResponses(branches))
}
