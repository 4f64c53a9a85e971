package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qtota/offer-service/internal/discovery"
)

type productStoreResponse struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Branch             string  `json:"branch"`
	CurrentPrice       float64 `json:"current_price"`
	DiscountPercentage int     `json:"discount_percentage"`
	ExpirationOffer    string  `json:"expiration_offer"`
	Logo               string  `json:"logo"`
	Distance           int     `json:"distance"`
}

type productDetailResponse struct {
	ID            int64                  `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Measure       int                    `json:"measure"`
	MeasureType   string                 `json:"measure_type"`
	Origin        string                 `json:"origin"`
	ShelfLifeDays int                    `json:"shelf_life_days"`
	URLImage      string                 `json:"url_image"`
	CategoryID    int64                  `json:"id_category"`
	Stores        []productStoreResponse `json:"stores"`
}

// ListDeals handles the ranked deal listing
// GET /product?lat=&lon=&search=&category=&store=&page=&limit=&distance=
func ListDeals(c *gin.Context) {
	loc, ok := parseLocation(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	categoryID, ok := queryInt(c, "category")
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

	deals, err := engine.Deals(c.Request.Context(), &discovery.DiscoverRequest{
		Location:       loc,
		Query:          c.Query("search"),
		CategoryID:     categoryID,
		StoreID:        storeID,
		Page:           int(page),
		Limit:          int(limit),
		DistanceMeters: distance,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	out := make([]dealResponse, 0, len(deals))
	for _, d := range deals {
		out = append(out, toDealResponse(d))
	}
	c.JSON(http.StatusOK, out)
}

// GetProduct handles the single-product view
// GET /product/:id?lat=&lon=
func GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}
	loc, ok := parseLocation(c)
	if !ok {
		return
	}

	detail, err := engine.ProductDetail(c.Request.Context(), id, loc, timeNow())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	stores := make([]productStoreResponse, 0, len(detail.Stores))
	for _, s := range detail.Stores {
		stores = append(stores, productStoreResponse{
			ID:                 s.StoreID,
			Name:               s.StoreName,
			Branch:             s.Branch,
			CurrentPrice:       s.Price,
			DiscountPercentage: s.DiscountPercentage,
			ExpirationOffer:    formatDate(s.OfferExpiration),
			Logo:               s.Logo,
			Distance:           s.DistanceMeters,
		})
	}

	c.JSON(http.StatusOK, productDetailResponse{
		ID:            detail.ID,
		Name:          detail.Name,
		Description:   detail.Description,
		Measure:       detail.Measure,
		MeasureType:   string(detail.MeasureType),
		Origin:        detail.Origin,
		ShelfLifeDays: detail.ShelfLifeDays,
		URLImage:      detail.URLImage,
		CategoryID:    detail.CategoryID,
		Stores:        stores,
	})
}
