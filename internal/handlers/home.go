package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type homeResponse struct {
	Products     []dealResponse         `json:"products"`
	Categories   []categoryResponse     `json:"categories"`
	NearbyStores []storeListingResponse `json:"nearby_stores"`
}

// GetHome handles the home feed: top deals, the categories present in the
// nearby offer set and the closest stores.
// GET /home?lat=&lon=
func GetHome(c *gin.Context) {
	loc, ok := parseLocation(c)
	if !ok {
		return
	}

	feed, err := engine.Home(c.Request.Context(), loc, timeNow())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	products := make([]dealResponse, 0, len(feed.Products))
	for _, d := range feed.Products {
		products = append(products, toDealResponse(d))
	}

	categories := make([]categoryResponse, 0, len(feed.Categories))
	for _, cat := range feed.Categories {
		categories = append(categories, categoryResponse{
			ID:      cat.ID,
			Name:    cat.Name,
			URLIcon: cat.URLIcon,
		})
	}

	c.JSON(http.StatusOK, homeResponse{
		Products:     products,
		Categories:   categories,
		NearbyStores: toStoreListingResponses(feed.NearbyStores),
	})
}
