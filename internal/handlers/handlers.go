// Package handlers contains the gin HTTP handlers of the offer service.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qtota/offer-service/internal/auth"
	"github.com/qtota/offer-service/internal/discovery"
	"github.com/qtota/offer-service/internal/repository"
	"github.com/qtota/offer-service/internal/snapshot"
)

// Handler instances (initialized by the application)
var (
	engine        *discovery.Engine
	snapshotCache *snapshot.Cache
	tokenManager  *auth.TokenManager
	userRepo      *repository.UserRepository
)

// Init wires the handler dependencies. It must be called during application
// startup before the router serves traffic.
func Init(e *discovery.Engine, cache *snapshot.Cache, tokens *auth.TokenManager, users *repository.UserRepository) {
	engine = e
	snapshotCache = cache
	tokenManager = tokens
	userRepo = users
}

const dateLayout = "2006-01-02"

// timeNow is a variable so tests can pin the reference date.
var timeNow = time.Now

// parseLocation reads the required lat/lon query parameters.
func parseLocation(c *gin.Context) (discovery.Location, bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat is required and must be a number"})
		return discovery.Location{}, false
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon is required and must be a number"})
		return discovery.Location{}, false
	}
	return discovery.Location{Latitude: lat, Longitude: lon}, true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative integer"})
		return 0, false
	}
	return v, true
}

// queryFloat reads an optional float query parameter.
func queryFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative number"})
		return 0, false
	}
	return v, true
}

// respondEngineError maps engine errors to HTTP status codes.
func respondEngineError(c *gin.Context, err error) {
	var invalid discovery.ErrInvalidRequest
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.Is(err, discovery.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type storeRefResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Branch   string `json:"branch"`
	Distance int    `json:"distance"`
	Logo     string `json:"logo"`
}

type dealResponse struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	URLImage        string           `json:"url_image"`
	Price           float64          `json:"price"`
	Percentage      int              `json:"percentage"`
	ExpirationOffer string           `json:"expiration_offer"`
	Store           storeRefResponse `json:"store"`
}

func toDealResponse(d discovery.Deal) dealResponse {
	return dealResponse{
		ID:              d.ProductID,
		Name:            d.Name,
		URLImage:        d.URLImage,
		Price:           d.Price,
		Percentage:      d.Percentage,
		ExpirationOffer: d.OfferExpiration.Format(dateLayout),
		Store: storeRefResponse{
			ID:       d.Store.ID,
			Name:     d.Store.Name,
			Branch:   d.Store.Branch,
			Distance: d.Store.DistanceMeters,
			Logo:     d.Store.Logo,
		},
	}
}

type storeListingResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Branch    string  `json:"branch"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  int     `json:"distance"`
	Logo      string  `json:"logo"`
}

func toStoreListingResponses(listings []discovery.StoreListing) []storeListingResponse {
	out := make([]storeListingResponse, 0, len(listings))
	for _, s := range listings {
		out = append(out, storeListingResponse{
			ID:        s.ID,
			Name:      s.Name,
			Branch:    s.Branch,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Distance:  s.DistanceMeters,
			Logo:      s.Logo,
		})
	}
	return out
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
