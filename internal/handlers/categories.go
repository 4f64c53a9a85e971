package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

type categoryResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	URLIcon string `json:"url_icon"`
}

// ListCategories handles the category listing
// GET /category
func ListCategories(c *gin.Context) {
	snap, err := snapshotCache.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return
	}

	categories := snap.Categories()
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryResponse{
			ID:      cat.ID,
			Name:    cat.Name,
			URLIcon: cat.URLIcon,
		})
	}
	c.JSON(http.StatusOK, out)
}
