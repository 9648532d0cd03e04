package handlers

import (
	"net/http"

	"gameflix/cache"
	"gameflix/models"
	"gameflix/monitoring"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

type filterOptions struct {
	Categories       []models.Category `json:"categories"`
	OperatingSystems []string          `json:"operatingSystems"`
	Languages        []string          `json:"languages"`
	PlayersQty       []string          `json:"playersQty"`
}

// GetCategories with Redis caching. Feeds the catalog filter bar.
func GetCategories(c *gin.Context) {
	ctx := c.Request.Context()

	var opts filterOptions
	if err := cache.GetCategories(ctx, &opts); err == nil {
		utils.Log.Debug("Cache HIT: categories")
		monitoring.ObserveCache("categories", true)
		respond(c, http.StatusOK, "Categories retrieved successfully", gin.H{"filters": opts})
		return
	} else if cache.IsRedisAvailable() {
		utils.Log.Debug("Cache MISS: categories")
		monitoring.ObserveCache("categories", false)
	}

	categories, err := dbStore().ListCategories(ctx)
	if err != nil {
		failInternal(c, "An error occurred while fetching categories", err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	opts = filterOptions{
		Categories:       categories,
		OperatingSystems: models.OperatingSystems,
		Languages:        models.Languages,
		PlayersQty:       models.PlayerModes,
	}

	if cache.IsRedisAvailable() {
		if err := cache.SetCategories(ctx, opts); err != nil {
			utils.Log.WithError(err).Debug("Failed to cache categories")
		}
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", gin.H{"filters": opts})
}
