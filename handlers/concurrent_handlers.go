package handlers

import (
	"errors"
	"net/http"
	"time"

	"gameflix/apperror"
	"gameflix/cache"
	"gameflix/concurrent"
	"gameflix/monitoring"
	"gameflix/store"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

// GetGame - game with developer profile, reviews and average rating
// GET /games/:id
func GetGame(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var details concurrent.GameDetails
	if err := cache.GetGame(ctx, id, &details); err == nil {
		monitoring.ObserveCache("game", true)
		respond(c, http.StatusOK, "Game retrieved successfully", gin.H{"game": details})
		return
	} else if cache.IsRedisAvailable() {
		monitoring.ObserveCache("game", false)
	}

	start := time.Now()
	fetched, err := concurrent.FetchGameWithDetails(ctx, dbStore(), id)
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while fetching game", err)
		return
	}
	utils.LogDebug("Game details fetched", map[string]interface{}{
		"game_id":       id,
		"fetch_time_ms": time.Since(start).Milliseconds(),
	})

	if err := cache.SetGame(ctx, id, fetched); err != nil && cache.IsRedisAvailable() {
		utils.LogDebug("Failed to cache game", map[string]interface{}{"game_id": id, "error": err.Error()})
	}
	respond(c, http.StatusOK, "Game retrieved successfully", gin.H{"game": fetched})
}

// DeveloperGamesSummary - totals across all games of a developer
// GET /developers/:id/games/summary
func DeveloperGamesSummary(c *gin.Context) {
	summary, err := concurrent.CalculateDeveloperSummary(c.Request.Context(), dbStore(), c.Param("id"))
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("No games found for this developer"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while calculating developer summary", err)
		return
	}
	respond(c, http.StatusOK, "Developer summary retrieved successfully", gin.H{"summary": summary})
}
