package handlers

import (
	"math"
	"net/http"

	"gameflix/apperror"
	"gameflix/models"

	"github.com/gin-gonic/gin"
)

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DeveloperGameStats - per-game performance table of a developer
// GET /developers/:id/games/stats
func DeveloperGameStats(c *gin.Context) {
	games, err := dbStore().ListDeveloperGames(c.Request.Context(), c.Param("id"))
	if err != nil {
		failInternal(c, "An error occurred while fetching games stats", err)
		return
	}
	if len(games) == 0 {
		fail(c, apperror.NotFound("No games found for this developer"))
		return
	}

	stats := make([]models.GameStats, 0, len(games))
	for _, g := range games {
		stats = append(stats, models.GameStats{
			ID:             g.ID,
			Title:          g.Title,
			Category:       g.Category,
			Price:          g.Price,
			ImageURL:       g.ImageURL,
			Status:         string(g.Status),
			Views:          g.Views,
			Purchases:      g.Purchases,
			ConversionRate: roundTo2(models.ConversionRate(g.Purchases, g.Views)),
			WishlistCount:  g.WishlistCount,
		})
	}

	respond(c, http.StatusOK, "Games stats from developer retrieved successfully", gin.H{"games": stats})
}
