package handlers

import (
	"net/http"
	"strings"

	"gameflix/apperror"
	"gameflix/store"

	"github.com/gin-gonic/gin"
)

// SearchGames - quick search box: published games whose title or category
// contains q.
func SearchGames(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, apperror.BadRequest("Search query is required", nil))
		return
	}

	games, err := dbStore().SearchGames(c.Request.Context(), q, store.SearchLimit)
	if err != nil {
		failInternal(c, "An error occurred while searching games", err)
		return
	}
	if len(games) == 0 {
		fail(c, apperror.NotFound("No games found matching your search"))
		return
	}
	respond(c, http.StatusOK, "Games found successfully", gin.H{"games": games})
}
