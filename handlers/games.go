package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gameflix/apperror"
	"gameflix/cache"
	"gameflix/middleware"
	"gameflix/models"
	"gameflix/monitoring"
	"gameflix/store"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

func CreateGame(c *gin.Context) {
	if c.GetString(middleware.UserTypeKey) != string(models.KindDeveloper) {
		fail(c, apperror.Forbidden("Only developers can create games"))
		return
	}

	var input models.GameInput
	if !bind(c, &input, "All fields are required", "Invalid game data") {
		return
	}

	game := input.ToGame(currentUserID(c))
	if err := dbStore().CreateGame(c.Request.Context(), &game); err != nil {
		failInternal(c, "An error occurred while creating game", err)
		return
	}
	invalidateGame(c, game.ID)

	respond(c, http.StatusCreated, "Game created successfully", gin.H{"game": game})
}

// ownedGame loads the game in :id and checks that the caller developed it.
func ownedGame(c *gin.Context, st *store.Store, errMsg string) (*models.Game, bool) {
	game, err := st.FindGame(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return nil, false
	}
	if err != nil {
		failInternal(c, errMsg, err)
		return nil, false
	}
	if game.DeveloperID != currentUserID(c) {
		fail(c, apperror.Forbidden("You can only modify your own games"))
		return nil, false
	}
	return game, true
}

func UpdateGame(c *gin.Context) {
	st := dbStore()
	game, ok := ownedGame(c, st, "An error occurred while updating game")
	if !ok {
		return
	}

	var input models.UpdateGameInput
	if !bind(c, &input, "Invalid game data", "Invalid game data") {
		return
	}

	updated, err := st.UpdateGame(c.Request.Context(), game.ID, input)
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while updating game", err)
		return
	}
	invalidateGame(c, game.ID)

	respond(c, http.StatusOK, "Game updated successfully", gin.H{"game": updated})
}

func DeleteGame(c *gin.Context) {
	st := dbStore()
	game, ok := ownedGame(c, st, "An error occurred while deleting game")
	if !ok {
		return
	}

	err := st.DeleteGame(c.Request.Context(), game.ID)
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while deleting game", err)
		return
	}
	invalidateGame(c, game.ID)

	respond(c, http.StatusOK, "Game deleted successfully", nil)
}

// UpdateGameStatus publishes or unpublishes a game.
func UpdateGameStatus(c *gin.Context) {
	var input models.StatusInput
	if err := c.ShouldBindJSON(&input); err != nil || !models.GameStatus(input.Status).Valid() {
		fail(c, apperror.BadRequest("Invalid status value", err))
		return
	}
	status := models.GameStatus(input.Status)

	st := dbStore()
	game, ok := ownedGame(c, st, "An error occurred while updating game status")
	if !ok {
		return
	}
	if game.Status == status {
		fail(c, apperror.BadRequest("Game is already "+strings.ToLower(string(status)), nil))
		return
	}

	if err := st.SetGameStatus(c.Request.Context(), game.ID, status); err != nil {
		if errors.Is(err, store.ErrGameNotFound) {
			fail(c, apperror.NotFound("Game not found"))
			return
		}
		failInternal(c, "An error occurred while updating game status", err)
		return
	}
	monitoring.GamesPublished.WithLabelValues(string(status)).Inc()
	invalidateGame(c, game.ID)

	respond(c, http.StatusOK, "Game status updated successfully", nil)
}

// ListDeveloperGames returns every game of :id, published or not.
func ListDeveloperGames(c *gin.Context) {
	games, err := dbStore().ListDeveloperGames(c.Request.Context(), c.Param("id"))
	if err != nil {
		failInternal(c, "An error occurred while fetching games", err)
		return
	}
	if len(games) == 0 {
		fail(c, apperror.NotFound("No games found for this developer"))
		return
	}
	respond(c, http.StatusOK, "Games from developer retrieved successfully", gin.H{"games": games})
}

// IncrementViews counts one more view; repeat views are not deduplicated.
func IncrementViews(c *gin.Context) {
	err := dbStore().IncrementViews(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while incrementing view count", err)
		return
	}
	monitoring.GameViews.Inc()
	respond(c, http.StatusOK, "View count incremented successfully", nil)
}

type gamesPage struct {
	Games []models.GameListing `json:"games"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

func catalogFilterFromQuery(c *gin.Context) store.CatalogFilter {
	f := store.CatalogFilter{
		Category:   c.Query("category"),
		OS:         c.Query("os"),
		Language:   c.Query("language"),
		PlayersQty: c.Query("playersQty"),
		Price:      store.ParsePriceRange(c.Query("price")),
		OrderBy:    c.Query("orderBy"),
		Desc:       c.Query("order") == "desc",
	}
	if r, err := strconv.ParseFloat(c.Query("rating"), 64); err == nil {
		f.MinRating = &r
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	return f
}

// ListGames is the public catalog: published games filtered, sorted and
// paginated from the query string.
func ListGames(c *gin.Context) {
	ctx := c.Request.Context()
	cacheKey := c.Request.URL.Query().Encode()

	var page gamesPage
	if err := cache.GetGamesList(ctx, cacheKey, &page); err == nil {
		monitoring.ObserveCache("games", true)
		respond(c, http.StatusOK, "Games retrieved successfully", gin.H{"games": page.Games, "page": page.Page, "limit": page.Limit})
		return
	} else if cache.IsRedisAvailable() {
		monitoring.ObserveCache("games", false)
	}

	filter := catalogFilterFromQuery(c)
	games, err := dbStore().ListPublishedGames(ctx, &filter)
	if err != nil {
		failInternal(c, "An error occurred while fetching games", err)
		return
	}
	if len(games) == 0 {
		fail(c, apperror.NotFound("No games found with these filters"))
		return
	}

	page = gamesPage{Games: games, Page: filter.Page, Limit: filter.Limit}
	if err := cache.SetGamesList(ctx, cacheKey, page); err != nil && cache.IsRedisAvailable() {
		utils.LogDebug("Failed to cache games page", map[string]interface{}{"error": err.Error()})
	}
	respond(c, http.StatusOK, "Games retrieved successfully", gin.H{"games": games, "page": filter.Page, "limit": filter.Limit})
}

func invalidateGame(c *gin.Context, id string) {
	if err := cache.InvalidateGame(c.Request.Context(), id); err != nil {
		utils.LogWarn("Failed to invalidate game cache", map[string]interface{}{"game_id": id, "error": err.Error()})
	}
}
