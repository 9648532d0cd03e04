package handlers

import (
	"errors"
	"net/http"

	"gameflix/apperror"
	"gameflix/models"
	"gameflix/monitoring"
	"gameflix/store"

	"github.com/gin-gonic/gin"
)

// selfCustomer checks that :id is the caller and a customer.
func selfCustomer(c *gin.Context, st *store.Store, errMsg string) (*models.Account, bool) {
	id := c.Param("id")
	if !requireSelf(c, id) {
		return nil, false
	}
	acc, err := st.FindCustomer(c.Request.Context(), id)
	if errors.Is(err, store.ErrAccountNotFound) {
		fail(c, apperror.NotFound("Customer not found"))
		return nil, false
	}
	if err != nil {
		failInternal(c, errMsg, err)
		return nil, false
	}
	return acc, true
}

func AddToWishlist(c *gin.Context) {
	const errMsg = "An error occurred while adding game to wishlist"
	st := dbStore()
	customer, ok := selfCustomer(c, st, errMsg)
	if !ok {
		return
	}

	var input models.WishlistInput
	if !bind(c, &input, "Game ID is required", "") {
		return
	}

	err := st.AddToWishlist(c.Request.Context(), customer.ID, input.GameID)
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		fail(c, apperror.NotFound("Game not found"))
		return
	case errors.Is(err, store.ErrAlreadyInWishlist):
		fail(c, apperror.BadRequest("Game already in wishlist", nil))
		return
	case err != nil:
		failInternal(c, errMsg, err)
		return
	}
	monitoring.WishlistOperations.WithLabelValues("add").Inc()
	invalidateGame(c, input.GameID)

	respond(c, http.StatusOK, "Game added to wishlist successfully", nil)
}

func RemoveFromWishlist(c *gin.Context) {
	const errMsg = "An error occurred while removing game from wishlist"
	st := dbStore()
	customer, ok := selfCustomer(c, st, errMsg)
	if !ok {
		return
	}

	gameID := c.Param("gameId")
	err := st.RemoveFromWishlist(c.Request.Context(), customer.ID, gameID)
	if errors.Is(err, store.ErrNotInWishlist) {
		fail(c, apperror.NotFound("Game not found in wishlist"))
		return
	}
	if err != nil {
		failInternal(c, errMsg, err)
		return
	}
	monitoring.WishlistOperations.WithLabelValues("remove").Inc()
	invalidateGame(c, gameID)

	respond(c, http.StatusOK, "Game removed from wishlist successfully", nil)
}

func GetWishlist(c *gin.Context) {
	const errMsg = "An error occurred while fetching wishlist games"
	st := dbStore()
	customer, ok := selfCustomer(c, st, errMsg)
	if !ok {
		return
	}

	games, err := st.WishlistGames(c.Request.Context(), customer.ID)
	if err != nil {
		failInternal(c, errMsg, err)
		return
	}
	if len(games) == 0 {
		fail(c, apperror.NotFound("No games found in wishlist"))
		return
	}
	respond(c, http.StatusOK, "Games in wishlist retrieved successfully", gin.H{"games": games})
}
