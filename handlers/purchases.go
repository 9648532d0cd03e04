package handlers

import (
	"errors"
	"net/http"

	"gameflix/apperror"
	"gameflix/models"
	"gameflix/monitoring"
	"gameflix/store"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

// PurchaseGame - POST /customers/:id/games/purchases
func PurchaseGame(c *gin.Context) {
	const errMsg = "An error occurred while purchasing game"
	ctx := c.Request.Context()
	st := dbStore()

	customer, ok := selfCustomer(c, st, errMsg)
	if !ok {
		return
	}

	var input models.PurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperror.BadRequest("Invalid payment details", err))
		return
	}

	game, err := st.FindGame(ctx, input.GameID)
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return
	}
	if err != nil {
		failInternal(c, errMsg, err)
		return
	}

	if err := utils.ValidateStruct(&input); err != nil {
		utils.ValidationErrorResponse(c, "Invalid payment details", err)
		c.Abort()
		return
	}

	payment := models.Payment{
		CardNumber:   input.CardNumber,
		CardProvider: input.CardProvider,
		CardExpDate:  input.CardExpDate,
		CardCVC:      input.CardCVC,
		GameID:       game.ID,
		CustomerID:   customer.ID,
	}
	err = st.Purchase(ctx, &payment)
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return
	}
	if err != nil {
		failInternal(c, errMsg, err)
		return
	}
	monitoring.Purchases.Inc()
	invalidateGame(c, game.ID)

	respond(c, http.StatusOK, "Game purchased successfully", gin.H{"payment": payment})
}

// ListPurchases - GET /customers/:id/games/purchases
func ListPurchases(c *gin.Context) {
	const errMsg = "An error occurred while fetching purchases"
	st := dbStore()
	customer, ok := selfCustomer(c, st, errMsg)
	if !ok {
		return
	}

	purchases, err := st.ListPurchases(c.Request.Context(), customer.ID)
	if err != nil {
		failInternal(c, errMsg, err)
		return
	}
	if len(purchases) == 0 {
		fail(c, apperror.NotFound("No purchases found"))
		return
	}
	respond(c, http.StatusOK, "Purchases retrieved successfully", gin.H{"purchases": purchases})
}
