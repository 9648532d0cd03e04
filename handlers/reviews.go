package handlers

import (
	"errors"
	"net/http"

	"gameflix/apperror"
	"gameflix/models"
	"gameflix/store"

	"github.com/gin-gonic/gin"
)

// CreateReview - the caller must be a customer; their name is copied onto
// the review.
func CreateReview(c *gin.Context) {
	ctx := c.Request.Context()
	st := dbStore()

	game, err := st.FindGame(ctx, c.Param("id"))
	if errors.Is(err, store.ErrGameNotFound) {
		fail(c, apperror.NotFound("Game not found"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while creating review", err)
		return
	}

	customer, err := st.FindCustomer(ctx, currentUserID(c))
	if errors.Is(err, store.ErrAccountNotFound) {
		fail(c, apperror.NotFound("Customer not found"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while creating review", err)
		return
	}

	var input models.ReviewInput
	if !bind(c, &input, "Content and rating are required", "Rating must be an integer between 1 and 5") {
		return
	}

	review := models.Review{
		FirstName:  customer.Customer.FirstName,
		LastName:   customer.Customer.LastName,
		Content:    input.Content,
		Rating:     input.Rating,
		GameID:     game.ID,
		CustomerID: customer.ID,
	}
	if err := st.CreateReview(ctx, &review); err != nil {
		failInternal(c, "An error occurred while creating review", err)
		return
	}
	invalidateGame(c, game.ID)

	respond(c, http.StatusCreated, "Review created successfully", gin.H{"review": review})
}

func ListReviews(c *gin.Context) {
	reviews, err := dbStore().ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		failInternal(c, "An error occurred while fetching reviews", err)
		return
	}
	if len(reviews) == 0 {
		fail(c, apperror.NotFound("No reviews found for this game"))
		return
	}
	respond(c, http.StatusOK, "Reviews retrieved successfully", gin.H{"reviews": reviews})
}
