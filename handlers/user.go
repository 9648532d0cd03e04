package handlers

import (
	"errors"
	"net/http"
	"time"

	"gameflix/apperror"
	"gameflix/models"
	"gameflix/store"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

// GetCurrentUser returns the account behind the bearer token.
func GetCurrentUser(c *gin.Context) {
	ctx := c.Request.Context()
	st := dbStore()

	acc, err := st.FindAccountByID(ctx, currentUserID(c))
	if errors.Is(err, store.ErrAccountNotFound) {
		fail(c, apperror.Unauthorized("User not found", nil))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while retrieving the user", err)
		return
	}

	view := acc.View()
	if acc.IsCustomer() {
		ids, err := st.WishlistGameIDs(ctx, acc.ID)
		if err != nil {
			failInternal(c, "An error occurred while retrieving the user", err)
			return
		}
		if ids == nil {
			ids = []string{}
		}
		view.Wishlist = &ids
	}

	respond(c, http.StatusOK, "User retrieved successfully", gin.H{"user": view})
}

// RequestPasswordReset stores a short-lived 6-digit code on the account.
// There is no mail delivery, so the code is returned to the caller unless
// ExposeResetToken is off.
func RequestPasswordReset(c *gin.Context) {
	var input models.PasswordResetRequestInput
	if !bind(c, &input, "Email is required", "") {
		return
	}
	ctx := c.Request.Context()
	st := dbStore()

	acc, err := st.FindAccountByEmail(ctx, normalizeEmail(input.Email))
	if errors.Is(err, store.ErrAccountNotFound) {
		fail(c, apperror.NotFound("User not found"))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while generating password reset token", err)
		return
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		failInternal(c, "An error occurred while generating password reset token", err)
		return
	}
	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := st.SetResetToken(ctx, acc.ID, token, expires); err != nil {
		failInternal(c, "An error occurred while generating password reset token", err)
		return
	}

	payload := gin.H{"resetTokenExpiration": expires.UnixMilli()}
	if settings.ExposeResetToken {
		payload["resetToken"] = token
		utils.LogWarn("Password reset token returned in response", map[string]interface{}{
			"account_id": acc.ID,
		})
	}
	respond(c, http.StatusOK, "Password reset token generated successfully", payload)
}

func ResetPassword(c *gin.Context) {
	var input models.PasswordResetInput
	if !bind(c, &input, "Reset token and new password are required", "Invalid new password") {
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		failInternal(c, "An error occurred while resetting password", err)
		return
	}

	err = dbStore().ResetPassword(c.Request.Context(), input.ResetToken, hash, time.Now().UTC())
	if errors.Is(err, store.ErrInvalidResetToken) {
		fail(c, apperror.BadRequest("Password reset token is invalid or has expired", nil))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred while resetting password", err)
		return
	}

	respond(c, http.StatusOK, "Password has been reset successfully", nil)
}
