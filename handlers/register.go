package handlers

import (
	"errors"
	"net/http"
	"time"

	"gameflix/apperror"
	"gameflix/models"
	"gameflix/monitoring"
	"gameflix/store"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

var birthDateLayouts = []string{"2006-01-02", time.RFC3339}

func parseBirthDate(s string) (time.Time, bool) {
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func RegisterDeveloper(c *gin.Context) {
	var input models.RegisterDeveloperInput
	if !bind(c, &input, "All fields are required", "Invalid registration data") {
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		failInternal(c, "An error occurred while creating developer account", err)
		return
	}

	acc := &models.Account{
		UserType: models.KindDeveloper,
		Developer: &models.DeveloperProfile{
			CompanyName:        input.CompanyName,
			CompanyDescription: input.CompanyDescription,
			LogoImageURL:       input.LogoImageURL,
		},
	}
	acc.Email = normalizeEmail(input.Email)
	acc.PasswordHash = hash

	if !createAccount(c, acc, "An error occurred while creating developer account") {
		return
	}

	token, err := settings.Tokens.Sign(acc.ID, string(acc.UserType))
	if err != nil {
		failInternal(c, "An error occurred while creating developer account", err)
		return
	}

	respond(c, http.StatusCreated, "Developer registered successfully", gin.H{
		"user":        acc.View(),
		"accessToken": token,
	})
}

func RegisterCustomer(c *gin.Context) {
	var input models.RegisterCustomerInput
	if !bind(c, &input, "All fields are required", "Invalid registration data") {
		return
	}

	birthDate, ok := parseBirthDate(input.BirthDate)
	if !ok {
		fail(c, apperror.BadRequest("birthDate must use the YYYY-MM-DD format", nil))
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		failInternal(c, "An error occurred while creating customer account", err)
		return
	}

	acc := &models.Account{
		UserType: models.KindCustomer,
		Customer: &models.CustomerProfile{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			BirthDate: birthDate,
		},
	}
	acc.Email = normalizeEmail(input.Email)
	acc.PasswordHash = hash

	if !createAccount(c, acc, "An error occurred while creating customer account") {
		return
	}

	token, err := settings.Tokens.Sign(acc.ID, string(acc.UserType))
	if err != nil {
		failInternal(c, "An error occurred while creating customer account", err)
		return
	}

	respond(c, http.StatusCreated, "Customer registered successfully", gin.H{
		"customer":    acc.View(),
		"accessToken": token,
	})
}

func createAccount(c *gin.Context, acc *models.Account, errMsg string) bool {
	err := dbStore().CreateAccount(c.Request.Context(), acc)
	if errors.Is(err, store.ErrEmailTaken) {
		fail(c, apperror.Conflict("User already exists"))
		return false
	}
	if err != nil {
		failInternal(c, errMsg, err)
		return false
	}
	monitoring.AccountsRegistered.WithLabelValues(string(acc.UserType)).Inc()
	utils.LogInfo("Account registered", map[string]interface{}{
		"account_id": acc.ID,
		"kind":       acc.UserType,
	})
	return true
}
