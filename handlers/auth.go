package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gameflix/apperror"
	"gameflix/middleware"
	"gameflix/models"
	"gameflix/monitoring"
	"gameflix/store"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type loginUser struct {
	Email       string             `json:"email"`
	UserType    models.AccountKind `json:"userType"`
	DeveloperID *string            `json:"developerId"`
	CustomerID  *string            `json:"customerId"`
	FirstName   string             `json:"firstName,omitempty"`
	LastName    string             `json:"lastName,omitempty"`
	CompanyName string             `json:"companyName,omitempty"`
}

func Login(c *gin.Context) {
	var input models.LoginInput
	if !bind(c, &input, "Both email and password fields are required", "") {
		return
	}

	acc, err := dbStore().FindAccountByEmail(c.Request.Context(), normalizeEmail(input.Email))
	if errors.Is(err, store.ErrAccountNotFound) {
		monitoring.AuthenticationAttempts.WithLabelValues("failure").Inc()
		fail(c, apperror.Unauthorized("User not found", nil))
		return
	}
	if err != nil {
		failInternal(c, "An error occurred during login", err)
		return
	}

	if !utils.CheckPassword(acc.PasswordHash, input.Password) {
		monitoring.AuthenticationAttempts.WithLabelValues("failure").Inc()
		fail(c, apperror.Unauthorized("Invalid credentials", nil))
		return
	}

	token, err := settings.Tokens.Sign(acc.ID, string(acc.UserType))
	if err != nil {
		failInternal(c, "An error occurred during login", err)
		return
	}
	monitoring.AuthenticationAttempts.WithLabelValues("success").Inc()

	user := loginUser{Email: acc.Email, UserType: acc.UserType}
	if acc.Customer != nil {
		id := acc.ID
		user.CustomerID = &id
		user.FirstName = acc.Customer.FirstName
		user.LastName = acc.Customer.LastName
	}
	if acc.Developer != nil {
		id := acc.ID
		user.DeveloperID = &id
		user.CompanyName = acc.Developer.CompanyName
	}

	respond(c, http.StatusOK, "User logged in successfully", gin.H{
		"user":        user,
		"accessToken": token,
	})
}

// AuthMiddleware requires a valid bearer token and stores its claims in the
// context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			fail(c, apperror.Unauthorized("Access token is required", nil))
			return
		}

		claims, err := settings.Tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			fail(c, apperror.Unauthorized("Invalid or expired token", err))
			return
		}

		c.Set(middleware.UserIDKey, claims.UserID)
		c.Set(middleware.UserTypeKey, claims.UserType)
		c.Next()
	}
}
