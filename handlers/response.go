package handlers

import (
	"net/http"
	"time"

	"gameflix/apperror"
	"gameflix/db"
	"gameflix/middleware"
	"gameflix/store"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Settings holds what handlers need beyond the database.
type Settings struct {
	Tokens           *utils.TokenManager
	ExposeResetToken bool
}

var settings = Settings{
	Tokens:           utils.NewTokenManager("gameflix-dev-secret", 72*time.Hour),
	ExposeResetToken: true,
}

// Configure replaces the handler settings; call it before serving.
func Configure(s Settings) {
	settings = s
}

const resetTokenTTL = time.Hour

func dbStore() *store.Store {
	return store.New(db.DB)
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// respond writes the success envelope with payload merged in.
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"error": false, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail writes the error envelope. 5xx causes are attached to the context
// for the error logger and never sent to the client.
func fail(c *gin.Context, appErr *apperror.AppError) {
	if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		_ = c.Error(appErr)
	}
	c.AbortWithStatusJSON(appErr.Status, appErr.Envelope())
}

func failInternal(c *gin.Context, message string, err error) {
	fail(c, apperror.Internal(message, err))
}

// bind decodes and validates the JSON body. Missing required fields are
// reported with requiredMsg, any other validation failure with invalidMsg.
func bind(c *gin.Context, dst interface{}, requiredMsg, invalidMsg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperror.BadRequest(requiredMsg, err))
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		msg := invalidMsg
		if msg == "" || hasRequiredFailure(err) {
			msg = requiredMsg
		}
		utils.ValidationErrorResponse(c, msg, err)
		c.Abort()
		return false
	}
	return true
}

func hasRequiredFailure(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, e := range verrs {
		if e.Tag() == "required" {
			return true
		}
	}
	return false
}

// requireSelf lets a customer act only on their own resources.
func requireSelf(c *gin.Context, accountID string) bool {
	if currentUserID(c) != accountID {
		fail(c, apperror.Forbidden("You can only access your own account"))
		return false
	}
	return true
}

// NotFound answers unmatched routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": true, "status": http.StatusNotFound, "message": "Not Found"})
}

// MethodNotAllowed answers known paths hit with the wrong method.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": true, "status": http.StatusMethodNotAllowed, "message": "Method Not Allowed"})
}
