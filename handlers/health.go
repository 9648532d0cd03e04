package handlers

import (
	"context"
	"net/http"
	"time"

	"gameflix/cache"
	"gameflix/db"

	"github.com/gin-gonic/gin"
)

// Health pings the database and, when configured, redis.
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok", "database": "up", "cache": "disabled"}

	if db.DB == nil {
		status = http.StatusServiceUnavailable
		body["status"], body["database"] = "unavailable", "down"
	} else if sqlDB, err := db.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status = http.StatusServiceUnavailable
		body["status"], body["database"] = "unavailable", "down"
	}

	if cache.IsRedisAvailable() {
		body["cache"] = "up"
		if err := cache.Ping(ctx); err != nil {
			body["cache"] = "down"
		}
	}

	c.JSON(status, body)
}
