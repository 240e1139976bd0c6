package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/psholiveira/barber-system/internal/infra"
	"github.com/psholiveira/barber-system/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// The database is required; Redis only backs the cache and the rate limiter,
// so losing it degrades the service without failing the check.
func Health(db *gorm.DB, rdb *redis.Client, cache *infra.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		var deadJobs int64
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else {
				deadJobs, _ = worker.DLQLength(ctx, rdb, worker.QueueCommissions)
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"cache": cache.State(),
			"dlq":   deadJobs,
		})
	}
}
