package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health pings the database and, when configured, Redis. A missing Redis is
// reported as "disabled" and does not fail the check.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}
		redisOK := true
		if rdb == nil {
			body["redis"] = "disabled"
		} else if rdb.Ping(ctx).Err() != nil {
			body["redis"] = "error"
			redisOK = false
		} else {
			body["redis"] = "connected"
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueEmail); err == nil {
				body["email_dlq"] = n
			}
		}

		ok := dbStatus == "connected" && redisOK
		body["ok"] = ok
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
