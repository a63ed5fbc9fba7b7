package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health reports service and database liveness
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(503, gin.H{"status": "unavailable"})
			return
		}

		c.JSON(200, gin.H{"status": "ok"})
	}
}
