package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sojib-web/zap-shift-server/internal/metrics"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"github.com/sojib-web/zap-shift-server/internal/services"
	"gorm.io/gorm"
)

// GetTracking is the public tracking lookup by tracking id
func GetTracking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		trackingID := c.Param("trackingId")

		// Serve from cache when possible; tracking pages are refreshed often
		if services.RedisClient != nil {
			if events, err := services.GetTrackingCache(c.Request.Context(), trackingID); err == nil {
				c.JSON(200, gin.H{
					"trackingId": trackingID,
					"events":     events,
				})
				return
			}
		}

		var parcel models.Parcel
		if err := db.Where("tracking_id = ?", trackingID).First(&parcel).Error; err != nil {
			c.JSON(404, gin.H{"error": "Tracking ID not found"})
			return
		}

		var events []models.TrackingEvent
		if err := db.Where("parcel_id = ?", parcel.ID).
			Order("created_at ASC").
			Find(&events).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch tracking events"})
			return
		}

		if services.RedisClient != nil {
			services.SetTrackingCache(c.Request.Context(), trackingID, events)
		}

		c.JSON(200, gin.H{
			"trackingId":     trackingID,
			"deliveryStatus": parcel.DeliveryStatus,
			"events":         events,
		})
	}
}

// GetParcelTracking returns a parcel's tracking events to authorized callers
func GetParcelTracking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcel, ok := loadAuthorizedParcel(c, db)
		if !ok {
			return
		}

		var events []models.TrackingEvent
		if err := db.Where("parcel_id = ?", parcel.ID).
			Order("created_at ASC").
			Find(&events).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch tracking events"})
			return
		}

		c.JSON(200, gin.H{
			"parcelId":   parcel.ID,
			"trackingId": parcel.TrackingID,
			"events":     events,
		})
	}
}

// AddTrackingEvent appends a tracking event; riders and admins only
func AddTrackingEvent(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		actorEmail := c.GetString("email")

		if role != string(models.UserRoleAdmin) && role != string(models.UserRoleRider) {
			c.JSON(403, gin.H{"error": "Only riders and admins can add tracking events"})
			return
		}

		var input struct {
			Status   string `json:"status" binding:"required"`
			Message  string `json:"message"`
			Location string `json:"location"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		event := models.TrackingEvent{
			ParcelID:   parcel.ID,
			TrackingID: parcel.TrackingID,
			Status:     input.Status,
			Message:    input.Message,
			Location:   input.Location,
			ActorEmail: actorEmail,
		}

		if err := db.Create(&event).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create tracking event"})
			return
		}

		metrics.TrackingEventsTotal.Inc()
		notifyParcelUpdate(db, hub, &parcel, event)

		c.JSON(201, event)
	}
}
