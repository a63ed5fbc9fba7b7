package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sojib-web/zap-shift-server/internal/metrics"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"github.com/sojib-web/zap-shift-server/internal/services"
	"github.com/sojib-web/zap-shift-server/pkg/utils"
	"gorm.io/gorm"
)

// CreateParcel handles the creation of a new parcel
func CreateParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var input struct {
			Title           string  `json:"title" binding:"required"`
			Type            string  `json:"type" binding:"required"`
			Weight          float64 `json:"weight"`
			SenderName      string  `json:"senderName" binding:"required"`
			SenderRegion    string  `json:"senderRegion"`
			SenderAddress   string  `json:"senderAddress"`
			ReceiverName    string  `json:"receiverName" binding:"required"`
			ReceiverRegion  string  `json:"receiverRegion"`
			ReceiverAddress string  `json:"receiverAddress"`
			ReceiverPhone   string  `json:"receiverPhone"`
			Cost            int64   `json:"cost" binding:"required,gt=0"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		parcel := models.Parcel{
			TrackingID:      utils.GenerateTrackingID(),
			CreatedBy:       email,
			Title:           input.Title,
			Type:            input.Type,
			Weight:          input.Weight,
			SenderName:      input.SenderName,
			SenderRegion:    input.SenderRegion,
			SenderAddress:   input.SenderAddress,
			ReceiverName:    input.ReceiverName,
			ReceiverRegion:  input.ReceiverRegion,
			ReceiverAddress: input.ReceiverAddress,
			ReceiverPhone:   input.ReceiverPhone,
			Cost:            input.Cost,
			DeliveryStatus:  string(models.DeliveryStatusPending),
			PaymentStatus:   string(models.PaymentStatusUnpaid),
		}

		// Create the parcel and its first tracking event together
		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Create(&parcel).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create parcel"})
			return
		}

		event := models.TrackingEvent{
			ParcelID:   parcel.ID,
			TrackingID: parcel.TrackingID,
			Status:     string(models.DeliveryStatusPending),
			Message:    "Parcel submitted",
			ActorEmail: email,
		}
		if err := tx.Create(&event).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create tracking event"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to complete transaction"})
			return
		}

		metrics.ParcelsCreatedTotal.Inc()

		c.JSON(201, parcel)
	}
}

// ListParcels returns a paginated parcel list, filtered by email and status
func ListParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerEmail := c.GetString("email")
		role := c.GetString("role")

		email := c.Query("email")
		status := c.Query("status")
		page, limit := parsePagination(c)
		offset := (page - 1) * limit

		// Non-admin callers may only list their own parcels
		if role != string(models.UserRoleAdmin) {
			if email != "" && email != callerEmail {
				c.JSON(403, gin.H{"error": "You may only list your own parcels"})
				return
			}
			email = callerEmail
		}

		query := db.Model(&models.Parcel{})
		if email != "" {
			query = query.Where("created_by = ?", email)
		}
		if status != "" {
			query = query.Where("delivery_status = ?", status)
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to count parcels"})
			return
		}

		var parcels []models.Parcel
		if err := query.
			Order("created_at DESC").
			Offset(offset).
			Limit(limit).
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, gin.H{
			"data":  parcels,
			"total": total,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
			},
		})
	}
}

// GetParcel returns one parcel to its owner, assigned rider or an admin
func GetParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcel, ok := loadAuthorizedParcel(c, db)
		if !ok {
			return
		}

		c.JSON(200, parcel)
	}
}

// DeleteParcel removes a parcel before it has been paid or dispatched
func DeleteParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerEmail := c.GetString("email")
		role := c.GetString("role")

		var parcel models.Parcel
		if err := db.First(&parcel, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.CreatedBy != callerEmail && role != string(models.UserRoleAdmin) {
			c.JSON(403, gin.H{"error": "Unauthorized"})
			return
		}

		if parcel.PaymentStatus == string(models.PaymentStatusPaid) ||
			parcel.DeliveryStatus != string(models.DeliveryStatusPending) {
			c.JSON(409, gin.H{"error": "Only pending, unpaid parcels can be deleted"})
			return
		}

		if err := db.Delete(&parcel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete parcel"})
			return
		}

		c.JSON(200, gin.H{"message": "Parcel deleted successfully"})
	}
}

// AssignRider assigns an active rider to a parcel and dispatches it
func AssignRider(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminEmail := c.GetString("email")

		var input struct {
			RiderID uint `json:"riderId" binding:"required"`
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

		if parcel.DeliveryStatus != string(models.DeliveryStatusPending) {
			c.JSON(409, gin.H{"error": "Parcel has already been dispatched"})
			return
		}

		var rider models.Rider
		if err := db.First(&rider, input.RiderID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Rider not found"})
			return
		}
		if rider.Status != string(models.RiderStatusActive) {
			c.JSON(409, gin.H{"error": "Rider is not active"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		parcel.AssignedRiderID = &rider.ID
		parcel.DeliveryStatus = string(models.DeliveryStatusInTransit)
		if err := tx.Save(&parcel).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to assign rider"})
			return
		}

		if err := tx.Model(&rider).Update("work_status", models.RiderWorkInDelivery).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update rider status"})
			return
		}

		event := models.TrackingEvent{
			ParcelID:   parcel.ID,
			TrackingID: parcel.TrackingID,
			Status:     string(models.DeliveryStatusInTransit),
			Message:    "Rider assigned: " + rider.Name,
			ActorEmail: adminEmail,
		}
		if err := tx.Create(&event).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create tracking event"})
			return
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to complete transaction"})
			return
		}

		notifyParcelUpdate(db, hub, &parcel, event)

		go utils.SendOutForDeliverySMS(parcel.ReceiverPhone, parcel.TrackingID)

		c.JSON(200, gin.H{
			"message": "Rider assigned successfully",
			"parcel":  parcel,
		})
	}
}

// UpdateParcelStatus lets the assigned rider move a parcel through delivery
func UpdateParcelStatus(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		riderEmail := c.GetString("email")

		var input struct {
			Status   string `json:"status" binding:"required,oneof=in-transit delivered"`
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

		var rider models.Rider
		if err := db.Where("user_id = ?", userID).First(&rider).Error; err != nil {
			c.JSON(403, gin.H{"error": "No rider record for this account"})
			return
		}

		if parcel.AssignedRiderID == nil || *parcel.AssignedRiderID != rider.ID {
			c.JSON(403, gin.H{"error": "Unauthorized to update this parcel"})
			return
		}

		if parcel.DeliveryStatus == string(models.DeliveryStatusDelivered) {
			c.JSON(409, gin.H{"error": "Parcel has already been delivered"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		parcel.DeliveryStatus = input.Status
		if err := tx.Save(&parcel).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update parcel status"})
			return
		}

		event := models.TrackingEvent{
			ParcelID:   parcel.ID,
			TrackingID: parcel.TrackingID,
			Status:     input.Status,
			Message:    input.Message,
			Location:   input.Location,
			ActorEmail: riderEmail,
		}
		if err := tx.Create(&event).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to create tracking event"})
			return
		}

		// Delivery completion frees the rider
		if input.Status == string(models.DeliveryStatusDelivered) {
			if err := tx.Model(&rider).Update("work_status", models.RiderWorkAvailable).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to update rider status"})
				return
			}
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to complete transaction"})
			return
		}

		metrics.TrackingEventsTotal.Inc()
		notifyParcelUpdate(db, hub, &parcel, event)

		if input.Status == string(models.DeliveryStatusDelivered) {
			go utils.SendDeliveryNotificationSMS(parcel.ReceiverPhone, parcel.TrackingID)
		}

		c.JSON(200, gin.H{
			"message": "Parcel status updated successfully",
			"parcel":  parcel,
		})
	}
}

// loadAuthorizedParcel fetches the parcel from the :id param and checks the
// caller is its owner, its assigned rider or an admin
func loadAuthorizedParcel(c *gin.Context, db *gorm.DB) (*models.Parcel, bool) {
	callerEmail := c.GetString("email")
	role := c.GetString("role")
	userID := c.GetUint("userId")

	var parcel models.Parcel
	if err := db.First(&parcel, c.Param("id")).Error; err != nil {
		c.JSON(404, gin.H{"error": "Parcel not found"})
		return nil, false
	}

	if parcel.CreatedBy == callerEmail || role == string(models.UserRoleAdmin) {
		return &parcel, true
	}

	if role == string(models.UserRoleRider) && parcel.AssignedRiderID != nil {
		var rider models.Rider
		if err := db.Where("user_id = ?", userID).First(&rider).Error; err == nil &&
			rider.ID == *parcel.AssignedRiderID {
			return &parcel, true
		}
	}

	c.JSON(403, gin.H{"error": "Unauthorized"})
	return nil, false
}

// notifyParcelUpdate fans a status change out to the owner: websocket push,
// FCM notification, redis publish and tracking-cache invalidation
func notifyParcelUpdate(db *gorm.DB, hub *services.Hub, parcel *models.Parcel, event models.TrackingEvent) {
	ctx := context.Background()

	if services.RedisClient != nil {
		services.InvalidateTrackingCache(ctx, parcel.TrackingID)
		services.PublishParcelUpdate(ctx, parcel.ID, parcel.TrackingID, event.Status, map[string]interface{}{
			"message":  event.Message,
			"location": event.Location,
		})
	}

	var owner models.User
	if err := db.Where("email = ?", parcel.CreatedBy).First(&owner).Error; err != nil {
		return
	}

	if hub != nil {
		hub.SendParcelUpdate(owner.ID, services.ParcelStatusUpdate{
			ParcelID:   parcel.ID,
			TrackingID: parcel.TrackingID,
			Status:     event.Status,
			Message:    event.Message,
			Location:   event.Location,
		})
	}

	services.NotifyParcelStatus(ctx, owner.FCMToken, parcel.TrackingID, event.Status)
}
