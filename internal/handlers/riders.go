package handlers

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"github.com/sojib-web/zap-shift-server/internal/services"
	"github.com/sojib-web/zap-shift-server/pkg/utils"
	"gorm.io/gorm"
)

// ApplyRider handles a new rider application with a document upload
func ApplyRider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		email := c.GetString("email")

		var input struct {
			Name      string `form:"name" binding:"required"`
			Phone     string `form:"phone" binding:"required"`
			District  string `form:"district" binding:"required"`
			Warehouse string `form:"warehouse"`
		}

		// Parse form data
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// One application per account
		var existing models.Rider
		if err := db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
			c.JSON(409, gin.H{"error": "You have already applied as a rider"})
			return
		}

		// Handle file upload
		file, err := c.FormFile("document")
		if err != nil {
			c.JSON(400, gin.H{"error": "Identity document is required"})
			return
		}

		documentURL, err := services.UploadDocument(file, "riders")
		if err != nil {
			c.JSON(500, gin.H{
				"error":   "Failed to upload document",
				"details": err.Error(),
			})
			return
		}

		rider := models.Rider{
			UserID:      userID,
			Name:        input.Name,
			Email:       email,
			Phone:       input.Phone,
			District:    input.District,
			Warehouse:   input.Warehouse,
			DocumentURL: documentURL,
			Status:      string(models.RiderStatusPending),
			WorkStatus:  string(models.RiderWorkAvailable),
		}

		if err := db.Create(&rider).Error; err != nil {
			c.JSON(500, gin.H{
				"error":   "Failed to create rider application",
				"details": err.Error(),
			})
			return
		}

		c.JSON(201, rider)
	}
}

// PendingRiders lists pending rider applications for admins
func PendingRiders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePagination(c)
		offset := (page - 1) * limit

		var total int64
		db.Model(&models.Rider{}).
			Where("status = ?", models.RiderStatusPending).
			Count(&total)

		var riders []models.Rider
		if err := db.Where("status = ?", models.RiderStatusPending).
			Order("created_at ASC").
			Offset(offset).
			Limit(limit).
			Find(&riders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rider applications"})
			return
		}

		c.JSON(200, gin.H{
			"data":  riders,
			"total": total,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
			},
		})
	}
}

// UpdateRiderStatus approves or rejects a rider application
func UpdateRiderStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderIDStr := c.Param("id")
		riderID, err := strconv.ParseUint(riderIDStr, 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid rider ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required,oneof=active rejected"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var rider models.Rider
		if err := db.First(&rider, uint(riderID)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Rider application not found"})
			return
		}

		tx := db.Begin()
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		if err := tx.Model(&rider).Update("status", input.Status).Error; err != nil {
			tx.Rollback()
			c.JSON(500, gin.H{"error": "Failed to update rider status"})
			return
		}

		// Approval promotes the backing user account to the rider role
		if input.Status == string(models.RiderStatusActive) {
			if err := tx.Model(&models.User{}).
				Where("id = ?", rider.UserID).
				Update("role", models.UserRoleRider).Error; err != nil {
				tx.Rollback()
				c.JSON(500, gin.H{"error": "Failed to update user role"})
				return
			}
		}

		if err := tx.Commit().Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to complete transaction"})
			return
		}

		go func(status, email, name string) {
			var err error
			if status == string(models.RiderStatusActive) {
				err = utils.SendRiderApprovedEmail(email, name)
			} else {
				err = utils.SendRiderRejectedEmail(email, name)
			}
			if err != nil {
				log.Printf("Failed to send rider status email: %v", err)
			}
		}(input.Status, rider.Email, rider.Name)

		c.JSON(200, gin.H{
			"message": "Rider status updated successfully",
			"id":      rider.ID,
			"status":  input.Status,
		})
	}
}

// ActiveRiders lists active riders, optionally filtered by district
func ActiveRiders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		district := c.Query("district")

		query := db.Where("status = ?", models.RiderStatusActive)
		if district != "" {
			query = query.Where("district = ?", district)
		}

		var riders []models.Rider
		if err := query.Order("name ASC").Find(&riders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch riders"})
			return
		}

		c.JSON(200, gin.H{"data": riders})
	}
}

// RiderParcels lists the parcels assigned to the calling rider
func RiderParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var rider models.Rider
		if err := db.Where("user_id = ?", userID).First(&rider).Error; err != nil {
			c.JSON(404, gin.H{"error": "No rider record for this account"})
			return
		}

		page, limit := parsePagination(c)
		offset := (page - 1) * limit

		var total int64
		db.Model(&models.Parcel{}).
			Where("assigned_rider_id = ?", rider.ID).
			Count(&total)

		var parcels []models.Parcel
		if err := db.Where("assigned_rider_id = ?", rider.ID).
			Order("created_at DESC").
			Offset(offset).
			Limit(limit).
			Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch assigned parcels"})
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
