package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sojib-web/zap-shift-server/internal/ledger"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"github.com/sojib-web/zap-shift-server/internal/services"
	"github.com/sojib-web/zap-shift-server/pkg/utils"
	"gorm.io/gorm"
)

// RecordPayment records a completed payment against a parcel
func RecordPayment(db *gorm.DB, paymentLedger *ledger.PaymentLedger, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		callerEmail := c.GetString("email")
		role := c.GetString("role")

		var input struct {
			ParcelID      uint   `json:"parcelId" binding:"required"`
			Email         string `json:"email" binding:"required,email"`
			Amount        int64  `json:"amount" binding:"required,gt=0"`
			PaymentMethod string `json:"paymentMethod" binding:"required"`
			TransactionID string `json:"transactionId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// A caller may only pay as themselves unless they are an admin
		if role != string(models.UserRoleAdmin) && input.Email != callerEmail {
			c.JSON(403, gin.H{"error": "You may only record payments for your own email"})
			return
		}

		insertedID, err := paymentLedger.RecordPayment(c.Request.Context(), ledger.RecordPaymentInput{
			ParcelID:      input.ParcelID,
			Email:         input.Email,
			Amount:        input.Amount,
			PaymentMethod: input.PaymentMethod,
			TransactionID: input.TransactionID,
		})
		if err != nil {
			var persistErr *ledger.PersistFailedError
			switch {
			case errors.Is(err, ledger.ErrInvalidInput):
				c.JSON(400, gin.H{"error": err.Error()})
			case errors.Is(err, ledger.ErrDuplicateTransaction):
				c.JSON(409, gin.H{"error": "Transaction already recorded"})
			case errors.Is(err, ledger.ErrParcelAlreadyPaid):
				c.JSON(409, gin.H{"error": "Parcel already paid"})
			case errors.Is(err, ledger.ErrParcelNotFound):
				c.JSON(404, gin.H{"error": "Parcel not found"})
			case errors.As(err, &persistErr):
				// Distinct from a generic failure: the parcel is paid but
				// the payment record is missing and must be reconciled
				c.JSON(500, gin.H{
					"error":         "Payment state changed but the record could not be persisted",
					"parcelId":      persistErr.ParcelID,
					"transactionId": persistErr.TransactionID,
				})
			default:
				log.Printf("RecordPayment failed: %v", err)
				c.JSON(500, gin.H{"error": "Failed to record payment"})
			}
			return
		}

		// Best-effort notifications; the payment is already durable
		var parcel models.Parcel
		if err := db.First(&parcel, input.ParcelID).Error; err == nil {
			if hub != nil {
				hub.SendPaymentRecorded(userID, services.PaymentRecorded{
					ParcelID:      parcel.ID,
					PaymentID:     insertedID,
					Amount:        input.Amount,
					TransactionID: input.TransactionID,
				})
			}

			var payer models.User
			if err := db.Where("email = ?", input.Email).First(&payer).Error; err == nil {
				services.NotifyPaymentRecorded(context.Background(), payer.FCMToken, parcel.TrackingID, input.Amount)
			}

			go func(email, trackingID, transactionID string, amount int64) {
				if err := utils.SendPaymentReceiptEmail(email, trackingID, transactionID, amount); err != nil {
					log.Printf("Failed to send payment receipt: %v", err)
				}
			}(input.Email, parcel.TrackingID, input.TransactionID, input.Amount)
		}

		c.JSON(201, gin.H{
			"message":    "Payment recorded successfully",
			"insertedId": insertedID,
		})
	}
}

// ListPayments returns the caller's payments, newest first
func ListPayments(paymentLedger *ledger.PaymentLedger) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerEmail := c.GetString("email")
		role := c.GetString("role")

		email := c.Query("email")
		page, limit := parsePagination(c)

		// An identity may only list its own payments unless privileged
		if role != string(models.UserRoleAdmin) {
			if email != "" && email != callerEmail {
				c.JSON(403, gin.H{"error": "You may only list your own payments"})
				return
			}
			email = callerEmail
		}

		payments, total, err := paymentLedger.ListPayments(c.Request.Context(), ledger.ListQuery{
			Email:    email,
			Page:     page,
			PageSize: limit,
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch payments"})
			return
		}

		if payments == nil {
			payments = []models.Payment{}
		}

		c.JSON(200, gin.H{
			"data":  payments,
			"total": total,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
			},
		})
	}
}

// CreatePaymentIntent delegates to Stripe and returns the client secret
func CreatePaymentIntent() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Amount   int64  `json:"amount" binding:"required,gt=0"`
			Currency string `json:"currency"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		clientSecret, err := services.CreatePaymentIntent(input.Amount, input.Currency)
		if err != nil {
			log.Printf("Stripe payment intent error: %v", err)
			c.JSON(502, gin.H{"error": "Failed to create payment intent"})
			return
		}

		c.JSON(200, gin.H{"clientSecret": clientSecret})
	}
}
