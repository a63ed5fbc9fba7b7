package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is an immutable record of one completed transaction against one
// parcel. There is no update or delete path.
type Payment struct {
	gorm.Model
	ParcelID uint   `json:"parcelId" gorm:"column:parcel_id;not null"`
	Email    string `json:"email" gorm:"index;not null"`
	// Amount is in minor currency units
	Amount        int64     `json:"amount" gorm:"not null"`
	PaymentMethod string    `json:"paymentMethod" gorm:"column:payment_method;not null"`
	TransactionID string    `json:"transactionId" gorm:"column:transaction_id;uniqueIndex;not null"`
	PaidAt        time.Time `json:"paidAt" gorm:"column:paid_at;index;not null"`
}
