package models

import "gorm.io/gorm"

type RiderStatus string

const (
	RiderStatusPending  RiderStatus = "pending"
	RiderStatusActive   RiderStatus = "active"
	RiderStatusRejected RiderStatus = "rejected"
)

type RiderWorkStatus string

const (
	RiderWorkAvailable  RiderWorkStatus = "available"
	RiderWorkInDelivery RiderWorkStatus = "in-delivery"
)

// Rider is a delivery rider application and, once approved, the rider's
// operational record.
type Rider struct {
	gorm.Model
	UserID      uint   `json:"userId" gorm:"column:user_id;uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null"`
	Email       string `json:"email" gorm:"index;not null"`
	Phone       string `json:"phone"`
	District    string `json:"district" gorm:"index;not null"`
	Warehouse   string `json:"warehouse"`
	DocumentURL string `json:"documentUrl" gorm:"column:document_url"`
	Status      string `json:"status" gorm:"not null;default:'pending'"`
	WorkStatus  string `json:"workStatus" gorm:"column:work_status;not null;default:'available'"`
}
