package models

import "gorm.io/gorm"

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusInTransit DeliveryStatus = "in-transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type Parcel struct {
	gorm.Model
	TrackingID      string  `json:"trackingId" gorm:"column:tracking_id;uniqueIndex;not null"`
	CreatedBy       string  `json:"createdBy" gorm:"column:created_by;index;not null"`
	Title           string  `json:"title" gorm:"not null"`
	Type            string  `json:"type" gorm:"not null"`
	Weight          float64 `json:"weight"`
	SenderName      string  `json:"senderName" gorm:"not null"`
	SenderRegion    string  `json:"senderRegion"`
	SenderAddress   string  `json:"senderAddress"`
	ReceiverName    string  `json:"receiverName" gorm:"not null"`
	ReceiverRegion  string  `json:"receiverRegion"`
	ReceiverAddress string  `json:"receiverAddress"`
	ReceiverPhone   string  `json:"receiverPhone"`
	// Cost is in minor currency units
	Cost            int64  `json:"cost" gorm:"not null"`
	DeliveryStatus  string `json:"deliveryStatus" gorm:"column:delivery_status;not null;default:'pending'"`
	PaymentStatus   string `json:"paymentStatus" gorm:"column:payment_status;not null;default:'unpaid'"`
	AssignedRiderID *uint  `json:"assignedRiderId" gorm:"column:assigned_rider_id;index"`
}
