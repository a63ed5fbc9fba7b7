package models

import "gorm.io/gorm"

// TrackingEvent is an append-only log entry for a parcel's journey.
type TrackingEvent struct {
	gorm.Model
	ParcelID   uint   `json:"parcelId" gorm:"column:parcel_id;index;not null"`
	TrackingID string `json:"trackingId" gorm:"column:tracking_id;index;not null"`
	Status     string `json:"status" gorm:"not null"`
	Message    string `json:"message"`
	Location   string `json:"location"`
	ActorEmail string `json:"actorEmail" gorm:"column:actor_email"`
}
