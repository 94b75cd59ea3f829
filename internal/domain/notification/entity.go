package notification

import (
	"time"

	"gorm.io/datatypes"
)

// Type represents notification type
type Type string

const (
	// Offers
	TypeNewOffer             Type = "new_offer"              // Customer: a designer bid on their design
	TypeOfferAccepted        Type = "offer_accepted"         // Designer
	TypeOfferRejected        Type = "offer_rejected"         // Designer
	TypeCounterOffer         Type = "counter_offer"          // Customer
	TypeCounterOfferAccepted Type = "counter_offer_accepted" // Designer
	TypeCounterOfferRejected Type = "counter_offer_rejected" // Designer

	// Service requests
	TypeNewServiceRequest Type = "new_service_request" // Designer
	TypeRequestAccepted   Type = "request_accepted"    // Customer
	TypeRequestRejected   Type = "request_rejected"    // Customer
	TypeRequestCompleted  Type = "request_completed"   // Customer
	TypeRequestCancelled  Type = "request_cancelled"   // Designer

	TypeNewMessage      Type = "new_message"
	TypeNewReview       Type = "new_review"       // Designer
	TypeDesignGenerated Type = "design_generated" // Customer
)

// Notification is a user-addressed event record.
type Notification struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	UserID    int64          `gorm:"not null;index:idx_notifications_user_created,priority:1;index:idx_notifications_user_unread,priority:1" json:"user_id"`
	Type      Type           `gorm:"size:50;not null" json:"type"`
	Title     string         `gorm:"size:200;not null" json:"title"`
	Message   string         `gorm:"not null" json:"message"`
	Data      datatypes.JSON `json:"data,omitempty"`
	IsRead    bool           `gorm:"not null;default:false;index:idx_notifications_user_unread,priority:2" json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `gorm:"index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
