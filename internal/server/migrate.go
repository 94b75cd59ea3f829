package server

import (
	"fmt"

	"gorm.io/gorm"

	"hubal/internal/domain/auth"
	"hubal/internal/domain/chat"
	"hubal/internal/domain/designer"
	"hubal/internal/domain/notification"
	"hubal/internal/domain/offer"
	"hubal/internal/domain/review"
	"hubal/internal/domain/roomdesign"
	"hubal/internal/domain/servicerequest"
	"hubal/internal/domain/upload"
)

// Migrate creates or updates every table. Order follows references.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&auth.User{},
		&auth.Profile{},
		&auth.UserRole{},
		&designer.Designer{},
		&servicerequest.ServiceRequest{},
		&roomdesign.RoomDesign{},
		&offer.Offer{},
		&chat.Conversation{},
		&chat.Message{},
		review.Model(),
		&notification.Notification{},
		&upload.Upload{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
