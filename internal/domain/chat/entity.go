package chat

import (
	"fmt"
	"time"
)

const (
	MaxMessageLength = 2000
	fallbackName     = "مستخدم"
)

// Conversation pairs one customer with one designer, optionally for a
// specific service request. ThreadKey makes that triple unique.
type Conversation struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	CustomerID       int64      `gorm:"not null;index" json:"customer_id"`
	DesignerID       int64      `gorm:"not null;index" json:"designer_id"`
	ServiceRequestID *int64     `gorm:"index" json:"service_request_id,omitempty"`
	ThreadKey        string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	LastMessageAt    *time.Time `json:"last_message_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

// ThreadKey encodes (customer, designer, request); a missing request is 0.
func ThreadKey(customerID, designerID int64, serviceRequestID *int64) string {
	var req int64
	if serviceRequestID != nil {
		req = *serviceRequestID
	}
	return fmt.Sprintf("%d:%d:%d", customerID, designerID, req)
}

func (c *Conversation) HasParticipant(userID int64) bool {
	return c.CustomerID == userID || c.DesignerID == userID
}

func (c *Conversation) OtherParty(userID int64) int64 {
	if c.CustomerID == userID {
		return c.DesignerID
	}
	return c.CustomerID
}

type Message struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ConversationID int64     `gorm:"not null;index" json:"conversation_id"`
	SenderID       int64     `gorm:"not null" json:"sender_id"`
	ReceiverID     int64     `gorm:"not null;index:idx_messages_receiver_unread,priority:1" json:"receiver_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"not null;default:false;index:idx_messages_receiver_unread,priority:2" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// Summary is one row of the conversation list.
type Summary struct {
	Conversation
	OtherUserID    int64    `json:"other_user_id"`
	OtherUserName  string   `json:"other_user_name"`
	OtherAvatarURL *string  `json:"other_user_avatar_url,omitempty"`
	LastMessage    *Message `json:"last_message,omitempty"`
	UnreadCount    int64    `json:"unread_count"`
}
