package realtime

import (
	"context"
	"strconv"
)

const (
	EventMessageCreated      = "message.created"
	EventConversationRead    = "conversation.read"
	EventNotificationCreated = "notification.created"
	EventTyping              = "typing"
	EventError               = "error"
	EventPong                = "pong"
)

// Event is what clients receive over the socket.
type Event struct {
	Type    string `json:"type"`
	Topic   string `json:"topic,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher is implemented by the Hub; domain services depend on this
// instead of the hub itself.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// Authorizer decides whether a user may follow a conversation.
type Authorizer interface {
	IsParticipant(ctx context.Context, userID, conversationID int64) (bool, error)
}

func UserTopic(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func ConversationTopic(conversationID int64) string {
	return "conversation:" + strconv.FormatInt(conversationID, 10)
}

// NopPublisher drops events. Used by tests and tools that run without a hub.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
