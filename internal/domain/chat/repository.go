package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository handles all DB operations for the chat domain
type Repository interface {
	// Conversations
	CreateConversation(ctx context.Context, c *Conversation) error
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	FindByThreadKey(ctx context.Context, key string) (*Conversation, error)
	ListByUser(ctx context.Context, userID int64) ([]Conversation, error)

	// Messages
	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]Message, error)
	LastMessages(ctx context.Context, conversationIDs []int64) (map[int64]Message, error)
	UnreadByConversation(ctx context.Context, userID int64) (map[int64]int64, error)
	MarkRead(ctx context.Context, conversationID, userID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	return &c, err
}

// FindByThreadKey returns nil, nil when there is no such conversation yet.
func (r *repository) FindByThreadKey(ctx context.Context, key string) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).Where("thread_key = ?", key).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Conversation, error) {
	var out []Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? OR designer_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// CreateMessage stores the message and bumps the conversation in one go.
func (r *repository) CreateMessage(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", msg.CreatedAt).Error
	})
}

// ListMessages pages from the newest message backwards and returns the page
// in chronological order.
func (r *repository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]Message, error) {
	var msgs []Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *repository) LastMessages(ctx context.Context, conversationIDs []int64) (map[int64]Message, error) {
	out := make(map[int64]Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	latest := r.db.Model(&Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var msgs []Message
	if err := r.db.WithContext(ctx).Where("id IN (?)", latest).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for _, m := range msgs {
		out[m.ConversationID] = m
	}
	return out, nil
}

func (r *repository) UnreadByConversation(ctx context.Context, userID int64) (map[int64]int64, error) {
	var rows []struct {
		ConversationID int64
		Count          int64
	}
	err := r.db.WithContext(ctx).
		Model(&Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.ConversationID] = row.Count
	}
	return out, nil
}

// MarkRead only touches unread rows addressed to userID, so repeating it is
// a no-op.
func (r *repository) MarkRead(ctx context.Context, conversationID, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND is_read = ?", conversationID, userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
