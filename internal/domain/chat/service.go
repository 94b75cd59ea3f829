package chat

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"hubal/internal/database"
	"hubal/internal/domain/auth"
	"hubal/internal/metrics"
	"hubal/internal/pkg/validator"
	"hubal/internal/realtime"
)

// ProfileReader resolves the other party's name and avatar.
type ProfileReader interface {
	PublicProfiles(ctx context.Context, userIDs []int64) (map[int64]auth.PublicProfile, error)
}

// Service handles chat business logic
type Service struct {
	repo      Repository
	profiles  ProfileReader
	publisher realtime.Publisher
}

func NewService(repo Repository, profiles ProfileReader, publisher realtime.Publisher) *Service {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &Service{repo: repo, profiles: profiles, publisher: publisher}
}

// GetOrCreate returns the conversation for (customer, designer, request),
// creating it on first contact. A concurrent creator losing on the unique
// thread key re-reads the winner's row.
func (s *Service) GetOrCreate(ctx context.Context, customerID, designerID int64, serviceRequestID *int64) (*Conversation, error) {
	if customerID == designerID {
		return nil, ErrCannotChatSelf
	}

	key := ThreadKey(customerID, designerID, serviceRequestID)
	existing, err := s.repo.FindByThreadKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	conv := &Conversation{
		CustomerID:       customerID,
		DesignerID:       designerID,
		ServiceRequestID: serviceRequestID,
		ThreadKey:        key,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, err
		}
		existing, err := s.repo.FindByThreadKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrConversationNotFound
		}
		return existing, nil
	}

	zerolog.Ctx(ctx).Info().
		Int64("conversation_id", conv.ID).
		Int64("customer_id", customerID).
		Int64("designer_id", designerID).
		Msg("conversation created")
	return conv, nil
}

// Start opens a conversation with otherUserID, placing the caller on the
// side that matches their role.
func (s *Service) Start(ctx context.Context, userID int64, role string, otherUserID int64, serviceRequestID *int64) (*Conversation, error) {
	switch role {
	case string(auth.RoleCustomer):
		return s.GetOrCreate(ctx, userID, otherUserID, serviceRequestID)
	case string(auth.RoleDesigner):
		return s.GetOrCreate(ctx, otherUserID, userID, serviceRequestID)
	default:
		return nil, ErrRoleRequired
	}
}

func (s *Service) List(ctx context.Context, userID int64) ([]Summary, error) {
	convs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []Summary{}, nil
	}

	convIDs := make([]int64, 0, len(convs))
	otherIDs := make([]int64, 0, len(convs))
	for _, c := range convs {
		convIDs = append(convIDs, c.ID)
		otherIDs = append(otherIDs, c.OtherParty(userID))
	}

	profiles := map[int64]auth.PublicProfile{}
	if s.profiles != nil {
		if profiles, err = s.profiles.PublicProfiles(ctx, otherIDs); err != nil {
			return nil, err
		}
	}
	last, err := s.repo.LastMessages(ctx, convIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadByConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(convs))
	for _, c := range convs {
		other := c.OtherParty(userID)
		sum := Summary{
			Conversation:  c,
			OtherUserID:   other,
			OtherUserName: fallbackName,
			UnreadCount:   unread[c.ID],
		}
		if p, ok := profiles[other]; ok && p.Name != "" {
			sum.OtherUserName = p.Name
			sum.OtherAvatarURL = p.AvatarURL
		}
		if m, ok := last[c.ID]; ok {
			sum.LastMessage = &m
		}
		out = append(out, sum)
	}
	return out, nil
}

// Get returns the conversation if userID takes part in it.
func (s *Service) Get(ctx context.Context, userID, conversationID int64) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func (s *Service) Messages(ctx context.Context, userID, conversationID int64, limit, offset int) ([]Message, error) {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}

// Send validates the text before touching the database, then stores it
// addressed to the other participant.
func (s *Service) Send(ctx context.Context, userID, conversationID int64, content string) (*Message, error) {
	content, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}

	conv, err := s.Get(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       userID,
		ReceiverID:     conv.OtherParty(userID),
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	metrics.MessagesSent.Inc()

	event := realtime.Event{Type: realtime.EventMessageCreated, Payload: msg}
	for _, topic := range []string{realtime.ConversationTopic(conv.ID), realtime.UserTopic(msg.ReceiverID)} {
		if err := s.publisher.Publish(ctx, topic, event); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("failed to publish message")
		}
	}
	return msg, nil
}

// MarkRead marks everything addressed to userID in the conversation as read.
func (s *Service) MarkRead(ctx context.Context, userID, conversationID int64) (int64, error) {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return 0, err
	}

	updated, err := s.repo.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		if err := s.publisher.Publish(ctx, realtime.ConversationTopic(conversationID), realtime.Event{
			Type:    realtime.EventConversationRead,
			Payload: map[string]int64{"conversation_id": conversationID, "reader_id": userID},
		}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to publish read receipt")
		}
	}
	return updated, nil
}

// UnreadCount returns the total and the per-conversation breakdown.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, map[int64]int64, error) {
	per, err := s.repo.UnreadByConversation(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	var total int64
	for _, n := range per {
		total += n
	}
	return total, per, nil
}

// IsParticipant lets the realtime hub authorise conversation subscriptions.
func (s *Service) IsParticipant(ctx context.Context, userID, conversationID int64) (bool, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if errors.Is(err, ErrConversationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return conv.HasParticipant(userID), nil
}

// ValidateContent normalises the text and enforces 1..2000 characters.
func ValidateContent(content string) (string, error) {
	content = validator.CleanText(content)
	n := validator.RuneLen(content)
	switch {
	case n == 0:
		return "", ErrEmptyMessage
	case n > MaxMessageLength:
		return "", ErrMessageTooLong
	}
	return content, nil
}
