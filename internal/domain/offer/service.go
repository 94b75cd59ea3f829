package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"hubal/internal/domain/auth"
	"hubal/internal/domain/chat"
	"hubal/internal/domain/designer"
	"hubal/internal/domain/roomdesign"
	"hubal/internal/metrics"
	"hubal/internal/pkg/validator"
)

type DesignReader interface {
	GetByID(ctx context.Context, id int64) (*roomdesign.RoomDesign, error)
}

type DesignerReader interface {
	GetByUserIDs(ctx context.Context, userIDs []int64) ([]designer.Designer, error)
}

type ProfileReader interface {
	PublicProfiles(ctx context.Context, userIDs []int64) (map[int64]auth.PublicProfile, error)
}

type Notifier interface {
	NotifyNewOffer(ctx context.Context, customerID, offerID, roomDesignID int64, price float64) error
	NotifyOfferAccepted(ctx context.Context, designerID, offerID, roomDesignID, conversationID int64) error
	NotifyOfferRejected(ctx context.Context, designerID, offerID, roomDesignID int64) error
	NotifyCounterOffer(ctx context.Context, customerID, offerID, roomDesignID int64, price float64) error
	NotifyCounterOfferAccepted(ctx context.Context, designerID, offerID, roomDesignID, conversationID int64, price float64) error
	NotifyCounterOfferRejected(ctx context.Context, designerID, offerID, roomDesignID int64) error
}

type ConversationOpener interface {
	GetOrCreate(ctx context.Context, customerID, designerID int64, serviceRequestID *int64) (*chat.Conversation, error)
}

// Service runs the offer / counter-offer negotiation.
type Service struct {
	repo          Repository
	designs       DesignReader
	designers     DesignerReader
	profiles      ProfileReader
	notifier      Notifier
	conversations ConversationOpener
}

func NewService(repo Repository, designs DesignReader, designers DesignerReader, profiles ProfileReader, notifier Notifier, conversations ConversationOpener) *Service {
	return &Service{
		repo:          repo,
		designs:       designs,
		designers:     designers,
		profiles:      profiles,
		notifier:      notifier,
		conversations: conversations,
	}
}

// Submit places a designer's bid on an open room design.
func (s *Service) Submit(ctx context.Context, designerID, roomDesignID int64, req SubmitRequest) (*View, error) {
	d, err := s.design(ctx, roomDesignID)
	if err != nil {
		return nil, err
	}
	if d.UserID == designerID {
		return nil, ErrSelfOffer
	}
	if d.Status != roomdesign.StatusOpen {
		return nil, ErrDesignNotOpen
	}
	live, err := s.repo.HasLive(ctx, designerID, roomDesignID)
	if err != nil {
		return nil, fmt.Errorf("check live offer: %w", err)
	}
	if live {
		return nil, ErrOfferExists
	}

	o := &Offer{
		RoomDesignID:  roomDesignID,
		DesignerID:    designerID,
		Price:         req.Price,
		EstimatedDays: req.EstimatedDays,
		Message:       cleanOptional(req.Message),
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	metrics.OfferTransitions.WithLabelValues("none", string(StatusPending)).Inc()

	if err := s.notifier.NotifyNewOffer(ctx, d.UserID, o.ID, d.ID, o.Price); err != nil {
		s.logSideEffect(ctx, err, o.ID, "notify new offer failed")
	}
	v := newView(*o)
	return &v, nil
}

// ListForRoomDesign returns every offer on an owned design, newest first.
func (s *Service) ListForRoomDesign(ctx context.Context, ownerID, roomDesignID int64) ([]View, error) {
	d, err := s.design(ctx, roomDesignID)
	if err != nil {
		return nil, err
	}
	if d.UserID != ownerID {
		return nil, ErrForbidden
	}
	offers, err := s.repo.ListByRoomDesign(ctx, roomDesignID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, offers)
}

// ListMine returns the designer's offers with the designs they target.
func (s *Service) ListMine(ctx context.Context, designerID int64) ([]MineView, error) {
	offers, err := s.repo.ListByDesigner(ctx, designerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(offers))
	for _, o := range offers {
		ids = append(ids, o.RoomDesignID)
	}
	designs, err := s.repo.RoomDesigns(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]MineView, 0, len(offers))
	for _, o := range offers {
		mv := MineView{View: newView(o)}
		if d, ok := designs[o.RoomDesignID]; ok {
			mv.RoomDesign = &d
		}
		out = append(out, mv)
	}
	return out, nil
}

// Get returns one offer to either party.
func (s *Service) Get(ctx context.Context, userID, offerID int64) (*View, error) {
	o, d, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if userID != d.UserID && userID != o.DesignerID {
		return nil, ErrOfferNotFound
	}
	views, err := s.enrich(ctx, []Offer{*o})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Accept takes a pending offer as-is and awards the design.
func (s *Service) Accept(ctx context.Context, customerID, offerID int64) (*Result, error) {
	o, d, err := s.ownedBy(ctx, customerID, offerID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, o, StatusPending, StatusAccepted, nil, &Award{RoomDesignID: d.ID, DesignerID: o.DesignerID, OfferID: o.ID}); err != nil {
		return nil, err
	}

	res := &Result{Offer: newView(*o)}
	var convID int64
	if conv := s.openConversation(ctx, d.UserID, o.DesignerID, o.ID); conv != nil {
		convID = conv.ID
		res.ConversationID = &conv.ID
	}
	if err := s.notifier.NotifyOfferAccepted(ctx, o.DesignerID, o.ID, d.ID, convID); err != nil {
		s.logSideEffect(ctx, err, o.ID, "notify offer accepted failed")
	}
	return res, nil
}

// Reject declines a pending offer or a counter-offer.
func (s *Service) Reject(ctx context.Context, customerID, offerID int64) (*View, error) {
	o, d, err := s.ownedBy(ctx, customerID, offerID)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if from != StatusPending && from != StatusCounterOffer {
		return nil, ErrInvalidTransition
	}
	if err := s.transition(ctx, o, from, StatusRejected, nil, nil); err != nil {
		return nil, err
	}

	notify := s.notifier.NotifyOfferRejected
	if from == StatusCounterOffer {
		notify = s.notifier.NotifyCounterOfferRejected
	}
	if err := notify(ctx, o.DesignerID, o.ID, d.ID); err != nil {
		s.logSideEffect(ctx, err, o.ID, "notify offer rejected failed")
	}
	v := newView(*o)
	return &v, nil
}

// SubmitCounter lets the offer's designer propose new terms.
func (s *Service) SubmitCounter(ctx context.Context, designerID, offerID int64, req CounterRequest) (*View, error) {
	o, d, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.DesignerID != designerID {
		return nil, ErrForbidden
	}
	if d.Status != roomdesign.StatusOpen {
		return nil, ErrDesignNotOpen
	}

	now := time.Now()
	msg := cleanOptional(req.Message)
	fields := map[string]any{
		"counter_price":          req.Price,
		"counter_message":        msg,
		"counter_estimated_days": req.EstimatedDays,
		"counter_created_at":     now,
	}
	if err := s.transition(ctx, o, StatusPending, StatusCounterOffer, fields, nil); err != nil {
		return nil, err
	}
	price := req.Price
	o.CounterPrice = &price
	o.CounterMessage = msg
	o.CounterEstimatedDays = req.EstimatedDays
	o.CounterCreatedAt = &now

	if err := s.notifier.NotifyCounterOffer(ctx, d.UserID, o.ID, d.ID, price); err != nil {
		s.logSideEffect(ctx, err, o.ID, "notify counter offer failed")
	}
	v := newView(*o)
	return &v, nil
}

// AcceptCounter accepts the designer's counter terms. Counter fields left
// null keep the original price and duration.
func (s *Service) AcceptCounter(ctx context.Context, customerID, offerID int64) (*Result, error) {
	o, d, err := s.ownedBy(ctx, customerID, offerID)
	if err != nil {
		return nil, err
	}
	award := &Award{RoomDesignID: d.ID, DesignerID: o.DesignerID, OfferID: o.ID}
	if err := s.transition(ctx, o, StatusCounterOffer, StatusAccepted, o.counterMerge(), award); err != nil {
		return nil, err
	}
	o.applyCounterMerge()

	res := &Result{Offer: newView(*o)}
	var convID int64
	if conv := s.openConversation(ctx, d.UserID, o.DesignerID, o.ID); conv != nil {
		convID = conv.ID
		res.ConversationID = &conv.ID
	}
	if err := s.notifier.NotifyCounterOfferAccepted(ctx, o.DesignerID, o.ID, d.ID, convID, o.Price); err != nil {
		s.logSideEffect(ctx, err, o.ID, "notify counter accepted failed")
	}
	return res, nil
}

// OpenChat returns the conversation between the two parties of an offer,
// creating it when needed. The offer itself is unchanged.
func (s *Service) OpenChat(ctx context.Context, userID, offerID int64) (*chat.Conversation, error) {
	o, d, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if userID != d.UserID && userID != o.DesignerID {
		return nil, ErrForbidden
	}
	return s.conversations.GetOrCreate(ctx, d.UserID, o.DesignerID, nil)
}

// HasAccepted reports whether the customer accepted any offer from the designer.
func (s *Service) HasAccepted(ctx context.Context, customerID, designerID int64) (bool, error) {
	return s.repo.HasAccepted(ctx, customerID, designerID)
}

func (s *Service) transition(ctx context.Context, o *Offer, from, to Status, fields map[string]any, award *Award) error {
	if o.Status != from {
		return ErrInvalidTransition
	}
	if err := s.repo.Transition(ctx, o.ID, from, to, fields, award); err != nil {
		return err
	}
	o.Status = to
	metrics.OfferTransitions.WithLabelValues(string(from), string(to)).Inc()

	zerolog.Ctx(ctx).Info().
		Int64("offer_id", o.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("offer status changed")
	return nil
}

func (s *Service) load(ctx context.Context, offerID int64) (*Offer, *roomdesign.RoomDesign, error) {
	o, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.design(ctx, o.RoomDesignID)
	if err != nil {
		return nil, nil, err
	}
	return o, d, nil
}

func (s *Service) ownedBy(ctx context.Context, customerID, offerID int64) (*Offer, *roomdesign.RoomDesign, error) {
	o, d, err := s.load(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}
	if d.UserID != customerID {
		return nil, nil, ErrForbidden
	}
	return o, d, nil
}

func (s *Service) design(ctx context.Context, id int64) (*roomdesign.RoomDesign, error) {
	d, err := s.designs.GetByID(ctx, id)
	if errors.Is(err, roomdesign.ErrDesignNotFound) {
		return nil, ErrDesignNotFound
	}
	return d, err
}

func (s *Service) openConversation(ctx context.Context, customerID, designerID, offerID int64) *chat.Conversation {
	conv, err := s.conversations.GetOrCreate(ctx, customerID, designerID, nil)
	if err != nil {
		s.logSideEffect(ctx, err, offerID, "open conversation for accepted offer failed")
		return nil
	}
	return conv
}

func (s *Service) enrich(ctx context.Context, offers []Offer) ([]View, error) {
	ids := make([]int64, 0, len(offers))
	for _, o := range offers {
		ids = append(ids, o.DesignerID)
	}

	designers, err := s.designers.GetByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]designer.Designer, len(designers))
	for _, d := range designers {
		byID[d.UserID] = d
	}
	profiles, err := s.profiles.PublicProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(offers))
	for _, o := range offers {
		v := newView(o)
		if d, ok := byID[o.DesignerID]; ok {
			v.BusinessName = d.BusinessName
			v.Rating = d.Rating
			v.ReviewCount = d.ReviewCount
		}
		if p, ok := profiles[o.DesignerID]; ok {
			v.DesignerName = p.Name
			v.AvatarURL = p.AvatarURL
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) logSideEffect(ctx context.Context, err error, offerID int64, msg string) {
	zerolog.Ctx(ctx).Warn().Err(err).Int64("offer_id", offerID).Msg(msg)
}

func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := validator.CleanText(*s)
	if v == "" {
		return nil
	}
	return &v
}
