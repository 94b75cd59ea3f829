package servicerequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"hubal/internal/domain/chat"
	"hubal/internal/metrics"
	"hubal/internal/pkg/validator"
)

// DesignerChecker reports whether an active designer profile exists.
type DesignerChecker interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type Notifier interface {
	NotifyNewServiceRequest(ctx context.Context, designerID, requestID int64, propertyType, city string) error
	NotifyRequestStatus(ctx context.Context, userID, requestID int64, status string) error
}

type ConversationOpener interface {
	GetOrCreate(ctx context.Context, customerID, designerID int64, serviceRequestID *int64) (*chat.Conversation, error)
}

type Service struct {
	repo          Repository
	designers     DesignerChecker
	notifier      Notifier
	conversations ConversationOpener
}

func NewService(repo Repository, designers DesignerChecker, notifier Notifier, conversations ConversationOpener) *Service {
	return &Service{
		repo:          repo,
		designers:     designers,
		notifier:      notifier,
		conversations: conversations,
	}
}

// Create files a pending request from customerID to the target designer.
func (s *Service) Create(ctx context.Context, customerID int64, req CreateRequest) (*ServiceRequest, error) {
	if req.DesignerID == customerID {
		return nil, ErrSelfRequest
	}
	ok, err := s.designers.Exists(ctx, req.DesignerID)
	if err != nil {
		return nil, fmt.Errorf("check designer: %w", err)
	}
	if !ok {
		return nil, ErrDesignerNotFound
	}

	sr := &ServiceRequest{
		CustomerID:   customerID,
		DesignerID:   req.DesignerID,
		PropertyType: req.PropertyType,
		City:         validator.CleanText(req.City),
		Budget:       req.Budget,
		Status:       StatusPending,
	}
	if req.Description != nil {
		d := validator.CleanText(*req.Description)
		if d != "" {
			sr.Description = &d
		}
	}
	if err := s.repo.Create(ctx, sr); err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}

	if err := s.notifier.NotifyNewServiceRequest(ctx, sr.DesignerID, sr.ID, string(sr.PropertyType), sr.City); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("request_id", sr.ID).Msg("notify new service request failed")
	}
	return sr, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64, role string, status Status) ([]ServiceRequest, error) {
	if role == "designer" {
		return s.repo.ListByDesigner(ctx, userID, status)
	}
	return s.repo.ListByCustomer(ctx, userID, status)
}

// Get returns the request when userID is one of its two parties.
func (s *Service) Get(ctx context.Context, userID, id int64) (*ServiceRequest, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr.CustomerID != userID && sr.DesignerID != userID {
		return nil, ErrRequestNotFound
	}
	return sr, nil
}

// UpdateStatus is the only way a request changes status.
func (s *Service) UpdateStatus(ctx context.Context, userID, id int64, to Status) (*StatusResult, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var caller party
	switch userID {
	case sr.CustomerID:
		caller = byCustomer
	case sr.DesignerID:
		caller = byDesigner
	default:
		return nil, ErrForbidden
	}

	from := sr.Status
	who, ok := allowedBy(from, to)
	if !ok {
		return nil, ErrInvalidTransition
	}
	if who != caller {
		return nil, ErrForbidden
	}

	if err := s.repo.UpdateStatus(ctx, id, from, to); err != nil {
		return nil, err
	}
	sr.Status = to
	metrics.RequestTransitions.WithLabelValues(string(from), string(to)).Inc()

	log := zerolog.Ctx(ctx)
	log.Info().
		Int64("request_id", id).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("service request status changed")

	result := &StatusResult{Request: sr}
	if to == StatusAccepted {
		conv, err := s.conversations.GetOrCreate(ctx, sr.CustomerID, sr.DesignerID, &sr.ID)
		if err != nil {
			log.Warn().Err(err).Int64("request_id", id).Msg("open conversation for accepted request failed")
		} else {
			result.ConversationID = &conv.ID
		}
	}

	recipient := sr.CustomerID
	if to == StatusCancelled {
		recipient = sr.DesignerID
	}
	if err := s.notifier.NotifyRequestStatus(ctx, recipient, sr.ID, string(to)); err != nil {
		log.Warn().Err(err).Int64("request_id", id).Msg("notify request status failed")
	}
	return result, nil
}

// HasCompleted reports whether customerID has completed work with designerID.
func (s *Service) HasCompleted(ctx context.Context, customerID, designerID int64) (bool, error) {
	return s.repo.ExistsWithStatus(ctx, customerID, designerID, StatusCompleted)
}

// CompletedBetween reports whether request id exists, links customerID with
// designerID and is completed.
func (s *Service) CompletedBetween(ctx context.Context, id, customerID, designerID int64) (bool, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrRequestNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sr.CustomerID == customerID && sr.DesignerID == designerID && sr.Status == StatusCompleted, nil
}
