package review

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hubal/internal/domain/auth"
	"hubal/internal/pkg/validator"
)

// CompletedWork reports finished service requests between two parties.
type CompletedWork interface {
	HasCompleted(ctx context.Context, customerID, designerID int64) (bool, error)
	CompletedBetween(ctx context.Context, requestID, customerID, designerID int64) (bool, error)
}

// AcceptedOffers reports accepted room design offers between two parties.
type AcceptedOffers interface {
	HasAccepted(ctx context.Context, customerID, designerID int64) (bool, error)
}

type ProfileReader interface {
	PublicProfiles(ctx context.Context, userIDs []int64) (map[int64]auth.PublicProfile, error)
}

type Notifier interface {
	NotifyNewReview(ctx context.Context, designerID, reviewID int64, rating int) error
}

type Service struct {
	repo     Repository
	requests CompletedWork
	offers   AcceptedOffers
	profiles ProfileReader
	notifier Notifier
}

func NewService(repo Repository, requests CompletedWork, offers AcceptedOffers, profiles ProfileReader, notifier Notifier) *Service {
	return &Service{repo: repo, requests: requests, offers: offers, profiles: profiles, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, customerID int64, req CreateRequest) (*Review, error) {
	comment, err := cleanComment(req.Comment)
	if err != nil {
		return nil, err
	}

	elig, err := s.Eligibility(ctx, customerID, req.DesignerID)
	if err != nil {
		return nil, err
	}
	if elig.HasReviewed {
		return nil, ErrAlreadyReviewed
	}
	if !elig.HasCompletedWork {
		return nil, ErrNotEligible
	}
	if req.ServiceRequestID != nil {
		ok, err := s.requests.CompletedBetween(ctx, *req.ServiceRequestID, customerID, req.DesignerID)
		if err != nil {
			return nil, fmt.Errorf("check service request: %w", err)
		}
		if !ok {
			return nil, ErrInvalidServiceRequest
		}
	}

	rv := &Review{
		CustomerID:       customerID,
		DesignerID:       req.DesignerID,
		ServiceRequestID: req.ServiceRequestID,
		Rating:           req.Rating,
		Comment:          comment,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyNewReview(ctx, rv.DesignerID, rv.ID, rv.Rating); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("review_id", rv.ID).Msg("notify new review failed")
	}
	return rv, nil
}

// Update lets the author change rating and comment.
func (s *Service) Update(ctx context.Context, customerID, reviewID int64, req UpdateRequest) (*Review, error) {
	comment, err := cleanComment(req.Comment)
	if err != nil {
		return nil, err
	}
	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv.CustomerID != customerID {
		return nil, ErrForbidden
	}

	rv.Rating = req.Rating
	rv.Comment = comment
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListByDesigner(ctx context.Context, designerID int64) ([]View, error) {
	reviews, err := s.repo.ListByDesigner(ctx, designerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.CustomerID)
	}
	profiles, err := s.profiles.PublicProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(reviews))
	for _, rv := range reviews {
		v := View{Review: rv, CustomerName: fallbackName}
		if p, ok := profiles[rv.CustomerID]; ok {
			if p.Name != "" {
				v.CustomerName = p.Name
			}
			v.CustomerAvatarURL = p.AvatarURL
		}
		out = append(out, v)
	}
	return out, nil
}

// Eligibility is scoped to the (customer, designer) pair, the same key as
// the one-review-per-designer constraint.
func (s *Service) Eligibility(ctx context.Context, customerID, designerID int64) (*Eligibility, error) {
	reviewed, err := s.repo.ExistsByCustomerAndDesigner(ctx, customerID, designerID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	worked, err := s.requests.HasCompleted(ctx, customerID, designerID)
	if err != nil {
		return nil, fmt.Errorf("check completed requests: %w", err)
	}
	if !worked {
		worked, err = s.offers.HasAccepted(ctx, customerID, designerID)
		if err != nil {
			return nil, fmt.Errorf("check accepted offers: %w", err)
		}
	}

	return &Eligibility{
		CanReview:        worked && !reviewed,
		HasReviewed:      reviewed,
		HasCompletedWork: worked,
	}, nil
}

func cleanComment(raw string) (string, error) {
	c := validator.CleanText(raw)
	if validator.RuneLen(c) > MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return c, nil
}
