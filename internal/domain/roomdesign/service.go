package roomdesign

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"hubal/internal/pkg/validator"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new design for userID. Published designs are open for
// offers immediately, the rest wait in pending for an AI preview.
func (s *Service) Create(ctx context.Context, userID int64, req CreateRequest) (*RoomDesign, error) {
	prompt := validator.CleanText(req.Prompt)
	if !validator.LenBetween(prompt, MinPromptLength, MaxPromptLength) {
		return nil, ErrInvalidPrompt
	}

	d := &RoomDesign{
		UserID:           userID,
		OriginalImageURL: req.OriginalImageURL,
		Prompt:           prompt,
		Status:           StatusPending,
	}
	if req.Publish {
		d.Status = StatusOpen
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create room design: %w", err)
	}
	return d, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]RoomDesign, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListOpen(ctx context.Context) ([]RoomDesign, error) {
	return s.repo.ListByStatus(ctx, StatusOpen)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*RoomDesign, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.VisibleTo(userID) {
		return nil, ErrDesignNotFound
	}
	return d, nil
}

// GetOwned returns the design only when userID owns it.
func (s *Service) GetOwned(ctx context.Context, userID, id int64) (*RoomDesign, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *Service) Publish(ctx context.Context, userID, id int64) (*RoomDesign, error) {
	d, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, d, StatusOpen, nil); err != nil {
		return nil, err
	}
	return d, nil
}

// StartWork lets the designer of the accepted offer begin.
func (s *Service) StartWork(ctx context.Context, designerID, id int64) (*RoomDesign, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.DesignerID == nil || *d.DesignerID != designerID {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, d, StatusInProgress, nil); err != nil {
		return nil, err
	}
	return d, nil
}

// MarkGenerating moves an owned design into generating.
func (s *Service) MarkGenerating(ctx context.Context, userID, id int64) (*RoomDesign, error) {
	d, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, d, StatusGenerating, nil); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) CompleteGeneration(ctx context.Context, id int64, imageURL string) (*RoomDesign, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, d, StatusCompleted, map[string]any{"generated_image_url": imageURL}); err != nil {
		return nil, err
	}
	d.GeneratedImageURL = &imageURL
	return d, nil
}

func (s *Service) FailGeneration(ctx context.Context, id int64) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.transition(ctx, d, StatusFailed, nil)
}

func (s *Service) transition(ctx context.Context, d *RoomDesign, to Status, fields map[string]any) error {
	from := d.Status
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, d.ID, from, to, fields); err != nil {
		return err
	}
	d.Status = to

	zerolog.Ctx(ctx).Info().
		Int64("room_design_id", d.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("room design status changed")
	return nil
}
