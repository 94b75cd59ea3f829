package generation

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"hubal/internal/domain/roomdesign"
	"hubal/internal/metrics"
	"hubal/internal/pkg/validator"
)

// DesignStore drives the room design generation transitions.
type DesignStore interface {
	GetOwned(ctx context.Context, userID, id int64) (*roomdesign.RoomDesign, error)
	MarkGenerating(ctx context.Context, userID, id int64) (*roomdesign.RoomDesign, error)
	CompleteGeneration(ctx context.Context, id int64, imageURL string) (*roomdesign.RoomDesign, error)
	FailGeneration(ctx context.Context, id int64) error
}

type Notifier interface {
	NotifyDesignGenerated(ctx context.Context, customerID, roomDesignID int64) error
}

type Request struct {
	ImageURL     string `json:"imageUrl"`
	Prompt       string `json:"prompt"`
	RoomDesignID *int64 `json:"roomDesignId"`
}

type Output struct {
	GeneratedImageURL string `json:"generatedImageUrl"`
	Description       string `json:"description"`
}

type Service struct {
	designs  DesignStore
	gateway  Gateway
	notifier Notifier
}

func NewService(designs DesignStore, gateway Gateway, notifier Notifier) *Service {
	return &Service{designs: designs, gateway: gateway, notifier: notifier}
}

// Generate runs one generation. When RoomDesignID is set the design must
// belong to userID and follows generating → completed | failed.
func (s *Service) Generate(ctx context.Context, userID int64, req Request) (*Output, error) {
	imageURL := req.ImageURL
	prompt := validator.CleanText(req.Prompt)
	if imageURL == "" || prompt == "" {
		return nil, ErrMissingInput
	}
	if req.RoomDesignID != nil {
		if _, err := s.designs.MarkGenerating(ctx, userID, *req.RoomDesignID); err != nil {
			return nil, err
		}
	}

	log := zerolog.Ctx(ctx)
	log.Info().Int64("user_id", userID).Int("prompt_len", validator.RuneLen(prompt)).Msg("generating room design")

	res, err := s.gateway.Generate(ctx, imageURL, prompt)
	if err != nil {
		metrics.AIGenerations.WithLabelValues(outcome(err)).Inc()
		log.Error().Err(err).Msg("ai gateway call failed")
		s.fail(ctx, req.RoomDesignID)
		return nil, err
	}
	if res.ImageURL == "" {
		metrics.AIGenerations.WithLabelValues("no_image").Inc()
		log.Warn().Str("details", res.Text).Msg("ai gateway returned no image")
		s.fail(ctx, req.RoomDesignID)
		return nil, &NoImageError{Details: res.Text}
	}

	if req.RoomDesignID != nil {
		id := *req.RoomDesignID
		// Terminal writes outlive a disconnected client so the design never stays generating.
		done := context.WithoutCancel(ctx)
		if _, err := s.designs.CompleteGeneration(done, id, res.ImageURL); err != nil {
			log.Error().Err(err).Int64("room_design_id", id).Msg("store generated image failed")
			s.fail(ctx, req.RoomDesignID)
			return nil, err
		}
		if err := s.notifier.NotifyDesignGenerated(done, userID, id); err != nil {
			log.Warn().Err(err).Int64("room_design_id", id).Msg("notify design generated failed")
		}
	}
	metrics.AIGenerations.WithLabelValues("success").Inc()
	return &Output{GeneratedImageURL: res.ImageURL, Description: res.Text}, nil
}

// GenerateForDesign regenerates an owned design from its stored photo and prompt.
func (s *Service) GenerateForDesign(ctx context.Context, userID, id int64) (*Output, error) {
	d, err := s.designs.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, userID, Request{ImageURL: d.OriginalImageURL, Prompt: d.Prompt, RoomDesignID: &d.ID})
}

func (s *Service) fail(ctx context.Context, id *int64) {
	if id == nil {
		return
	}
	if err := s.designs.FailGeneration(context.WithoutCancel(ctx), *id); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("room_design_id", *id).Msg("mark generation failed")
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrPaymentRequired):
		return "payment_required"
	default:
		return "error"
	}
}
