package designer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"hubal/internal/domain/auth"
)

const searchLimit = 20

// ProfileReader resolves public names and avatars.
type ProfileReader interface {
	PublicProfiles(ctx context.Context, userIDs []int64) (map[int64]auth.PublicProfile, error)
}

type Service struct {
	repo     Repository
	profiles ProfileReader
	search   Searcher
}

// NewService accepts a nil searcher; search then always uses SQL.
func NewService(repo Repository, profiles ProfileReader, search Searcher) *Service {
	return &Service{repo: repo, profiles: profiles, search: search}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]View, error) {
	designers, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, designers)
}

func (s *Service) Get(ctx context.Context, userID int64) (*View, error) {
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, []Designer{*d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Search prefers the full-text index and falls back to SQL LIKE.
func (s *Service) Search(ctx context.Context, q, city string) ([]View, error) {
	if s.search != nil && s.search.Healthy() {
		ids, err := s.search.Search(ctx, q, city, searchLimit)
		if err == nil {
			return s.byIDsInOrder(ctx, ids)
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("designer search index failed, using SQL fallback")
	}

	designers, err := s.repo.SearchLike(ctx, q, city, searchLimit)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, designers)
}

func (s *Service) UpdateMine(ctx context.Context, userID int64, req UpdateRequest) (*View, error) {
	if req.MinBudget != nil && req.MaxBudget != nil && *req.MinBudget > *req.MaxBudget {
		return nil, ErrBudgetRange
	}

	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	d.BusinessName = req.BusinessName
	d.Bio = req.Bio
	d.City = req.City
	d.MinBudget = req.MinBudget
	d.MaxBudget = req.MaxBudget
	d.Services = req.Services
	d.PortfolioImages = req.PortfolioImages
	if d.PortfolioImages == nil {
		d.PortfolioImages = []string{}
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	view, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, *view)
	return view, nil
}

// EnsureProfile creates the designer row for a freshly assigned designer.
// An existing row is kept as is.
func (s *Service) EnsureProfile(ctx context.Context, userID int64, name string) error {
	d := &Designer{
		UserID:          userID,
		City:            DefaultCity,
		Services:        []string{},
		PortfolioImages: []string{},
		IsActive:        true,
	}
	if name != "" {
		d.BusinessName = &name
	}
	if err := s.repo.CreateIfMissing(ctx, d); err != nil {
		return err
	}

	if view, err := s.Get(ctx, userID); err == nil {
		s.reindex(ctx, *view)
	}
	return nil
}

// Reindex pushes every active designer to the search index.
func (s *Service) Reindex(ctx context.Context) error {
	if s.search == nil || !s.search.Healthy() {
		return nil
	}
	designers, err := s.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	views, err := s.enrich(ctx, designers)
	if err != nil {
		return err
	}
	docs := make([]Document, 0, len(views))
	for _, v := range views {
		docs = append(docs, newDocument(v))
	}
	return s.search.Index(ctx, docs...)
}

// Exists reports whether userID has an active designer profile.
func (s *Service) Exists(ctx context.Context, userID int64) (bool, error) {
	d, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, ErrDesignerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return d.IsActive, nil
}

func (s *Service) reindex(ctx context.Context, v View) {
	if s.search == nil || !s.search.Healthy() {
		return
	}
	if err := s.search.Index(ctx, newDocument(v)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("designer_id", v.UserID).Msg("failed to index designer")
	}
}

func (s *Service) byIDsInOrder(ctx context.Context, ids []int64) ([]View, error) {
	designers, err := s.repo.GetByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Designer, len(designers))
	for _, d := range designers {
		byID[d.UserID] = d
	}
	ordered := make([]Designer, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return s.enrich(ctx, ordered)
}

func (s *Service) enrich(ctx context.Context, designers []Designer) ([]View, error) {
	ids := make([]int64, 0, len(designers))
	for _, d := range designers {
		ids = append(ids, d.UserID)
	}

	profiles := map[int64]auth.PublicProfile{}
	if s.profiles != nil && len(ids) > 0 {
		var err error
		if profiles, err = s.profiles.PublicProfiles(ctx, ids); err != nil {
			return nil, err
		}
	}

	views := make([]View, 0, len(designers))
	for _, d := range designers {
		views = append(views, newView(d, profiles[d.UserID]))
	}
	return views, nil
}
