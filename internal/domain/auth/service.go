package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"hubal/internal/pkg/jwt"
)

// DesignerProvisioner creates the designer profile row for a new designer.
type DesignerProvisioner interface {
	EnsureProfile(ctx context.Context, userID int64, name string) error
}

type Service struct {
	repo      Repository
	jwt       *jwt.Service
	designers DesignerProvisioner
}

func NewService(repo Repository, jwtService *jwt.Service, designers DesignerProvisioner) *Service {
	return &Service{repo: repo, jwt: jwtService, designers: designers}
}

// Register creates the user with a profile and, when req.Role is set,
// assigns it straight away.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	email := normalizeEmail(req.Email)
	user := &User{Email: email, PasswordHash: hash}
	profile := &Profile{Name: req.Name, Email: email}
	if err := s.repo.CreateUser(ctx, user, profile); err != nil {
		return nil, err
	}

	result := &AuthResult{Session: Session{User: user, Profile: profile}}
	if req.Role != "" {
		rr, err := s.AssignRole(ctx, user.ID, req.Role)
		if err != nil {
			return nil, err
		}
		result.Role = rr.Role
		result.Token = rr.Token
		return result, nil
	}

	token, err := s.jwt.GenerateToken(user.ID, "")
	if err != nil {
		return nil, err
	}
	result.Token = token
	return result, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if CheckPassword(req.Password, user.PasswordHash) != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessionFor(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID, string(session.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Session: *session, Token: token}, nil
}

// AssignRole is insert-or-fetch: when the user already has a role, that
// role is returned with AlreadyAssigned set instead of failing.
func (s *Service) AssignRole(ctx context.Context, userID int64, role Role) (*RoleResult, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	current, err := s.repo.GetRole(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &RoleResult{Role: current, AlreadyAssigned: current != ""}
	if current == "" {
		err := s.repo.InsertRole(ctx, userID, role)
		switch {
		case err == nil:
			result.Role = role
		case errors.Is(err, ErrRoleExists):
			// Lost a race with a concurrent request; keep whatever won.
			if result.Role, err = s.repo.GetRole(ctx, userID); err != nil {
				return nil, err
			}
			result.AlreadyAssigned = true
		default:
			return nil, err
		}
	}

	if result.Role == RoleDesigner && s.designers != nil {
		profile, err := s.repo.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.designers.EnsureProfile(ctx, userID, profile.Name); err != nil {
			return nil, fmt.Errorf("provision designer profile: %w", err)
		}
	}

	zerolog.Ctx(ctx).Info().
		Int64("user_id", userID).
		Str("role", string(result.Role)).
		Bool("already_assigned", result.AlreadyAssigned).
		Msg("role assigned")

	token, err := s.jwt.GenerateToken(userID, string(result.Role))
	if err != nil {
		return nil, err
	}
	result.Token = token
	return result, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*Session, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.sessionFor(ctx, user)
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Name = req.Name
	profile.Phone = req.Phone
	profile.City = req.City
	profile.AvatarURL = req.AvatarURL
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, userID)
}

// PublicProfiles backs name/avatar enrichment in the other modules.
func (s *Service) PublicProfiles(ctx context.Context, userIDs []int64) (map[int64]PublicProfile, error) {
	return s.repo.PublicProfiles(ctx, userIDs)
}

func (s *Service) sessionFor(ctx context.Context, user *User) (*Session, error) {
	profile, err := s.repo.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	role, err := s.repo.GetRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Profile: profile, Role: role}, nil
}
