package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hubal/internal/database"
)

type Repository interface {
	CreateUser(ctx context.Context, u *User, p *Profile) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) error
	GetRole(ctx context.Context, userID int64) (Role, error)
	InsertRole(ctx context.Context, userID int64, role Role) error
	PublicProfiles(ctx context.Context, userIDs []int64) (map[int64]PublicProfile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateUser writes the account and its profile together.
func (r *repository) CreateUser(ctx context.Context, u *User, p *Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}
		p.UserID = u.ID
		return tx.Create(p).Error
	})
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

func (r *repository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &u, err
}

func (r *repository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return &p, err
}

func (r *repository) UpdateProfile(ctx context.Context, p *Profile) error {
	return r.db.WithContext(ctx).
		Model(&Profile{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]any{
			"name":       p.Name,
			"phone":      p.Phone,
			"city":       p.City,
			"avatar_url": p.AvatarURL,
			"updated_at": time.Now(),
		}).Error
}

// GetRole returns "" when the user has not picked a role yet.
func (r *repository) GetRole(ctx context.Context, userID int64) (Role, error) {
	var ur UserRole
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&ur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ur.Role, nil
}

func (r *repository) InsertRole(ctx context.Context, userID int64, role Role) error {
	err := r.db.WithContext(ctx).Create(&UserRole{UserID: userID, Role: role}).Error
	if database.IsUniqueViolation(err) {
		return ErrRoleExists
	}
	return err
}

func (r *repository) PublicProfiles(ctx context.Context, userIDs []int64) (map[int64]PublicProfile, error) {
	out := make(map[int64]PublicProfile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []Profile
	if err := r.db.WithContext(ctx).
		Select("user_id", "name", "avatar_url").
		Where("user_id IN ?", userIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.UserID] = PublicProfile{UserID: p.UserID, Name: p.Name, AvatarURL: p.AvatarURL}
	}
	return out, nil
}
