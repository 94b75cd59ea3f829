package roomdesign

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, d *RoomDesign) error
	GetByID(ctx context.Context, id int64) (*RoomDesign, error)
	ListByUser(ctx context.Context, userID int64) ([]RoomDesign, error)
	ListByStatus(ctx context.Context, status Status) ([]RoomDesign, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status, fields map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository accepts a transaction handle as well as the root DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *RoomDesign) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*RoomDesign, error) {
	var d RoomDesign
	err := r.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDesignNotFound
	}
	return &d, err
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]RoomDesign, error) {
	var out []RoomDesign
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]RoomDesign, error) {
	var out []RoomDesign
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

// UpdateStatus writes to plus fields only while the row is still in from.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status, fields map[string]any) error {
	updates := map[string]any{"status": to, "updated_at": time.Now()}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&RoomDesign{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
