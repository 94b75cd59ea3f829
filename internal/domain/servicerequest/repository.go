package servicerequest

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, r *ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID int64, status Status) ([]ServiceRequest, error)
	ListByDesigner(ctx context.Context, designerID int64, status Status) ([]ServiceRequest, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
	ExistsWithStatus(ctx context.Context, customerID, designerID int64, status Status) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, sr *ServiceRequest) error {
	return r.db.WithContext(ctx).Create(sr).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*ServiceRequest, error) {
	var sr ServiceRequest
	err := r.db.WithContext(ctx).First(&sr, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	return &sr, err
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64, status Status) ([]ServiceRequest, error) {
	return r.list(ctx, "customer_id", customerID, status)
}

func (r *repository) ListByDesigner(ctx context.Context, designerID int64, status Status) ([]ServiceRequest, error) {
	return r.list(ctx, "designer_id", designerID, status)
}

func (r *repository) list(ctx context.Context, column string, userID int64, status Status) ([]ServiceRequest, error) {
	q := r.db.WithContext(ctx).Where(column+" = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []ServiceRequest
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// UpdateStatus only applies when the row is still in from.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	res := r.db.WithContext(ctx).
		Model(&ServiceRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repository) ExistsWithStatus(ctx context.Context, customerID, designerID int64, status Status) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ServiceRequest{}).
		Where("customer_id = ? AND designer_id = ? AND status = ?", customerID, designerID, status).
		Count(&count).Error
	return count > 0, err
}
