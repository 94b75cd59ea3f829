package review

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"hubal/internal/database"
	"hubal/internal/domain/designer"
)

type Repository interface {
	Create(ctx context.Context, rv *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	Update(ctx context.Context, rv *Review) error
	ListByDesigner(ctx context.Context, designerID int64) ([]Review, error)
	ExistsByCustomerAndDesigner(ctx context.Context, customerID, designerID int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type reviewModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	CustomerID       int64     `gorm:"column:customer_id;not null;uniqueIndex:idx_reviews_customer_designer"`
	DesignerID       int64     `gorm:"column:designer_id;not null;uniqueIndex:idx_reviews_customer_designer;index"`
	ServiceRequestID *int64    `gorm:"column:service_request_id"`
	Rating           int       `gorm:"column:rating;not null"`
	Comment          *string   `gorm:"column:comment;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string { return "reviews" }

// Model exposes the table definition for migrations.
func Model() any { return &reviewModel{} }

func toDomainReview(m reviewModel) Review {
	comment := ""
	if m.Comment != nil {
		comment = *m.Comment
	}
	return Review{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		DesignerID:       m.DesignerID,
		ServiceRequestID: m.ServiceRequestID,
		Rating:           m.Rating,
		Comment:          comment,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toReviewModel(r *Review) reviewModel {
	var comment *string
	if r.Comment != "" {
		v := r.Comment
		comment = &v
	}
	return reviewModel{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		DesignerID:       r.DesignerID,
		ServiceRequestID: r.ServiceRequestID,
		Rating:           r.Rating,
		Comment:          comment,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// Create inserts the review and refreshes the designer's rating in the
// same transaction.
func (r *repository) Create(ctx context.Context, rv *Review) error {
	m := toReviewModel(rv)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyReviewed
			}
			return err
		}
		return recomputeRating(tx, m.DesignerID)
	})
	if err != nil {
		return err
	}
	*rv = toDomainReview(m)
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	var m reviewModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	d := toDomainReview(m)
	return &d, nil
}

func (r *repository) Update(ctx context.Context, rv *Review) error {
	rv.UpdatedAt = time.Now()
	m := toReviewModel(rv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&reviewModel{}).
			Where("id = ?", rv.ID).
			Updates(map[string]any{
				"rating":     m.Rating,
				"comment":    m.Comment,
				"updated_at": m.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrReviewNotFound
		}
		return recomputeRating(tx, rv.DesignerID)
	})
}

func (r *repository) ListByDesigner(ctx context.Context, designerID int64) ([]Review, error) {
	var rows []reviewModel
	err := r.db.WithContext(ctx).
		Where("designer_id = ?", designerID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainReview(m))
	}
	return out, nil
}

func (r *repository) ExistsByCustomerAndDesigner(ctx context.Context, customerID, designerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&reviewModel{}).
		Where("customer_id = ? AND designer_id = ?", customerID, designerID).
		Count(&count).Error
	return count > 0, err
}

func recomputeRating(tx *gorm.DB, designerID int64) error {
	var agg struct {
		Avg   float64
		Count int
	}
	err := tx.Model(&reviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("designer_id = ?", designerID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return tx.Model(&designer.Designer{}).
		Where("user_id = ?", designerID).
		Updates(map[string]any{
			"rating":       math.Round(agg.Avg*100) / 100,
			"review_count": agg.Count,
			"updated_at":   time.Now(),
		}).Error
}
