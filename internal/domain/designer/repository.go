package designer

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Designer, error)
	GetByUserID(ctx context.Context, userID int64) (*Designer, error)
	GetByUserIDs(ctx context.Context, userIDs []int64) ([]Designer, error)
	SearchLike(ctx context.Context, q, city string, limit int) ([]Designer, error)
	Update(ctx context.Context, d *Designer) error
	CreateIfMissing(ctx context.Context, d *Designer) error
	ListActive(ctx context.Context) ([]Designer, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Designer, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	// Budget ranges overlap: the designer's max covers the customer's min
	// and the designer's min fits under the customer's max.
	if f.MinBudget != nil {
		q = q.Where("(max_budget IS NULL OR max_budget >= ?)", *f.MinBudget)
	}
	if f.MaxBudget != nil {
		q = q.Where("(min_budget IS NULL OR min_budget <= ?)", *f.MaxBudget)
	}

	var out []Designer
	err := q.Order("rating DESC").Order("review_count DESC").Find(&out).Error
	return out, err
}

func (r *repository) GetByUserID(ctx context.Context, userID int64) (*Designer, error) {
	var d Designer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDesignerNotFound
	}
	return &d, err
}

func (r *repository) GetByUserIDs(ctx context.Context, userIDs []int64) ([]Designer, error) {
	var out []Designer
	if len(userIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ? AND is_active = ?", userIDs, true).Find(&out).Error
	return out, err
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchLike is the fallback used while the search index is unavailable.
func (r *repository) SearchLike(ctx context.Context, q, city string, limit int) ([]Designer, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"

	query := r.db.WithContext(ctx).
		Model(&Designer{}).
		Joins("LEFT JOIN profiles ON profiles.user_id = designers.user_id").
		Where("designers.is_active = ?", true).
		Where(`(LOWER(profiles.name) LIKE ? ESCAPE '\' OR LOWER(designers.business_name) LIKE ? ESCAPE '\' OR LOWER(designers.bio) LIKE ? ESCAPE '\' OR LOWER(CAST(designers.services AS TEXT)) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern)
	if city != "" {
		query = query.Where("designers.city = ?", city)
	}

	var out []Designer
	err := query.Select("designers.*").Order("designers.rating DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *repository) Update(ctx context.Context, d *Designer) error {
	d.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Model(&Designer{}).
		Where("user_id = ?", d.UserID).
		Select("business_name", "bio", "city", "min_budget", "max_budget", "services", "portfolio_images", "updated_at").
		Updates(d).Error
}

// CreateIfMissing leaves an existing row untouched.
func (r *repository) CreateIfMissing(ctx context.Context, d *Designer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(d).Error
}

func (r *repository) ListActive(ctx context.Context) ([]Designer, error) {
	var out []Designer
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&out).Error
	return out, err
}
