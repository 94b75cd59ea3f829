package designer

import (
	"time"

	"gorm.io/datatypes"

	"hubal/internal/domain/auth"
)

// DefaultCity is given to designer profiles created at role selection.
const DefaultCity = "الرياض"

// fallbackName is shown when neither a profile name nor a business name exists.
const fallbackName = "مصمم"

// Designer is the designer profile, keyed by the designer's user id.
// Rating and ReviewCount are maintained by the review module.
type Designer struct {
	UserID          int64                       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	BusinessName    *string                     `gorm:"size:100" json:"business_name,omitempty"`
	City            string                      `gorm:"size:50;not null;index" json:"city"`
	Bio             *string                     `json:"bio,omitempty"`
	Services        datatypes.JSONSlice[string] `json:"services"`
	MinBudget       *float64                    `json:"min_budget,omitempty"`
	MaxBudget       *float64                    `json:"max_budget,omitempty"`
	PortfolioImages datatypes.JSONSlice[string] `json:"portfolio_images"`
	Rating          float64                     `gorm:"not null;default:0" json:"rating"`
	ReviewCount     int                         `gorm:"not null;default:0" json:"review_count"`
	IsActive        bool                        `gorm:"not null;default:true" json:"is_active"`
	IsVerified      bool                        `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

func (Designer) TableName() string { return "designers" }

// View is a designer enriched with the owner's public profile.
type View struct {
	Designer
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func newView(d Designer, p auth.PublicProfile) View {
	v := View{Designer: d, Name: p.Name, AvatarURL: p.AvatarURL}
	switch {
	case p.Name != "":
		v.DisplayName = p.Name
	case d.BusinessName != nil && *d.BusinessName != "":
		v.DisplayName = *d.BusinessName
	default:
		v.DisplayName = fallbackName
	}
	return v
}

type ListFilter struct {
	City      string   `form:"city"`
	MinBudget *float64 `form:"min_budget"`
	MaxBudget *float64 `form:"max_budget"`
}
