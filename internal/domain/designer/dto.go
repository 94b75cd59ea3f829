package designer

type UpdateRequest struct {
	BusinessName    *string  `json:"business_name" validate:"omitempty,max=100"`
	Bio             *string  `json:"bio" validate:"omitempty,max=1000"`
	City            string   `json:"city" validate:"required,min=2,max=50"`
	MinBudget       *float64 `json:"min_budget" validate:"omitempty,gte=0,lte=100000000"`
	MaxBudget       *float64 `json:"max_budget" validate:"omitempty,gte=0,lte=100000000"`
	Services        []string `json:"services" validate:"required,min=1,max=20,dive,required,max=100"`
	PortfolioImages []string `json:"portfolio_images" validate:"omitempty,max=30,dive,url"`
}
