package offer

import "hubal/internal/domain/roomdesign"

type SubmitRequest struct {
	Price         float64 `json:"price" validate:"required,gt=0,lte=100000000"`
	EstimatedDays *int    `json:"estimated_days" validate:"omitempty,gte=1,lte=3650"`
	Message       *string `json:"message" validate:"omitempty,max=2000"`
}

type CounterRequest struct {
	Price         float64 `json:"price" validate:"required,gt=0,lte=100000000"`
	EstimatedDays *int    `json:"estimated_days" validate:"omitempty,gte=1,lte=3650"`
	Message       *string `json:"message" validate:"omitempty,max=2000"`
}

// Result is returned by transitions that may open a conversation.
type Result struct {
	Offer          View   `json:"offer"`
	ConversationID *int64 `json:"conversation_id,omitempty"`
}

// MineView is a designer's own offer together with the design it targets.
type MineView struct {
	View
	RoomDesign *roomdesign.RoomDesign `json:"room_design,omitempty"`
}
