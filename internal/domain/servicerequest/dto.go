package servicerequest

type CreateRequest struct {
	DesignerID   int64        `json:"designer_id" validate:"required,gt=0"`
	PropertyType PropertyType `json:"property_type" validate:"required,oneof=apartment villa commercial"`
	City         string       `json:"city" validate:"required,min=2,max=50"`
	Budget       float64      `json:"budget" validate:"required,gte=1,lte=100000000"`
	Description  *string      `json:"description" validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=accepted rejected completed cancelled"`
}

type StatusResult struct {
	Request        *ServiceRequest `json:"request"`
	ConversationID *int64          `json:"conversation_id,omitempty"`
}
