package review

type CreateRequest struct {
	DesignerID       int64  `json:"designer_id" validate:"required,gt=0"`
	ServiceRequestID *int64 `json:"service_request_id,omitempty" validate:"omitempty,gt=0"`
	Rating           int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment          string `json:"comment,omitempty"`
}

type UpdateRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty"`
}
