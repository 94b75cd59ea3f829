package review

import "time"

// fallbackName is shown for reviewers without a profile name.
const fallbackName = "عميل"

const MaxCommentLength = 1000

type Review struct {
	ID               int64     `json:"id"`
	CustomerID       int64     `json:"customer_id"`
	DesignerID       int64     `json:"designer_id"`
	ServiceRequestID *int64    `json:"service_request_id,omitempty"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// View is a review with the reviewer's public profile.
type View struct {
	Review
	CustomerName      string  `json:"customer_name"`
	CustomerAvatarURL *string `json:"customer_avatar_url,omitempty"`
}

type Eligibility struct {
	CanReview        bool `json:"can_review"`
	HasReviewed      bool `json:"has_reviewed"`
	HasCompletedWork bool `json:"has_completed_work"`
}
