package review

import "errors"

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrForbidden       = errors.New("only the author can change this review")
	ErrNotEligible     = errors.New("reviews require completed work with this designer")
	ErrAlreadyReviewed = errors.New("designer already reviewed by this customer")
	ErrCommentTooLong  = errors.New("comment must be at most 1000 characters")

	ErrInvalidServiceRequest = errors.New("service request is not completed work between these parties")
)
