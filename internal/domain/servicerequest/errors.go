package servicerequest

import "errors"

var (
	ErrRequestNotFound   = errors.New("service request not found")
	ErrDesignerNotFound  = errors.New("designer not found")
	ErrForbidden         = errors.New("not allowed to change this request")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrStatusChanged     = errors.New("request status changed concurrently")
	ErrSelfRequest       = errors.New("cannot send a request to yourself")
)
