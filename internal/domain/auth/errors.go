package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("role must be customer or designer")
	ErrRoleExists         = errors.New("role already assigned")
)
