package upload

import "errors"

var (
	ErrUploadNotFound  = errors.New("upload not found")
	ErrNotOwner        = errors.New("you do not own this upload")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("only jpeg, png, gif and webp images are allowed")
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidPurpose  = errors.New("purpose must be room-designs, avatars or portfolio")
)
