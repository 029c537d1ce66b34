package service

import "errors"

var (
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrUserInactive         = errors.New("user account is disabled")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrStorageNotConfigured = errors.New("image storage is not configured")
)
