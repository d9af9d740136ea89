package service

import "errors"

var (
	ErrSessionNotFound    = errors.New("intake session not found")
	ErrNotReady           = errors.New("wizard is not at the review step")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOrganizeDisabled   = errors.New("organize endpoint not configured")
)
