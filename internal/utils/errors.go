package utils

import "errors"

// Common application errors used across services.
var (
	ErrSessionNotFound     = errors.New("SESSION_NOT_FOUND")
	ErrNoDocumentType      = errors.New("NO_DOCUMENT_TYPE")
	ErrInvalidDocumentType = errors.New("INVALID_DOCUMENT_TYPE")
	ErrNoFrontImage        = errors.New("NO_FRONT_IMAGE")
	ErrInvalidState        = errors.New("INVALID_STATE")
	ErrInvalidPortal       = errors.New("INVALID_PORTAL")
	ErrAccessDenied        = errors.New("ACCESS_DENIED")
	ErrPasswordChange      = errors.New("PASSWORD_CHANGE_REQUIRED")
	ErrWeakPassword        = errors.New("WEAK_PASSWORD")
	ErrCompressionFailed   = errors.New("COMPRESSION_FAILED")
	ErrValidation          = errors.New("VALIDATION_FAILED")
)
