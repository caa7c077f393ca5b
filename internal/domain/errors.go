package domain

import "errors"

// Errors shared across layers. The ticket repository only returns
// ErrNotAuthenticated and ErrPermissionDenied; every other failure is
// reduced to a false or empty result.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrOperationFailed    = errors.New("operation failed")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrValidation         = errors.New("validation error")
)
