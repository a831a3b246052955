package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrInvalidSubject = errors.New("subject id is required")
	ErrNoStore        = errors.New("no biometric store configured")
)
