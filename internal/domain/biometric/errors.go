package biometric

import "errors"

// Sentinel kinds for biometric errors.
var (
	ErrSampleUnavailable = errors.New("sample unavailable")
	ErrUnknownKind       = errors.New("unknown quantity kind")
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnit  = errors.New("incompatible units")
)
