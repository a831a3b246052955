package aggregate

import "errors"

var (
	// ErrAuthorizationDenied means the host store refused read access; no
	// fetch is attempted.
	ErrAuthorizationDenied = errors.New("biometric authorization denied")
	// ErrFetchTimeout marks a fetch that did not complete in time.
	ErrFetchTimeout = errors.New("sample fetch timed out")
)
