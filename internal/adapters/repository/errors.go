package repository

import "errors"

// Sentinel kinds for job store errors.
var (
	ErrNotFound     = errors.New("job not found")
	ErrInvalidLimit = errors.New("invalid result limit")
)
