package questionnaire

import "errors"

// Sentinel kinds for questionnaire errors.
var (
	ErrEmptyAnswer = errors.New("answer must not be empty")
	ErrComplete    = errors.New("questionnaire already complete")
)
