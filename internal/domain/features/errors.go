package features

import "errors"

// Sentinel kinds for feature assembly errors.
var (
	ErrIncompleteFeatureVector = errors.New("incomplete feature vector")
	ErrInputParse              = errors.New("input parse failure")
	ErrSchemaMismatch          = errors.New("feature schema mismatch")
)
