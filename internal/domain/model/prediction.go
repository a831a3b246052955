package model

import "github.com/okian/wellness/internal/domain/recommend"

// Prediction is the result of one model call with the advice it selects.
type Prediction struct {
	Model          string                   `json:"model"`
	Value          float64                  `json:"prediction"`
	Vector         []float64                `json:"vector"`
	Recommendation recommend.Recommendation `json:"recommendation"`
}
