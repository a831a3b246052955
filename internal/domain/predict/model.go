// Package predict is the boundary to the pre-trained regression models.
// Models are opaque: callers hand over a feature vector and get a score back.
package predict

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/okian/wellness/internal/domain/features"
	"github.com/okian/wellness/pkg/metrics"
)

// Predictor computes a score from a feature vector.
type Predictor interface {
	// Predict honours ctx for cancellation.
	Predict(ctx context.Context, v features.FeatureVector) (float64, error)
}

// Artifact is the on-disk form of a linear regression model.
type Artifact struct {
	Name         string    `yaml:"name"`
	Schema       string    `yaml:"schema"`
	Version      int       `yaml:"version"`
	Output       string    `yaml:"output"`
	Features     []string  `yaml:"features"`
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`
}

// LinearModel is a loaded, read-only regression model.
type LinearModel struct {
	artifact Artifact
}

// NewLinearModel validates an artifact.
func NewLinearModel(a Artifact) (*LinearModel, error) {
	if a.Name == "" {
		return nil, fmt.Errorf("%w: artifact has no name", ErrInvalidArtifact)
	}
	if len(a.Features) == 0 || len(a.Features) != len(a.Coefficients) {
		return nil, fmt.Errorf("%w: %s declares %d features and %d coefficients",
			ErrInvalidArtifact, a.Name, len(a.Features), len(a.Coefficients))
	}
	for i, c := range a.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("%w: %s coefficient %d is not finite", ErrInvalidArtifact, a.Name, i)
		}
	}
	return &LinearModel{artifact: a}, nil
}

// Name of the model.
func (m *LinearModel) Name() string { return m.artifact.Name }

// Output is the name of the predicted quantity.
func (m *LinearModel) Output() string { return m.artifact.Output }

// Features is the declared input layout.
func (m *LinearModel) Features() []string { return append([]string(nil), m.artifact.Features...) }

// Predict evaluates intercept + sum(coefficient * input).
func (m *LinearModel) Predict(ctx context.Context, v features.FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrModelInvocation, m.artifact.Name, err)
	}
	if v.Schema != m.artifact.Schema {
		return 0, fmt.Errorf("%w: %s expects %q input, got %q",
			ErrModelInvocation, m.artifact.Name, m.artifact.Schema, v.Schema)
	}
	if len(v.Values) != len(m.artifact.Coefficients) {
		return 0, fmt.Errorf("%w: %s expects %d inputs, got %d",
			ErrModelInvocation, m.artifact.Name, len(m.artifact.Coefficients), len(v.Values))
	}

	y := m.artifact.Intercept
	for i, x := range v.Values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, fmt.Errorf("%w: %s input %s is not finite",
				ErrModelInvocation, m.artifact.Name, m.artifact.Features[i])
		}
		y += m.artifact.Coefficients[i] * x
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: %s produced a non-finite output", ErrModelInvocation, m.artifact.Name)
	}
	return y, nil
}

// Invoke calls p and turns every failure, panics included, into an
// ErrModelInvocation error. Latency and outcome are recorded under name.
func Invoke(ctx context.Context, p Predictor, name string, v features.FeatureVector) (score float64, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrModelInvocation, name, r)
		}
		outcome := metrics.PredictionOK
		if err != nil {
			outcome = metrics.PredictionFailure
		}
		metrics.RecordPrediction(name, outcome, float64(time.Since(start).Microseconds())/1000)
	}()

	if p == nil {
		return 0, fmt.Errorf("%w: %s: no model loaded", ErrModelInvocation, name)
	}
	score, err = p.Predict(ctx, v)
	if err != nil {
		return 0, wrapInvocation(name, err)
	}
	return score, nil
}
