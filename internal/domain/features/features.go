// Package features turns collected inputs into the fixed-order numeric
// vectors the regression models were trained on.
package features

import (
	"fmt"
	"math"
	"slices"
)

// Schema is a model's declared input layout.
type Schema struct {
	Name    string
	Version int
	Fields  []string
}

// Calorie model input, version 2. Version 1 also carried active energy.
var CalorieSchema = Schema{
	Name:    "calories",
	Version: 2,
	Fields: []string{
		"age", "sex", "height_m", "weight_kg", "steps",
		"heart_rate_bpm", "distance_m", "steps_x_distance",
	},
}

// SleepSchema is the sleep-quality model input.
var SleepSchema = Schema{
	Name:    "sleep",
	Version: 1,
	Fields: []string{
		"sex", "age", "sleep_duration", "activity_level", "stress_level", "sleep_disorder",
	},
}

// DietSchema is the recipe regressor input.
var DietSchema = Schema{
	Name:    "diet",
	Version: 1,
	Fields:  []string{"minutes", "n_steps", "n_ingredients"},
}

// Arity is the number of inputs.
func (s Schema) Arity() int { return len(s.Fields) }

// Matches reports whether fields equals the schema layout exactly.
func (s Schema) Matches(name string, version int, fields []string) bool {
	return s.Name == name && s.Version == version && slices.Equal(s.Fields, fields)
}

// Validate checks that v was built for s and is fully populated.
func (s Schema) Validate(v FeatureVector) error {
	if v.Schema != s.Name {
		return fmt.Errorf("%w: vector for %q given to %q", ErrSchemaMismatch, v.Schema, s.Name)
	}
	if len(v.Values) != s.Arity() {
		return fmt.Errorf("%w: %s wants %d values, got %d", ErrSchemaMismatch, s.Name, s.Arity(), len(v.Values))
	}
	for i, x := range v.Values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrIncompleteFeatureVector, s.Fields[i])
		}
	}
	return nil
}

// FeatureVector is an ordered, fully populated model input.
type FeatureVector struct {
	Schema string
	Values []float64
}

// Get returns the value of a named field.
func (v FeatureVector) Get(s Schema, field string) (float64, bool) {
	i := slices.Index(s.Fields, field)
	if i < 0 || i >= len(v.Values) {
		return 0, false
	}
	return v.Values[i], true
}

// Equal reports whether two vectors are identical.
func (v FeatureVector) Equal(o FeatureVector) bool {
	return v.Schema == o.Schema && slices.Equal(v.Values, o.Values)
}

// Clone returns a copy that shares no memory with v.
func (v FeatureVector) Clone() FeatureVector {
	return FeatureVector{Schema: v.Schema, Values: slices.Clone(v.Values)}
}
