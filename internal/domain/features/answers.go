package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Questionnaire field keys, in sleep schema order.
const (
	FieldSex           = "sex"
	FieldAge           = "age"
	FieldSleepDuration = "sleep_duration"
	FieldActivityLevel = "activity_level"
	FieldStressLevel   = "stress_level"
	FieldSleepDisorder = "sleep_disorder"
)

// FieldError reports the answer that could not be converted.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrInputParse, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrInputParse).
func (e *FieldError) Unwrap() error { return ErrInputParse }

// SexFeature maps the questionnaire's categorical answer.
func SexFeature(answer string) (float64, error) {
	switch strings.TrimSpace(answer) {
	case "Male":
		return 0, nil
	case "Female":
		return 1, nil
	default:
		return 0, &FieldError{Field: FieldSex, Value: answer, Reason: "expected Male or Female"}
	}
}

// AssembleSleep converts questionnaire answers keyed by field into the sleep vector.
func AssembleSleep(answers map[string]string) (FeatureVector, error) {
	values := make([]float64, 0, SleepSchema.Arity())
	for _, field := range SleepSchema.Fields {
		raw, ok := answers[field]
		if !ok || strings.TrimSpace(raw) == "" {
			return FeatureVector{}, &FieldError{Field: field, Reason: "missing answer"}
		}
		if field == FieldSex {
			x, err := SexFeature(raw)
			if err != nil {
				return FeatureVector{}, err
			}
			values = append(values, x)
			continue
		}
		x, err := parseNumber(field, raw)
		if err != nil {
			return FeatureVector{}, err
		}
		values = append(values, x)
	}
	return FeatureVector{Schema: SleepSchema.Name, Values: values}, nil
}

func parseNumber(field, raw string) (float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, &FieldError{Field: field, Value: raw, Reason: "not a number"}
	}
	return x, nil
}

// Diet difficulty levels and the step/ingredient counts the recipe model expects.
var dietDifficulty = map[string]float64{
	"easy":   4,
	"medium": 8,
	"hard":   11,
}

const dietMinutes = 30

// AssembleDiet builds the recipe vector from a difficulty level.
func AssembleDiet(difficulty string) (FeatureVector, error) {
	n, ok := dietDifficulty[strings.ToLower(strings.TrimSpace(difficulty))]
	if !ok {
		return FeatureVector{}, &FieldError{Field: "difficulty", Value: difficulty, Reason: "expected easy, medium or hard"}
	}
	return FeatureVector{Schema: DietSchema.Name, Values: []float64{dietMinutes, n, n}}, nil
}
