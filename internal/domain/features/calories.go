package features

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/wellness/internal/domain/biometric"
)

// CalorieInputs are everything the calorie vector is built from.
type CalorieInputs struct {
	Age     float64
	Sex     float64
	Samples map[biometric.Kind]biometric.SampleResult
}

// AssembleCalories builds the calorie vector. Any absent sample fails the
// whole assembly; nothing is defaulted.
func AssembleCalories(in CalorieInputs) (FeatureVector, error) {
	var (
		missing []string
		causes  []error
		values  = make(map[biometric.Kind]float64, len(biometric.RequiredKinds))
	)
	for _, k := range biometric.RequiredKinds {
		r, ok := in.Samples[k]
		if !ok || !r.OK {
			missing = append(missing, string(k))
			if ok && r.Err != nil {
				causes = append(causes, r.Err)
			}
			continue
		}
		values[k] = r.Value
	}
	if len(missing) > 0 {
		err := fmt.Errorf("%w: missing %s", ErrIncompleteFeatureVector, strings.Join(missing, ", "))
		if len(causes) > 0 {
			err = fmt.Errorf("%w: %w", err, errors.Join(causes...))
		}
		return FeatureVector{}, err
	}

	steps := values[biometric.StepCount]
	distance := values[biometric.DistanceWalkingRunning]

	v := FeatureVector{
		Schema: CalorieSchema.Name,
		Values: []float64{
			in.Age,
			in.Sex,
			values[biometric.Height],
			values[biometric.BodyMass],
			steps,
			values[biometric.HeartRate],
			distance,
			StepsTimesDistance(steps, distance),
		},
	}
	if err := CalorieSchema.Validate(v); err != nil {
		return FeatureVector{}, err
	}
	return v, nil
}

// StepsTimesDistance is the engineered interaction feature of the calorie model.
func StepsTimesDistance(steps, distanceMeters float64) float64 {
	return steps * distanceMeters
}

// AgeAt returns completed years between dob and now.
func AgeAt(dob, now time.Time) (int, error) {
	if dob.IsZero() {
		return 0, fmt.Errorf("%w: date of birth not set", ErrIncompleteFeatureVector)
	}
	if dob.After(now) {
		return 0, fmt.Errorf("%w: date of birth %s is in the future", ErrInputParse, dob.Format(time.DateOnly))
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years, nil
}
