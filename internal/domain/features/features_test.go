package features_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/wellness/internal/domain/biometric"
	"github.com/okian/wellness/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func fullSamples() map[biometric.Kind]biometric.SampleResult {
	return map[biometric.Kind]biometric.SampleResult{
		biometric.Height:                 biometric.Present(biometric.Height, 1.8),
		biometric.BodyMass:               biometric.Present(biometric.BodyMass, 80.0),
		biometric.StepCount:              biometric.Present(biometric.StepCount, 10000.0),
		biometric.HeartRate:              biometric.Present(biometric.HeartRate, 70.0),
		biometric.DistanceWalkingRunning: biometric.Present(biometric.DistanceWalkingRunning, 8000.0),
	}
}

func TestAssembleCalories(t *testing.T) {
	Convey("Given all five samples", t, func() {
		in := features.CalorieInputs{Age: 30, Sex: 1, Samples: fullSamples()}

		Convey("When assembling", func() {
			v, err := features.AssembleCalories(in)

			Convey("Then the vector follows the calorie schema order", func() {
				So(err, ShouldBeNil)
				So(v.Schema, ShouldEqual, "calories")
				So(v.Values, ShouldResemble, []float64{30, 1, 1.8, 80.0, 10000.0, 70.0, 8000.0, 80000000.0})
				So(features.CalorieSchema.Validate(v), ShouldBeNil)
			})

			Convey("And assembling again yields an equal vector", func() {
				again, err := features.AssembleCalories(in)
				So(err, ShouldBeNil)
				So(again.Equal(v), ShouldBeTrue)
			})
		})
	})

	Convey("Given steps=120 and distance=3", t, func() {
		samples := fullSamples()
		samples[biometric.StepCount] = biometric.Present(biometric.StepCount, 120.0)
		samples[biometric.DistanceWalkingRunning] = biometric.Present(biometric.DistanceWalkingRunning, 3.0)

		v, err := features.AssembleCalories(features.CalorieInputs{Age: 30, Sex: 0, Samples: samples})
		So(err, ShouldBeNil)

		Convey("Then the derived feature is exactly 360", func() {
			x, ok := v.Get(features.CalorieSchema, "steps_x_distance")
			So(ok, ShouldBeTrue)
			So(x, ShouldEqual, 360.0)
		})
	})

	Convey("Given one absent sample", t, func() {
		samples := fullSamples()
		cause := errors.New("no heart rate recorded")
		samples[biometric.HeartRate] = biometric.Absent(biometric.HeartRate, cause)

		_, err := features.AssembleCalories(features.CalorieInputs{Age: 30, Sex: 1, Samples: samples})

		Convey("Then assembly fails as incomplete and keeps the cause", func() {
			So(errors.Is(err, features.ErrIncompleteFeatureVector), ShouldBeTrue)
			So(errors.Is(err, biometric.ErrSampleUnavailable), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "heart_rate")
		})
	})

	Convey("Given a sample that was never delivered", t, func() {
		samples := fullSamples()
		delete(samples, biometric.Height)
		delete(samples, biometric.BodyMass)

		_, err := features.AssembleCalories(features.CalorieInputs{Samples: samples})

		Convey("Then every missing kind is named in order", func() {
			So(errors.Is(err, features.ErrIncompleteFeatureVector), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "missing height, body_mass")
		})
	})
}

func TestAgeAt(t *testing.T) {
	Convey("Given a date of birth", t, func() {
		dob := time.Date(1994, time.June, 15, 0, 0, 0, 0, time.UTC)

		Convey("Then age counts completed years", func() {
			age, err := features.AgeAt(dob, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))
			So(err, ShouldBeNil)
			So(age, ShouldEqual, 30)

			age, err = features.AgeAt(dob, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC))
			So(err, ShouldBeNil)
			So(age, ShouldEqual, 29)
		})

		Convey("Then a missing or future date is rejected", func() {
			_, err := features.AgeAt(time.Time{}, time.Now())
			So(errors.Is(err, features.ErrIncompleteFeatureVector), ShouldBeTrue)

			_, err = features.AgeAt(time.Now().Add(48*time.Hour), time.Now())
			So(errors.Is(err, features.ErrInputParse), ShouldBeTrue)
		})
	})
}

func TestAssembleSleep(t *testing.T) {
	answers := func() map[string]string {
		return map[string]string{
			features.FieldSex:           "Female",
			features.FieldAge:           "29",
			features.FieldSleepDuration: "7.5",
			features.FieldActivityLevel: "45",
			features.FieldStressLevel:   "4",
			features.FieldSleepDisorder: "0",
		}
	}

	Convey("Given complete answers", t, func() {
		v, err := features.AssembleSleep(answers())

		Convey("Then the vector follows the sleep schema order", func() {
			So(err, ShouldBeNil)
			So(v.Values, ShouldResemble, []float64{1, 29, 7.5, 45, 4, 0})
			So(features.SleepSchema.Validate(v), ShouldBeNil)
		})
	})

	Convey("Given the sex answer", t, func() {
		Convey("Then Male maps to 0 and Female to 1", func() {
			m, err := features.SexFeature("Male")
			So(err, ShouldBeNil)
			So(m, ShouldEqual, 0.0)

			f, err := features.SexFeature("Female")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, 1.0)
		})

		Convey("Then any other string is a parse failure", func() {
			for _, s := range []string{"male", "F", "0", "Other", ""} {
				_, err := features.SexFeature(s)
				So(errors.Is(err, features.ErrInputParse), ShouldBeTrue)
			}
		})
	})

	Convey("Given a non-numeric answer", t, func() {
		a := answers()
		a[features.FieldStressLevel] = "very"

		_, err := features.AssembleSleep(a)

		Convey("Then the failing field is reported", func() {
			var fe *features.FieldError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.Field, ShouldEqual, features.FieldStressLevel)
			So(errors.Is(err, features.ErrInputParse), ShouldBeTrue)
		})
	})

	Convey("Given a missing answer", t, func() {
		a := answers()
		delete(a, features.FieldAge)

		_, err := features.AssembleSleep(a)
		So(errors.Is(err, features.ErrInputParse), ShouldBeTrue)
	})
}

func TestAssembleDiet(t *testing.T) {
	Convey("Given a difficulty level", t, func() {
		v, err := features.AssembleDiet("medium")
		So(err, ShouldBeNil)
		So(v.Values, ShouldResemble, []float64{30, 8, 8})

		v, err = features.AssembleDiet("Hard")
		So(err, ShouldBeNil)
		So(v.Values, ShouldResemble, []float64{30, 11, 11})

		_, err = features.AssembleDiet("extreme")
		So(errors.Is(err, features.ErrInputParse), ShouldBeTrue)
	})
}

func TestSchemaValidate(t *testing.T) {
	Convey("Given the calorie schema", t, func() {
		Convey("Then a short vector is rejected", func() {
			err := features.CalorieSchema.Validate(features.FeatureVector{Schema: "calories", Values: []float64{1, 2}})
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
		})

		Convey("Then a vector for another schema is rejected", func() {
			err := features.CalorieSchema.Validate(features.FeatureVector{Schema: "sleep", Values: make([]float64, 8)})
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
		})

		Convey("Then a version 1 layout with active energy does not match", func() {
			v1 := []string{"age", "sex", "height_m", "weight_kg", "steps", "heart_rate_bpm", "active_energy_kcal", "distance_m"}
			So(features.CalorieSchema.Matches("calories", 1, v1), ShouldBeFalse)
			So(features.CalorieSchema.Matches("calories", 2, features.CalorieSchema.Fields), ShouldBeTrue)
		})
	})
}
