package biometric_test

import (
	"errors"
	"testing"

	"github.com/okian/wellness/internal/domain/biometric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSampleRequest(t *testing.T) {
	Convey("Given the required quantity kinds", t, func() {
		Convey("When building a request for each", func() {
			for _, k := range biometric.RequiredKinds {
				req, err := biometric.NewSampleRequest(k)

				So(err, ShouldBeNil)
				So(req.Kind, ShouldEqual, k)
				So(req.Limit, ShouldEqual, 1)
				So(req.Order, ShouldEqual, biometric.Descending)
			}
		})

		Convey("Then step count is a bare count", func() {
			req, err := biometric.NewSampleRequest(biometric.StepCount)
			So(err, ShouldBeNil)
			So(req.Unit, ShouldEqual, biometric.Count)
		})

		Convey("Then an unknown kind is rejected", func() {
			_, err := biometric.NewSampleRequest("blood_oxygen")
			So(errors.Is(err, biometric.ErrUnknownKind), ShouldBeTrue)
		})
	})

	Convey("Given the authorization set", t, func() {
		types := biometric.RequiredDataTypes()

		Convey("Then it covers both characteristics and every required kind", func() {
			So(types, ShouldHaveLength, 2+len(biometric.RequiredKinds))
			So(types, ShouldContain, biometric.BiologicalSexType)
			So(types, ShouldContain, biometric.DateOfBirthType)
			So(types, ShouldContain, biometric.QuantityType(biometric.HeartRate))
			So(types, ShouldNotContain, biometric.QuantityType(biometric.ActiveEnergyBurned))
		})
	})
}

func TestConvert(t *testing.T) {
	Convey("Given unit conversions", t, func() {
		Convey("When converting within a dimension", func() {
			cm, err := biometric.Convert(180, biometric.Centimeter, biometric.Meter)
			So(err, ShouldBeNil)
			So(cm, ShouldAlmostEqual, 1.8, 1e-12)

			km, err := biometric.Convert(8, biometric.Kilometer, biometric.Meter)
			So(err, ShouldBeNil)
			So(km, ShouldEqual, 8000)

			lb, err := biometric.Convert(100, biometric.Pound, biometric.Kilogram)
			So(err, ShouldBeNil)
			So(lb, ShouldAlmostEqual, 45.359237, 1e-9)
		})

		Convey("When converting across dimensions", func() {
			_, err := biometric.Convert(1, biometric.Count, biometric.Meter)
			So(errors.Is(err, biometric.ErrIncompatibleUnit), ShouldBeTrue)
		})

		Convey("When a unit is unknown", func() {
			_, err := biometric.Convert(1, "furlong", biometric.Meter)
			So(errors.Is(err, biometric.ErrUnknownUnit), ShouldBeTrue)

			_, err = biometric.Convert(1, "furlong", "furlong")
			So(errors.Is(err, biometric.ErrUnknownUnit), ShouldBeTrue)
		})
	})
}

func TestSampleResult(t *testing.T) {
	Convey("Given sample results", t, func() {
		Convey("Then an absent result always wraps ErrSampleUnavailable", func() {
			r := biometric.Absent(biometric.Height, nil)
			So(r.OK, ShouldBeFalse)
			So(errors.Is(r.Err, biometric.ErrSampleUnavailable), ShouldBeTrue)

			cause := errors.New("store offline")
			r = biometric.Absent(biometric.Height, cause)
			So(errors.Is(r.Err, biometric.ErrSampleUnavailable), ShouldBeTrue)
			So(errors.Is(r.Err, cause), ShouldBeTrue)
		})

		Convey("Then a present result carries its value", func() {
			r := biometric.Present(biometric.StepCount, 120)
			So(r.OK, ShouldBeTrue)
			So(r.Value, ShouldEqual, 120)
			So(r.Err, ShouldBeNil)
		})
	})
}

func TestSex(t *testing.T) {
	Convey("Given the sex characteristic", t, func() {
		m, ok := biometric.Male.Feature()
		So(ok, ShouldBeTrue)
		So(m, ShouldEqual, 0)

		f, ok := biometric.Female.Feature()
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, 1)

		_, ok = biometric.SexNotSet.Feature()
		So(ok, ShouldBeFalse)

		s, err := biometric.ParseSex("Female")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, biometric.Female)

		for _, in := range []string{"male", "MALE", "mAlE", " Male "} {
			s, err = biometric.ParseSex(in)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, biometric.Male)
		}

		s, err = biometric.ParseSex("NOT_SET")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, biometric.SexNotSet)

		_, err = biometric.ParseSex("other")
		So(err, ShouldNotBeNil)
	})
}
