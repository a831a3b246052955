package recommend_test

import (
	"testing"

	"github.com/okian/wellness/internal/domain/recommend"
	. "github.com/smartystreets/goconvey/convey"
)

func f(x float64) *float64 { return &x }

func TestRecommendations(t *testing.T) {
	Convey("Given exercise thresholds", t, func() {
		So(recommend.ForExercise(f(9.99)).Bucket, ShouldEqual, "light")
		So(recommend.ForExercise(f(10)).Bucket, ShouldEqual, "strength")
		So(recommend.ForExercise(nil).Bucket, ShouldEqual, "unavailable")
		So(recommend.ForExercise(f(847)).Category, ShouldEqual, recommend.Exercise)
	})

	Convey("Given sleep thresholds", t, func() {
		So(recommend.ForSleep(f(5.9)).Bucket, ShouldEqual, "poor")
		So(recommend.ForSleep(f(6)).Bucket, ShouldEqual, "fair")
		So(recommend.ForSleep(f(8)).Bucket, ShouldEqual, "good")
		So(recommend.ForSleep(nil).Bucket, ShouldEqual, "unavailable")
	})

	Convey("Given a diet prediction", t, func() {
		r := recommend.ForDiet(f(181499.6))
		So(r.Bucket, ShouldEqual, "recipe")
		So(r.Text, ShouldEqual, "Suggested recipe #181500")
		So(recommend.ForDiet(f(-1)).Bucket, ShouldEqual, "unavailable")
	})
}
