package questionnaire_test

import (
	"testing"

	"github.com/okian/wellness/internal/domain/features"
	"github.com/okian/wellness/internal/domain/questionnaire"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSession(t *testing.T) {
	Convey("Given a new questionnaire session", t, func() {
		s := questionnaire.NewSession()

		Convey("Then the first prompt asks for sex", func() {
			p, ok := s.CurrentPrompt()
			So(ok, ShouldBeTrue)
			So(p.Field, ShouldEqual, features.FieldSex)
			So(s.IsComplete(), ShouldBeFalse)
		})

		Convey("When an empty answer is submitted", func() {
			err := s.SubmitAnswer("   ")

			Convey("Then it is rejected and the prompt does not advance", func() {
				So(err, ShouldEqual, questionnaire.ErrEmptyAnswer)
				p, _ := s.CurrentPrompt()
				So(p.Field, ShouldEqual, features.FieldSex)
			})
		})

		Convey("When every prompt is answered", func() {
			for _, a := range []string{"Male", "41", "6.5", "30", "7", "1"} {
				So(s.SubmitAnswer(a), ShouldBeNil)
			}

			Convey("Then the session is complete", func() {
				So(s.IsComplete(), ShouldBeTrue)
				_, ok := s.CurrentPrompt()
				So(ok, ShouldBeFalse)
				So(s.SubmitAnswer("extra"), ShouldEqual, questionnaire.ErrComplete)
			})

			Convey("Then the answers convert into a sleep vector", func() {
				v, err := features.AssembleSleep(s.Answers())
				So(err, ShouldBeNil)
				So(v.Values, ShouldResemble, []float64{0, 41, 6.5, 30, 7, 1})
			})

			Convey("Then a snapshot restores into a fresh session", func() {
				restored := questionnaire.NewSession()
				restored.Restore(s.Snapshot())
				So(restored.IsComplete(), ShouldBeTrue)
				So(restored.Answers(), ShouldResemble, s.Answers())
			})

			Convey("Then clearing one field asks for it again", func() {
				p, ok := s.Clear(features.FieldAge)
				So(ok, ShouldBeTrue)
				So(p.Field, ShouldEqual, features.FieldAge)
				So(s.IsComplete(), ShouldBeFalse)

				cur, _ := s.CurrentPrompt()
				So(cur.Field, ShouldEqual, features.FieldAge)
				So(s.Snapshot(), ShouldNotContainKey, p.ID.String())

				So(s.SubmitAnswer("41"), ShouldBeNil)
				So(s.IsComplete(), ShouldBeTrue)
				So(s.Answers()[features.FieldAge], ShouldEqual, "41")
			})

			Convey("Then clearing an unknown field changes nothing", func() {
				_, ok := s.Clear("shoe_size")
				So(ok, ShouldBeFalse)
				So(s.IsComplete(), ShouldBeTrue)
			})

			Convey("Then Reset starts over", func() {
				s.Reset()
				So(s.IsComplete(), ShouldBeFalse)
				So(s.Answers(), ShouldBeEmpty)
			})
		})

		Convey("When a partial snapshot is restored", func() {
			prompts := questionnaire.Prompts()
			s.Restore(map[string]string{
				prompts[0].ID.String(): "Female",
				prompts[1].ID.String(): "25",
				"not-a-prompt":         "ignored",
			})

			Convey("Then the session resumes at the first unanswered prompt", func() {
				p, ok := s.CurrentPrompt()
				So(ok, ShouldBeTrue)
				So(p.Field, ShouldEqual, features.FieldSleepDuration)
				So(s.Answers(), ShouldHaveLength, 2)
			})
		})
	})

	Convey("Given the prompt list", t, func() {
		a, b := questionnaire.Prompts(), questionnaire.Prompts()

		Convey("Then prompt IDs are stable across calls", func() {
			for i := range a {
				So(a[i].ID, ShouldEqual, b[i].ID)
			}
		})

		Convey("Then the prompts follow the sleep schema order", func() {
			fields := make([]string, len(a))
			for i, p := range a {
				fields[i] = p.Field
			}
			So(fields, ShouldResemble, features.SleepSchema.Fields)
		})
	})
}
