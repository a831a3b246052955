// Package recommend maps prediction scores onto fixed advice text.
package recommend

import (
	"fmt"
	"math"
)

// Category of advice.
type Category string

const (
	Sleep    Category = "sleep"
	Exercise Category = "exercise"
	Diet     Category = "diet"
)

// Recommendation is the advice shown for one prediction.
type Recommendation struct {
	Category Category `json:"category"`
	Bucket   string   `json:"bucket"`
	Text     string   `json:"text"`
}

// Thresholds.
const (
	exerciseLightBelow = 10.0
	sleepPoorBelow     = 6.0
	sleepFairBelow     = 8.0
)

const (
	exerciseLightText    = "Exercise 30 minutes a day."
	exerciseStrengthText = "Do 3 sets of 5 reps using 75% of the maximum weight you can for: " +
		"Squats, Deadlift, and Benchpress. Rest 2-3 minutes between sets."
	sleepPoorText = "Your sleep quality looks poor. Keep a fixed bedtime, avoid screens " +
		"for an hour before bed and talk to a doctor if it persists."
	sleepFairText = "Your sleep quality is fair. Aim for 7-9 hours and cut caffeine after noon."
	sleepGoodText = "Your sleep quality is good. Keep your current routine."
	unavailable   = "No recommendation is available right now."
)

// ForExercise picks exercise advice from a calorie prediction. A nil score
// means the prediction failed.
func ForExercise(calories *float64) Recommendation {
	r := Recommendation{Category: Exercise}
	switch {
	case calories == nil || math.IsNaN(*calories):
		r.Bucket, r.Text = "unavailable", unavailable
	case *calories < exerciseLightBelow:
		r.Bucket, r.Text = "light", exerciseLightText
	default:
		r.Bucket, r.Text = "strength", exerciseStrengthText
	}
	return r
}

// ForSleep picks sleep advice from a 1-10 quality prediction.
func ForSleep(quality *float64) Recommendation {
	r := Recommendation{Category: Sleep}
	switch {
	case quality == nil || math.IsNaN(*quality):
		r.Bucket, r.Text = "unavailable", unavailable
	case *quality < sleepPoorBelow:
		r.Bucket, r.Text = "poor", sleepPoorText
	case *quality < sleepFairBelow:
		r.Bucket, r.Text = "fair", sleepFairText
	default:
		r.Bucket, r.Text = "good", sleepGoodText
	}
	return r
}

// ForDiet names the recipe the diet regressor picked.
func ForDiet(recipeID *float64) Recommendation {
	r := Recommendation{Category: Diet}
	if recipeID == nil || math.IsNaN(*recipeID) || *recipeID < 0 {
		r.Bucket, r.Text = "unavailable", unavailable
		return r
	}
	r.Bucket = "recipe"
	r.Text = fmt.Sprintf("Suggested recipe #%d", RecipeID(*recipeID))
	return r
}

// RecipeID rounds the regressor output to a recipe identifier.
func RecipeID(score float64) int64 {
	return int64(math.Round(score))
}
