package biometrics

import (
	"strings"
	"time"
)

type ActivityLevel string

const (
	Low    ActivityLevel = "low"
	Medium ActivityLevel = "medium"
	High   ActivityLevel = "high"

	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
)

// activityMultipliers is the single source of truth for valid activity
// levels, also used by ParseActivityLevel.
var activityMultipliers = map[ActivityLevel]float64{
	Low:    1.2,
	Medium: 1.55,
	High:   1.9,

	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
}

const defaultActivityMultiplier = 1.2

// MaxBurnSamples is how many of the most recent exercise logs are averaged.
const MaxBurnSamples = 7

// ParseActivityLevel accepts labels such as "Medium", "Lightly active" or
// "very-active".
func ParseActivityLevel(s string) (ActivityLevel, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	l := ActivityLevel(norm)
	if _, ok := activityMultipliers[l]; !ok {
		return "", invalidf("unknown activity level %q", s)
	}
	return l, nil
}

// Multiplier returns the TDEE factor; unrecognised levels count as sedentary.
func (l ActivityLevel) Multiplier() float64 {
	if m, ok := activityMultipliers[l]; ok {
		return m
	}
	return defaultActivityMultiplier
}

type ExerciseLogSample struct {
	Calories   float64
	OccurredAt time.Time
}

// EstimateAverageBurn returns the average daily calories burned through
// exercise. samples must be ordered most recent first; only the first
// MaxBurnSamples are used. Without samples, the activity share of TDEE
// (bmr*multiplier - bmr) is returned instead.
func EstimateAverageBurn(samples []ExerciseLogSample, bmr float64, level ActivityLevel) (float64, error) {
	if !finite(bmr) || bmr < 0 {
		return 0, invalidf("bmr must be a finite non-negative number")
	}
	if len(samples) > 0 {
		if len(samples) > MaxBurnSamples {
			samples = samples[:MaxBurnSamples]
		}
		var sum float64
		for _, s := range samples {
			if !finite(s.Calories) || s.Calories < 0 {
				return 0, invalidf("exercise calories must be a non-negative number")
			}
			sum += s.Calories
		}
		return checked(sum/float64(len(samples)), "average burn")
	}

	tdee := bmr * level.Multiplier()
	return checked(tdee-bmr, "average burn")
}
