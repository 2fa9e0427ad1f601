package biometrics

import (
	"math"
	"strings"
)

// BodyFatFormula selects the body-fat estimation method. The zero value is
// the default, Deurenberg.
type BodyFatFormula string

const (
	// Deurenberg estimates from BMI and age, nudged by waist-to-hip ratio.
	Deurenberg BodyFatFormula = "deurenberg"
	// Navy is the US Navy circumference method.
	Navy BodyFatFormula = "navy"
)

// ParseBodyFatFormula accepts the stored names; an empty string yields the default.
func ParseBodyFatFormula(s string) (BodyFatFormula, error) {
	switch f := BodyFatFormula(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Deurenberg, nil
	case Deurenberg, Navy:
		return f, nil
	}
	return "", invalidf("unknown body fat formula %q", s)
}

// BodyFatDeurenberg needs the BMI of the same snapshot. The waist-to-hip
// adjustment applies only when both circumferences are present.
func BodyFatDeurenberg(bmi float64, ageYears int, gender Gender, waistCm, hipCm float64) (float64, error) {
	if !finite(bmi) || bmi <= 0 {
		return 0, invalidf("bmi must be positive")
	}
	if ageYears <= 0 {
		return 0, invalidf("age must be positive")
	}
	if !gender.valid() {
		return 0, invalidf("gender must be male or female, got %q", gender)
	}

	fat := 1.20*bmi + 0.23*float64(ageYears)
	if gender == Male {
		fat -= 16.2
	} else {
		fat -= 5.4
	}
	if waistCm > 0 && hipCm > 0 {
		fat += (waistCm/hipCm - 0.5) * 10
	}
	return checked(fat, "body fat")
}

// BodyFatNavy implements the circumference method. Neck and waist are always
// required; females need hip as well.
func BodyFatNavy(gender Gender, heightCm, neckCm, waistCm, hipCm float64) (float64, error) {
	if !finite(heightCm) || heightCm <= 0 {
		return 0, invalidf("height must be positive")
	}
	if !finite(neckCm) || neckCm <= 0 {
		return 0, invalidf("neck circumference is required for the navy formula")
	}
	if !finite(waistCm) || waistCm <= 0 {
		return 0, invalidf("waist circumference is required for the navy formula")
	}

	var denom float64
	switch gender {
	case Male:
		diff := waistCm - neckCm
		if !finite(diff) || diff <= 0 {
			return 0, invalidf("waist-neck circumference difference must be positive")
		}
		denom = 1.0324 - 0.19077*math.Log10(diff) + 0.15456*math.Log10(heightCm)
	case Female:
		if hipCm <= 0 {
			return 0, invalidf("hip circumference is required for the navy formula")
		}
		sum := waistCm + hipCm - neckCm
		if !finite(sum) || sum <= 0 {
			return 0, invalidf("waist+hip-neck circumference sum must be positive")
		}
		denom = 1.29579 - 0.35004*math.Log10(sum) + 0.22100*math.Log10(heightCm)
	default:
		return 0, invalidf("gender must be male or female, got %q", gender)
	}

	if denom == 0 {
		return 0, invalidf("circumferences produce a zero denominator")
	}
	return checked(495/denom-450, "body fat")
}
