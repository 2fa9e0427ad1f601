package biometrics

import "strings"

// BMRFormula selects one of the supported basal metabolic rate equations.
// The zero value is the default, Mifflin-St Jeor.
type BMRFormula string

const (
	MifflinStJeor  BMRFormula = "mifflin_st_jeor"
	HarrisBenedict BMRFormula = "harris_benedict"
)

// ParseBMRFormula accepts the stored names; an empty string yields the default.
func ParseBMRFormula(s string) (BMRFormula, error) {
	switch f := BMRFormula(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return MifflinStJeor, nil
	case MifflinStJeor, HarrisBenedict:
		return f, nil
	}
	return "", invalidf("unknown bmr formula %q", s)
}

// BMR estimates resting energy expenditure in kcal/day.
func BMR(weightKg, heightCm float64, ageYears int, gender Gender, formula BMRFormula) (float64, error) {
	if !finite(weightKg) || weightKg <= 0 {
		return 0, invalidf("weight must be positive")
	}
	if !finite(heightCm) || heightCm <= 0 {
		return 0, invalidf("height must be positive")
	}
	if ageYears <= 0 {
		return 0, invalidf("age must be positive")
	}
	if !gender.valid() {
		return 0, invalidf("gender must be male or female, got %q", gender)
	}

	w, h, a := weightKg, heightCm, float64(ageYears)
	var bmr float64
	switch formula {
	case MifflinStJeor, "":
		bmr = 10*w + 6.25*h - 5*a
		if gender == Male {
			bmr += 5
		} else {
			bmr -= 161
		}
	case HarrisBenedict:
		if gender == Male {
			bmr = 88.36 + 13.4*w + 4.8*h - 5.7*a
		} else {
			bmr = 447.6 + 9.2*w + 3.1*h - 4.3*a
		}
	default:
		return 0, invalidf("unknown bmr formula %q", formula)
	}
	return checked(bmr, "bmr")
}
