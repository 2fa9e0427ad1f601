package biometrics

import "strings"

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts "male"/"female" in any letter case.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case Male:
		return Male, nil
	case Female:
		return Female, nil
	}
	return "", invalidf("gender must be male or female, got %q", s)
}

func (g Gender) valid() bool {
	return g == Male || g == Female
}

// Profile is one snapshot of a person's measurements. Circumferences are
// optional; zero means "not measured".
type Profile struct {
	WeightKg float64
	HeightCm float64
	AgeYears int
	Gender   Gender
	NeckCm   float64
	WaistCm  float64
	HipCm    float64
}

// DerivedMetrics is always produced as a whole from a single Profile.
type DerivedMetrics struct {
	BMI        float64 `json:"bmi"`
	BMR        float64 `json:"bmr"`
	BodyFatPct float64 `json:"body_fat_pct"`
}

// Validate checks the ranges every formula relies on.
func (p Profile) Validate() error {
	if !finite(p.WeightKg) || p.WeightKg <= 0 {
		return invalidf("weight must be positive")
	}
	if !finite(p.HeightCm) || p.HeightCm <= 0 {
		return invalidf("height must be positive")
	}
	if p.AgeYears <= 0 {
		return invalidf("age must be positive")
	}
	if !p.Gender.valid() {
		return invalidf("gender must be male or female, got %q", p.Gender)
	}
	circumferences := []struct {
		name string
		cm   float64
	}{{"neck", p.NeckCm}, {"waist", p.WaistCm}, {"hip", p.HipCm}}
	for _, c := range circumferences {
		if !finite(c.cm) || c.cm < 0 {
			return invalidf("%s circumference must not be negative", c.name)
		}
	}
	return nil
}
