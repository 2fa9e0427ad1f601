package biometrics

// Formulas names the variant used for each metric. The zero value selects
// Mifflin-St Jeor and Deurenberg.
type Formulas struct {
	BMR     BMRFormula
	BodyFat BodyFatFormula
}

// Normalized fills empty fields with the defaults.
func (f Formulas) Normalized() Formulas {
	if f.BMR == "" {
		f.BMR = MifflinStJeor
	}
	if f.BodyFat == "" {
		f.BodyFat = Deurenberg
	}
	return f
}

// Compute derives all metrics from one profile snapshot. Body fat is computed
// from the BMI of that same snapshot, never from a stored value.
func Compute(p Profile, f Formulas) (DerivedMetrics, error) {
	if err := p.Validate(); err != nil {
		return DerivedMetrics{}, err
	}
	f = f.Normalized()

	bmi, err := BMI(p.WeightKg, p.HeightCm)
	if err != nil {
		return DerivedMetrics{}, err
	}
	bmr, err := BMR(p.WeightKg, p.HeightCm, p.AgeYears, p.Gender, f.BMR)
	if err != nil {
		return DerivedMetrics{}, err
	}

	var fat float64
	switch f.BodyFat {
	case Deurenberg:
		fat, err = BodyFatDeurenberg(bmi, p.AgeYears, p.Gender, p.WaistCm, p.HipCm)
	case Navy:
		fat, err = BodyFatNavy(p.Gender, p.HeightCm, p.NeckCm, p.WaistCm, p.HipCm)
	default:
		err = invalidf("unknown body fat formula %q", f.BodyFat)
	}
	if err != nil {
		return DerivedMetrics{}, err
	}

	return DerivedMetrics{BMI: bmi, BMR: bmr, BodyFatPct: fat}, nil
}
