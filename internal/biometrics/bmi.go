package biometrics

// BMI returns weight / height(m)^2 rounded to 2 decimals.
func BMI(weightKg, heightCm float64) (float64, error) {
	if !finite(heightCm) || heightCm <= 0 {
		return 0, invalidf("height must be positive")
	}
	if !finite(weightKg) || weightKg <= 0 {
		return 0, invalidf("weight must be positive")
	}
	m := heightCm / 100
	return checked(weightKg/(m*m), "bmi")
}

// BMICategory maps a BMI value onto the WHO adult bands.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	case bmi < 35.0:
		return "Obesity class I"
	case bmi < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}
