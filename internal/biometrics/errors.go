package biometrics

import (
	"errors"
	"fmt"
	"math"
)

// InvalidInputError is returned for any input a formula cannot be evaluated on.
// Reason is safe to show to the user as-is.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidf(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err (or anything it wraps) is an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// checked rounds v, refusing to hand back NaN or Inf to the caller.
func checked(v float64, what string) (float64, error) {
	if !finite(v) {
		return 0, invalidf("%s is not a finite number", what)
	}
	return Round2(v), nil
}
