// Package detectors provides windowed anomaly detection over a univariate
// series. Each variant scores every element of the series against statistics
// computed from the whole series, including the element itself; a single
// extreme value therefore inflates the dispersion estimate and can partially
// mask itself. That matches the reference implementations of these methods
// and is documented behavior, not something the variants try to correct.
package detectors

import (
	"errors"
	"fmt"
)

// Detector is the common interface for all anomaly detection variants.
type Detector interface {
	// Detect returns one flag per input element, in input order.
	// Series shorter than 2 elements always produce an all-false result:
	// there is not enough data to estimate dispersion.
	Detect(series []float64) []bool

	// Method identifies the variant.
	Method() Method
}

// Method names a detection variant.
type Method string

const (
	MethodZScore  Method = "zscore"
	MethodMAD     Method = "mad"
	MethodIForest Method = "iforest"
)

// ParseMethod converts a string to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodZScore, MethodMAD, MethodIForest:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Epsilon stabilizes denominators when the dispersion estimate is zero.
const Epsilon = 1e-9

// Configuration errors. All parameter validation happens at configuration
// time; the Detect path never fails.
var (
	ErrUnknownMethod = errors.New("unknown detection method")

	// ErrInvalidThreshold is returned for z-score / MAD thresholds <= 0.
	ErrInvalidThreshold = errors.New("threshold must be positive")

	// ErrInvalidContamination is returned for contamination outside (0, 0.5].
	ErrInvalidContamination = errors.New("contamination must be in (0, 0.5]")
)

// ValidateThreshold checks a z-score or MAD threshold.
func ValidateThreshold(t float64) error {
	if t <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidThreshold, t)
	}
	return nil
}

// ValidateContamination checks an isolation forest contamination fraction.
func ValidateContamination(c float64) error {
	if c <= 0 || c > 0.5 {
		return fmt.Errorf("%w: got %g", ErrInvalidContamination, c)
	}
	return nil
}
