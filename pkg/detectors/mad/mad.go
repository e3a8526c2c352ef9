// Package mad flags elements by their modified z-score, a robust variant of
// the z-score built on the median absolute deviation instead of the standard
// deviation, which keeps large outliers from inflating the dispersion
// estimate they are measured against.
package mad

import (
	"math"
	"sort"

	"github.com/signalscope/signalscope/pkg/detectors"
)

// scale converts a MAD into an estimate of the standard deviation under
// approximate normality. Do not change it: downstream numeric-compatibility
// tests depend on the exact constant.
const scale = 0.6745

// Detector implements MAD-based anomaly detection.
type Detector struct {
	threshold float64
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold sets the modified-z cutoff.
func WithThreshold(t float64) Option {
	return func(d *Detector) {
		d.threshold = t
	}
}

// New creates a MAD detector. The default threshold is 3.5, the
// conventional cutoff for modified z-scores.
func New(opts ...Option) *Detector {
	d := &Detector{threshold: 3.5}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Method identifies the variant.
func (d *Detector) Method() detectors.Method {
	return detectors.MethodMAD
}

// Threshold returns the configured modified-z cutoff.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect flags every element x where
// |0.6745 * (x - median) / (MAD + epsilon)| exceeds the threshold.
func (d *Detector) Detect(series []float64) []bool {
	flags := make([]bool, len(series))
	if len(series) < 2 {
		return flags
	}

	m := median(series)

	deviations := make([]float64, len(series))
	for i, v := range series {
		deviations[i] = math.Abs(v - m)
	}
	mad := median(deviations)

	for i, v := range series {
		modZ := scale * (v - m) / (mad + detectors.Epsilon)
		flags[i] = math.Abs(modZ) > d.threshold
	}
	return flags
}

// median returns the middle value of the series, averaging the two middle
// values for even lengths. The input is not modified.
func median(series []float64) float64 {
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
