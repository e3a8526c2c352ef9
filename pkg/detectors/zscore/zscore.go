// Package zscore flags elements whose standardized deviation from the series
// mean exceeds a threshold.
package zscore

import (
	"math"

	"github.com/signalscope/signalscope/pkg/detectors"
)

// Detector implements z-score based anomaly detection.
type Detector struct {
	threshold float64
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold sets the |z| cutoff. Values at or below the cutoff are
// considered normal.
func WithThreshold(t float64) Option {
	return func(d *Detector) {
		d.threshold = t
	}
}

// New creates a z-score detector. The default threshold is 3.0.
func New(opts ...Option) *Detector {
	d := &Detector{threshold: 3.0}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Method identifies the variant.
func (d *Detector) Method() detectors.Method {
	return detectors.MethodZScore
}

// Threshold returns the configured |z| cutoff.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect flags every element x where |x - mean| / (stddev + epsilon) exceeds
// the threshold. Mean and standard deviation are population statistics over
// the full series, including the element being scored.
func (d *Detector) Detect(series []float64) []bool {
	flags := make([]bool, len(series))
	if len(series) < 2 {
		return flags
	}

	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(len(series))

	var sqDev float64
	for _, v := range series {
		diff := v - mean
		sqDev += diff * diff
	}
	std := math.Sqrt(sqDev / float64(len(series)))

	for i, v := range series {
		z := (v - mean) / (std + detectors.Epsilon)
		flags[i] = math.Abs(z) > d.threshold
	}
	return flags
}
