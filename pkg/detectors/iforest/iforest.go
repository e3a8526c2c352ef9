// Package iforest implements Isolation Forest anomaly detection over a
// univariate series. Anomalies are isolated by random recursive partitioning:
// the fewer splits it takes to isolate a point, the more anomalous it is.
//
// Unlike a conventional train-once model, the forest here is rebuilt from
// scratch on every Detect call so that each evaluation reflects exactly the
// current series and nothing else. The cost is O(len(series) * trees) per
// call, the most expensive of the variants, and grows with the window; that
// tradeoff is deliberate and should not be papered over with incremental
// state, which would change the documented per-call semantics.
package iforest

import (
	"math"
	"math/rand"
	"sort"

	"github.com/signalscope/signalscope/pkg/detectors"
)

// DefaultSeed makes every Detect call reproducible: two calls with the same
// series and parameters build identical forests and return identical flags.
const DefaultSeed int64 = 42

// Detector implements isolation-forest anomaly detection.
type Detector struct {
	nTrees        int
	sampleSize    int
	contamination float64
	seed          int64
}

// node is a node in an isolation tree. Points here are one-dimensional, so a
// split is just a value; left holds points below it.
type node struct {
	splitValue float64
	left       *node
	right      *node
	size       int // samples that reached this leaf
}

// Option configures a Detector.
type Option func(*Detector)

// WithTrees sets the number of isolation trees.
func WithTrees(n int) Option {
	return func(d *Detector) {
		d.nTrees = n
	}
}

// WithSampleSize sets the subsample size for each tree.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		d.sampleSize = n
	}
}

// WithContamination sets the expected proportion of anomalies.
func WithContamination(c float64) Option {
	return func(d *Detector) {
		d.contamination = c
	}
}

// WithSeed overrides the forest-construction seed.
func WithSeed(seed int64) Option {
	return func(d *Detector) {
		d.seed = seed
	}
}

// New creates an isolation-forest detector with the given options.
func New(opts ...Option) *Detector {
	d := &Detector{
		nTrees:        100,
		sampleSize:    256,
		contamination: 0.05,
		seed:          DefaultSeed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Method identifies the variant.
func (d *Detector) Method() detectors.Method {
	return detectors.MethodIForest
}

// Contamination returns the configured expected outlier fraction.
func (d *Detector) Contamination() float64 {
	return d.contamination
}

// Detect builds a fresh forest over the series and flags the points whose
// anomaly score strictly exceeds the 100*(1-contamination) percentile of all
// scores in this call. Any internal failure degrades to an all-false result;
// detection is never fatal to the caller's loop.
func (d *Detector) Detect(series []float64) []bool {
	flags := make([]bool, len(series))
	if len(series) < 2 {
		return flags
	}

	scores, ok := d.score(series)
	if !ok {
		return flags
	}

	threshold := percentile(scores, 100*(1-d.contamination))
	for i, s := range scores {
		flags[i] = s > threshold
	}
	return flags
}

// score fits the ensemble and returns one anomaly score in [0, 1] per point.
// A fresh rng from the fixed seed keeps results identical across calls with
// the same input.
func (d *Detector) score(series []float64) ([]float64, bool) {
	n := len(series)

	sampleSize := d.sampleSize
	if sampleSize > n {
		sampleSize = n
	}
	if sampleSize < 2 {
		return nil, false
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))

	rng := rand.New(rand.NewSource(d.seed))

	trees := make([]*node, d.nTrees)
	for i := range trees {
		// Sample without replacement
		indices := rng.Perm(n)[:sampleSize]
		sample := make([]float64, sampleSize)
		for j, idx := range indices {
			sample[j] = series[idx]
		}
		trees[i] = buildNode(rng, sample, 0, maxDepth)
	}

	// Normalizer: average path length of unsuccessful BST search.
	c := averagePathLength(float64(sampleSize))
	if c <= 0 {
		return nil, false
	}

	scores := make([]float64, n)
	for i, v := range series {
		var total float64
		for _, t := range trees {
			total += pathLength(v, t, 0)
		}
		avgPath := total / float64(len(trees))

		// 2^(-avgPath / c): short paths mean easy isolation, high score.
		scores[i] = math.Pow(2, -avgPath/c)
	}
	return scores, true
}

// buildNode recursively builds an isolation (sub)tree.
func buildNode(rng *rand.Rand, data []float64, depth, maxDepth int) *node {
	n := len(data)
	if depth >= maxDepth || n <= 1 {
		return &node{size: n}
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if minVal == maxVal {
		return &node{size: n}
	}

	splitValue := minVal + rng.Float64()*(maxVal-minVal)

	var left, right []float64
	for _, v := range data {
		if v < splitValue {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}

	return &node{
		splitValue: splitValue,
		left:       buildNode(rng, left, depth+1, maxDepth),
		right:      buildNode(rng, right, depth+1, maxDepth),
	}
}

// pathLength returns the path length of a point through a tree, with the
// usual correction for leaves that still hold multiple samples.
func pathLength(v float64, n *node, depth int) float64 {
	if n.left == nil && n.right == nil {
		return float64(depth) + averagePathLength(float64(n.size))
	}
	if v < n.splitValue {
		return pathLength(v, n.left, depth+1)
	}
	return pathLength(v, n.right, depth+1)
}

// averagePathLength returns the average path length of unsuccessful search
// in a BST of n nodes: c(n) = 2*H(n-1) - 2*(n-1)/n, H approximated with the
// Euler-Mascheroni constant.
func averagePathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+0.5772156649) - 2*(n-1)/n
}

// percentile returns the p-th percentile of the data.
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}
