// Package window provides a fixed-capacity FIFO buffer of the most recent
// observations in a signal.
package window

import (
	"errors"
	"fmt"
)

// ErrInvalidCapacity is returned for capacities < 1.
var ErrInvalidCapacity = errors.New("window capacity must be positive")

// Window holds the most recent observations, oldest first. It exclusively
// owns its contents: Snapshot returns a copy, never the backing slice.
type Window struct {
	values   []float64
	capacity int
}

// New creates a window with the given capacity.
func New(capacity int) (*Window, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return &Window{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}, nil
}

// Push appends a value. If the window was already at capacity, the oldest
// value is evicted and returned with evicted == true.
func (w *Window) Push(value float64) (oldest float64, evicted bool) {
	if len(w.values) == w.capacity {
		oldest = w.values[0]
		evicted = true
		copy(w.values, w.values[1:])
		w.values = w.values[:len(w.values)-1]
	}
	w.values = append(w.values, value)
	return oldest, evicted
}

// Resize changes the capacity. Shrinking below the current length evicts
// from the front until the most recent newCapacity values remain; growing
// never fabricates data.
func (w *Window) Resize(newCapacity int) error {
	if newCapacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, newCapacity)
	}
	if excess := len(w.values) - newCapacity; excess > 0 {
		copy(w.values, w.values[excess:])
		w.values = w.values[:newCapacity]
	}
	w.capacity = newCapacity
	return nil
}

// Snapshot returns a copy of the current contents, oldest first.
func (w *Window) Snapshot() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Clear removes all values. Capacity is unchanged.
func (w *Window) Clear() {
	w.values = w.values[:0]
}

// Len returns the number of values currently held.
func (w *Window) Len() int {
	return len(w.values)
}

// Cap returns the configured capacity.
func (w *Window) Cap() int {
	return w.capacity
}

// Full reports whether the window holds exactly its capacity.
func (w *Window) Full() bool {
	return len(w.values) == w.capacity
}
