package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{
			name:     "valid capacity",
			capacity: 5,
			wantErr:  false,
		},
		{
			name:     "capacity of one",
			capacity: 1,
			wantErr:  false,
		},
		{
			name:     "zero capacity",
			capacity: 0,
			wantErr:  true,
		},
		{
			name:     "negative capacity",
			capacity: -3,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.capacity)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCapacity)
				assert.Nil(t, w)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.capacity, w.Cap())
				assert.Equal(t, 0, w.Len())
			}
		})
	}
}

func TestPush(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)

	for i, v := range []float64{1, 2, 3} {
		_, evicted := w.Push(v)
		assert.False(t, evicted)
		assert.Equal(t, i+1, w.Len())
	}

	oldest, evicted := w.Push(4)
	assert.True(t, evicted)
	assert.Equal(t, 1.0, oldest)
	assert.Equal(t, []float64{2, 3, 4}, w.Snapshot())

	oldest, evicted = w.Push(5)
	assert.True(t, evicted)
	assert.Equal(t, 2.0, oldest)
	assert.Equal(t, []float64{3, 4, 5}, w.Snapshot())
}

func TestPushKeepsLastCapacityValues(t *testing.T) {
	const capacity = 5
	w, err := New(capacity)
	require.NoError(t, err)

	// capacity+k pushes leave exactly the last `capacity` values in order.
	for i := 0; i < capacity+7; i++ {
		w.Push(float64(i))
	}

	assert.Equal(t, capacity, w.Len())
	assert.Equal(t, []float64{7, 8, 9, 10, 11}, w.Snapshot())
}

func TestResize(t *testing.T) {
	t.Run("shrink truncates oldest", func(t *testing.T) {
		w, err := New(5)
		require.NoError(t, err)
		for _, v := range []float64{1, 2, 3, 4, 5} {
			w.Push(v)
		}

		require.NoError(t, w.Resize(3))
		assert.Equal(t, 3, w.Cap())
		assert.Equal(t, []float64{3, 4, 5}, w.Snapshot())
	})

	t.Run("grow does not fabricate data", func(t *testing.T) {
		w, err := New(2)
		require.NoError(t, err)
		w.Push(1)
		w.Push(2)

		require.NoError(t, w.Resize(10))
		assert.Equal(t, 10, w.Cap())
		assert.Equal(t, []float64{1, 2}, w.Snapshot())
		assert.False(t, w.Full())
	})

	t.Run("invalid capacity rejected", func(t *testing.T) {
		w, err := New(3)
		require.NoError(t, err)
		w.Push(1)

		assert.ErrorIs(t, w.Resize(0), ErrInvalidCapacity)
		// State untouched after a rejected resize.
		assert.Equal(t, 3, w.Cap())
		assert.Equal(t, []float64{1}, w.Snapshot())
	})

	t.Run("shrink then push evicts normally", func(t *testing.T) {
		w, err := New(4)
		require.NoError(t, err)
		for _, v := range []float64{1, 2, 3, 4} {
			w.Push(v)
		}

		require.NoError(t, w.Resize(2))
		oldest, evicted := w.Push(5)
		assert.True(t, evicted)
		assert.Equal(t, 3.0, oldest)
		assert.Equal(t, []float64{4, 5}, w.Snapshot())
	})
}

func TestClear(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)
	w.Push(1)
	w.Push(2)

	w.Clear()
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 3, w.Cap())
	assert.Empty(t, w.Snapshot())

	// Usable again after clearing.
	_, evicted := w.Push(9)
	assert.False(t, evicted)
	assert.Equal(t, []float64{9}, w.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	w, err := New(3)
	require.NoError(t, err)
	w.Push(1)
	w.Push(2)

	snap := w.Snapshot()
	snap[0] = 99

	assert.Equal(t, []float64{1, 2}, w.Snapshot())
}
