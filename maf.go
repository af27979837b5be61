package vmb

import (
	"fmt"
)

// MAF is a moving average filter, for smoothing out frame rates.
type MAF struct {
	index  int
	count  int
	sum    float64
	values []float64
}

// NewMAF returns a new moving average filter with a history of given size.
func NewMAF(size int) (*MAF, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size must be > 0")
	}
	return &MAF{values: make([]float64, size)}, nil
}

// Update adds one value to the moving average filter and returns the average
// of the history. Until the history is full, only the values added so far are
// taken into account.
func (m *MAF) Update(value float64) (float64, error) {
	if m.values == nil {
		return 0, fmt.Errorf("invalid MAF, use NewMAF")
	}
	m.sum -= m.values[m.index]
	m.sum += value
	m.values[m.index] = value
	m.index++
	if m.index >= len(m.values) {
		m.index = 0
	}
	if m.count < len(m.values) {
		m.count++
	}
	return m.sum / float64(m.count), nil
}

// Value returns the current average, 0 if no value was added yet.
func (m *MAF) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// Reset clears the history.
func (m *MAF) Reset() {
	for i := range m.values {
		m.values[i] = 0
	}
	m.index = 0
	m.count = 0
	m.sum = 0
}
