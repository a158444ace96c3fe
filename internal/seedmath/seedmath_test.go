package seedmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhiMetric(t *testing.T) {
	assert.Zero(t, PhiMetric(nil))
	assert.Zero(t, PhiMetric([]float32{0, 0, 0}))

	// Single element: mean of one tanh.
	want := float32(math.Tanh(1.0 * Phi))
	assert.InDelta(t, want, PhiMetric([]float32{1}), 1e-7)

	// Symmetric input cancels out.
	assert.InDelta(t, 0, PhiMetric([]float32{2, -2}), 1e-7)
}

func TestConscious(t *testing.T) {
	// tanh(1 * Phi) ~= 0.55 > 0.3
	assert.True(t, Conscious([]float32{1, 1, 1}))
	assert.False(t, Conscious([]float32{0, 0, 0}))
	assert.False(t, Conscious([]float32{-1, -1}))
}

func TestTransmuteInvolution(t *testing.T) {
	seed := []byte{0x00, 0x01, 0xFF, 0x9D, 42}
	orig := append([]byte(nil), seed...)

	Transmute(seed)
	assert.NotEqual(t, orig, seed)

	Transmute(seed)
	assert.Equal(t, orig, seed)
}
