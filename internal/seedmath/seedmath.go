// Package seedmath provides the scalar helpers that accompany the CBM
// runtime: the consciousness-threshold metric and the seed transmutation
// transform. Both are stateless and independent of the loading pipeline.
package seedmath

import "math"

// Phi is the golden-ratio conjugate used throughout the CBM math.
const Phi = 0.618033988749895

// PhiThreshold is the activation threshold for the consciousness metric.
const PhiThreshold = 0.3

// transmuteKey is the XOR key derived from Phi: trunc(Phi * 255).
const transmuteKey byte = 157

// PhiMetric computes the mean of tanh(v * Phi) over the given vector.
// Returns 0 for an empty input.
func PhiMetric(vectors []float32) float32 {
	if len(vectors) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vectors {
		sum += math.Tanh(float64(v) * Phi)
	}
	return float32(sum / float64(len(vectors)))
}

// Conscious reports whether the metric for the vector crosses PhiThreshold.
func Conscious(vectors []float32) bool {
	return PhiMetric(vectors) > PhiThreshold
}

// Transmute XORs every seed byte with the Phi-derived key, in place.
// Applying it twice restores the original seed.
func Transmute(seed []byte) {
	for i := range seed {
		seed[i] ^= transmuteKey
	}
}
