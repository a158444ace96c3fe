// Package model owns the CBM model record across its whole lifecycle:
// parse from a container file, materialize into device memory, destroy.
package model

import (
	"fmt"

	"github.com/cbm-ml/cbm/internal/container"
	"github.com/cbm-ml/cbm/internal/device"
)

// Model aggregates the parsed container record with its device state.
// A Model is exclusively owned by a single caller; it is created by Load,
// augmented with device weights by a Materializer and torn down by Destroy.
type Model struct {
	Header   container.Header
	Metadata container.Metadata
	Seed     []byte

	// Weights is the device-resident parameter buffer. It is non-nil
	// exactly when materialization has succeeded and Destroy has not run.
	Weights *device.Buffer

	// WeightCount is the number of parameters realized in device memory.
	WeightCount int
}

// Load parses a CBM container from disk into a fresh Model.
// The returned Model has no device state: Weights is nil, WeightCount 0.
func Load(path string) (*Model, error) {
	file, err := container.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	return &Model{
		Header:   file.Header,
		Metadata: file.Metadata,
		Seed:     file.Seed,
	}, nil
}

// Materialized reports whether the model holds device weights.
// A model that failed or skipped materialization must not be used for
// inference.
func (m *Model) Materialized() bool {
	return m.Weights != nil
}

// Destroy releases the device weight buffer and clears the host seed.
// Idempotent: calling Destroy on an already-destroyed model is a no-op,
// never a double release.
func (m *Model) Destroy() {
	if m.Weights != nil {
		m.Weights.Release()
		m.Weights = nil
	}
	m.Seed = nil
	m.WeightCount = 0
}
