package model

import (
	"errors"
	"fmt"

	"github.com/cbm-ml/cbm/internal/device"
)

// ErrExpand reports a failure of the expansion capability itself, as opposed
// to parse or allocation failures.
var ErrExpand = errors.New("seed expansion failed")

// Expander is the external expansion capability: a pure function from staged
// seed bytes and launch geometry to paramCount float32 values written into a
// pre-allocated device buffer. Implementations are injectable so the pipeline
// can run against a software substitute without accelerator hardware.
type Expander interface {
	Expand(weights, seed *device.Buffer, seedSize, paramCount int, workgroups uint32) error
}

// Materializer expands parsed models into device-resident weight buffers.
type Materializer struct {
	dev      *device.Device
	expander Expander
}

// NewMaterializer creates a materializer using the device's unfold kernel as
// its expansion capability.
func NewMaterializer(dev *device.Device) *Materializer {
	return &Materializer{dev: dev, expander: device.NewKernelExpander(dev)}
}

// NewMaterializerWith creates a materializer with an injected expansion
// capability.
func NewMaterializerWith(dev *device.Device, exp Expander) *Materializer {
	return &Materializer{dev: dev, expander: exp}
}

// Materialize allocates a paramCount-element float32 weight buffer on the
// device, stages the model seed, runs the expansion capability over a
// one-dimensional launch geometry and attaches the result to m.
//
// On any failure m is left without a device handle. paramCount is supplied by
// the caller and is deliberately independent of the seed size. paramCount 0
// is valid: a zero-length allocation is attached and no expansion runs.
func (mz *Materializer) Materialize(m *Model, paramCount int) error {
	if paramCount < 0 {
		return fmt.Errorf("materialize: negative param count %d", paramCount)
	}
	if m.Weights != nil {
		return fmt.Errorf("materialize: model %q already materialized", m.Metadata.Name())
	}

	weights, err := mz.dev.Alloc(uint64(paramCount) * 4)
	if err != nil {
		return fmt.Errorf("materialize %q: %w", m.Metadata.Name(), err)
	}

	if paramCount == 0 {
		m.Weights = weights
		m.WeightCount = 0
		return nil
	}

	// Stage the seed on the device. The staged copy is temporary and is
	// released on every exit path; only the weight buffer may outlive the
	// call.
	staged, err := mz.dev.AllocInit(m.Seed)
	if err != nil {
		weights.Release()
		return fmt.Errorf("materialize %q: stage seed: %w", m.Metadata.Name(), err)
	}
	defer staged.Release()

	geom := NewGeometry(paramCount)
	if err := mz.expander.Expand(weights, staged, len(m.Seed), paramCount, geom.Workgroups); err != nil {
		weights.Release()
		return fmt.Errorf("materialize %q: %w: %w", m.Metadata.Name(), ErrExpand, err)
	}

	m.Weights = weights
	m.WeightCount = paramCount
	return nil
}
