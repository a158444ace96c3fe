package model

import "github.com/cbm-ml/cbm/internal/device"

// Geometry is the one-dimensional launch decomposition for an expansion
// dispatch. No multi-dimensional decomposition is used.
type Geometry struct {
	WorkgroupSize int
	Workgroups    uint32
}

// NewGeometry computes the dispatch geometry covering paramCount outputs:
// ceil(paramCount / workgroup size) workgroups of the fixed size.
func NewGeometry(paramCount int) Geometry {
	wg := (paramCount + device.WorkgroupSize - 1) / device.WorkgroupSize
	return Geometry{
		WorkgroupSize: device.WorkgroupSize,
		//nolint:gosec // G115: workgroup count is non-negative.
		Workgroups: uint32(wg),
	}
}
