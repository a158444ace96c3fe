// Copyright 2026 CBM Runtime. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device manages accelerator memory for CBM materialization.
//
// Device memory is explicit and exclusively owned: every Buffer is allocated
// by a single owner and released exactly once, though Release tolerates
// repeated calls. WebGPU is used as the accelerator interface, which works
// across Windows (D3D12), macOS (Metal) and Linux (Vulkan).
//
// Example:
//
//	dev, err := device.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Release()
//
//	buf, err := dev.Alloc(1 << 20)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer buf.Release()
package device

import (
	"github.com/cbm-ml/cbm/internal/device"
)

// Device owns the WebGPU instance, adapter, device and queue.
type Device = device.Device

// Buffer is a device-resident storage buffer with a single exclusive owner.
type Buffer = device.Buffer

// MemoryStats represents device memory usage statistics.
type MemoryStats = device.MemoryStats

// KernelExpander runs the unfold compute kernel on the device.
type KernelExpander = device.KernelExpander

// RefExpander is a software reference implementation of the expansion
// capability, useful for verifying pipelines without trusting the kernel.
type RefExpander = device.RefExpander

// ErrAllocFailed reports that the device memory allocator rejected a request.
var ErrAllocFailed = device.ErrAllocFailed

// WorkgroupSize is the fixed number of threads per workgroup used by the
// one-dimensional expansion dispatch.
const WorkgroupSize = device.WorkgroupSize

// New creates a new device handle.
//
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
// Call Release() when done to free device resources.
func New() (*Device, error) {
	return device.New()
}

// IsAvailable checks if a WebGPU device is available on the current system.
//
// It attempts to initialize an adapter to verify that a compatible GPU and
// drivers are present, making graceful degradation possible when they are
// not.
func IsAvailable() bool {
	return device.IsAvailable()
}

// NewKernelExpander creates the production expansion capability, backed by
// the unfold compute kernel.
func NewKernelExpander(dev *Device) *KernelExpander {
	return device.NewKernelExpander(dev)
}

// NewRefExpander creates the software reference expansion capability.
func NewRefExpander(dev *Device) *RefExpander {
	return device.NewRefExpander(dev)
}

// Unfold is the scalar unfold transform applied per output index. The kernel
// and the reference expander both implement this function; it is exposed so
// callers can verify materialized weights.
func Unfold(seedByte byte, idx int) float32 {
	return device.Unfold(seedByte, idx)
}
