// Package device manages accelerator memory and compute dispatch through
// WebGPU. Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO bindings.
//
// All device memory is explicit: a Buffer is allocated by its single owner
// and must be released exactly once, though Release tolerates repeated calls.
package device

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Device owns a WebGPU instance, adapter, device and queue, plus a cache of
// compiled shaders and pipelines.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// Device info
	adapterInfo *wgpu.AdapterInfoGo

	// Memory tracking
	memoryStats struct {
		totalAllocatedBytes uint64
		peakMemoryBytes     uint64
		activeBuffers       int64
		mu                  sync.RWMutex
	}
}

// New creates a new device handle.
// Returns an error if WebGPU is not available or initialization fails.
func New() (dev *Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = fmt.Errorf("device: native library not available: %v", r)
		}
	}()

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("device: failed to create instance: %w", instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("device: failed to request adapter: %w", adapterErr)
	}

	adapterInfo, _ := adapter.GetInfo()

	wdev, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("device: failed to request device: %w", deviceErr)
	}

	queue := wdev.GetQueue()
	if queue == nil {
		wdev.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("device: failed to get queue")
	}

	d := &Device{
		instance:    instance,
		adapter:     adapter,
		device:      wdev,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: adapterInfo,
	}

	return d, nil
}

// Release releases all WebGPU resources held by the device.
// Safe to call more than once.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.pipelines {
		p.Release()
	}
	d.pipelines = nil

	for _, s := range d.shaders {
		s.Release()
	}
	d.shaders = nil

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// Name returns a human readable device name.
func (d *Device) Name() string {
	if d.adapterInfo != nil {
		return fmt.Sprintf("WebGPU (%s %s)", d.adapterInfo.Device, d.adapterInfo.Vendor)
	}
	return "WebGPU"
}

// AdapterInfo returns information about the GPU adapter.
func (d *Device) AdapterInfo() *wgpu.AdapterInfoGo {
	return d.adapterInfo
}

// IsAvailable checks if a WebGPU device is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached.
func (d *Device) compileShader(name, code string) *wgpu.ShaderModule {
	d.mu.RLock()
	if shader, exists := d.shaders[name]; exists {
		d.mu.RUnlock()
		return shader
	}
	d.mu.RUnlock()

	shader := d.device.CreateShaderModuleWGSL(code)

	d.mu.Lock()
	d.shaders[name] = shader
	d.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (d *Device) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	d.mu.RLock()
	if pipeline, exists := d.pipelines[name]; exists {
		d.mu.RUnlock()
		return pipeline
	}
	d.mu.RUnlock()

	// Create compute pipeline with auto layout (nil layout)
	pipeline := d.device.CreateComputePipelineSimple(nil, shader, "main")

	d.mu.Lock()
	d.pipelines[name] = pipeline
	d.mu.Unlock()

	return pipeline
}

// MemoryStats represents device memory usage statistics.
type MemoryStats struct {
	// Total bytes allocated since device creation
	TotalAllocatedBytes uint64
	// Peak memory usage in bytes
	PeakMemoryBytes uint64
	// Number of currently active buffers
	ActiveBuffers int64
}

// MemoryStats returns current device memory usage statistics.
func (d *Device) MemoryStats() MemoryStats {
	d.memoryStats.mu.RLock()
	defer d.memoryStats.mu.RUnlock()

	return MemoryStats{
		TotalAllocatedBytes: d.memoryStats.totalAllocatedBytes,
		PeakMemoryBytes:     d.memoryStats.peakMemoryBytes,
		ActiveBuffers:       d.memoryStats.activeBuffers,
	}
}

// trackBufferAllocation records a buffer allocation in memory statistics.
func (d *Device) trackBufferAllocation(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	d.memoryStats.totalAllocatedBytes += size
	d.memoryStats.activeBuffers++

	if d.memoryStats.totalAllocatedBytes > d.memoryStats.peakMemoryBytes {
		d.memoryStats.peakMemoryBytes = d.memoryStats.totalAllocatedBytes
	}
}

// trackBufferRelease records a buffer release in memory statistics.
func (d *Device) trackBufferRelease(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	if d.memoryStats.totalAllocatedBytes >= size {
		d.memoryStats.totalAllocatedBytes -= size
	}
	d.memoryStats.activeBuffers--
}
