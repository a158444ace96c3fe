package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// KernelExpander runs the unfold compute kernel on the device. It is the
// production expansion capability: a pure function from seed bytes and launch
// geometry to paramCount float32 values written into a pre-allocated weights
// buffer.
type KernelExpander struct {
	dev *Device
}

// NewKernelExpander creates a kernel expander bound to dev.
func NewKernelExpander(dev *Device) *KernelExpander {
	return &KernelExpander{dev: dev}
}

// Expand dispatches the unfold kernel over the supplied launch geometry.
//
//nolint:gosec // G115: sizes validated by the caller, conversions are safe.
func (e *KernelExpander) Expand(weights, seed *Buffer, seedSize, paramCount int, workgroups uint32) (err error) {
	if seedSize <= 0 {
		return fmt.Errorf("expand: empty seed")
	}
	if uint64(paramCount)*4 > weights.size {
		return fmt.Errorf("expand: weights buffer %d bytes cannot hold %d params", weights.size, paramCount)
	}

	// The bindings surface dispatch failures as panics.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("expand: kernel dispatch failed: %v", r)
		}
	}()

	d := e.dev
	shader := d.compileShader("unfold", unfoldShader)
	pipeline := d.getOrCreatePipeline("unfold", shader)

	// Uniform params (param_count, seed_size: u32 each), 16-byte aligned.
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(paramCount))
	binary.LittleEndian.PutUint32(params[4:8], uint32(seedSize))
	bufferParams := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             16,
		MappedAtCreation: wgpu.True,
	})
	mappedPtr := bufferParams.GetMappedRange(0, 16)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), 16), params)
	bufferParams.Unmap()
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := d.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, seed.buf, 0, seed.size),
		wgpu.BufferBindingEntry(1, weights.buf, 0, uint64(paramCount)*4),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)

	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(workgroups, 1, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	d.queue.Submit(cmdBuffer)

	return nil
}

// RefExpander is a software reference implementation of the expansion
// capability. It computes the unfold transform on the host and uploads the
// result, so pipelines can be verified without trusting the kernel.
type RefExpander struct {
	dev *Device
}

// NewRefExpander creates a reference expander bound to dev.
func NewRefExpander(dev *Device) *RefExpander {
	return &RefExpander{dev: dev}
}

// Expand computes paramCount weights on the host and writes them into the
// weights buffer. The workgroups argument is accepted for interface parity;
// the host loop covers the same index range the kernel would.
func (e *RefExpander) Expand(weights, seed *Buffer, seedSize, paramCount int, workgroups uint32) error {
	if seedSize <= 0 {
		return fmt.Errorf("expand: empty seed")
	}

	seedBytes, err := seed.Read()
	if err != nil {
		return fmt.Errorf("expand: read staged seed: %w", err)
	}
	if len(seedBytes) < seedSize {
		return fmt.Errorf("expand: staged seed %d bytes, want %d", len(seedBytes), seedSize)
	}

	out := make([]byte, paramCount*4)
	for i := 0; i < paramCount; i++ {
		w := Unfold(seedBytes[i%seedSize], i)
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(w))
	}

	if err := weights.write(out); err != nil {
		return fmt.Errorf("expand: upload weights: %w", err)
	}
	return nil
}

// Unfold is the scalar unfold transform applied per output index.
// Kept exported so tests can check kernel output against it.
func Unfold(seedByte byte, idx int) float32 {
	x := float64(seedByte)/255.0 + float64(idx%4096)/4096.0
	return float32(math.Tanh(x * phi))
}
