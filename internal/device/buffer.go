package device

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// ErrAllocFailed reports that the device memory allocator rejected a request.
var ErrAllocFailed = errors.New("device buffer allocation failed")

// Buffer is a device-resident storage buffer with a single exclusive owner.
// The zero value is not usable; allocate through Device.Alloc or
// Device.AllocInit.
type Buffer struct {
	dev  *Device
	buf  *wgpu.Buffer
	size uint64
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 {
	return b.size
}

// Release frees the underlying device memory.
// Safe to call more than once; only the first call releases.
func (b *Buffer) Release() {
	if b == nil || b.buf == nil {
		return
	}
	b.buf.Release()
	b.buf = nil
	b.dev.trackBufferRelease(b.size)
}

// Alloc allocates an uninitialized storage buffer of size bytes.
// The underlying allocator diagnostic is preserved in the returned error.
func (d *Device) Alloc(size uint64) (buf *Buffer, err error) {
	// The bindings surface allocator failures as panics.
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d bytes: %v", ErrAllocFailed, size, r)
		}
	}()

	b := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	if b == nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocFailed, size)
	}

	d.trackBufferAllocation(size)
	return &Buffer{dev: d, buf: b, size: size}, nil
}

// AllocInit allocates a storage buffer and uploads data into it via a
// mapped-at-creation host-to-device transfer. The buffer size is rounded up
// to a 4-byte boundary as WebGPU storage bindings require.
func (d *Device) AllocInit(data []byte) (buf *Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d bytes: %v", ErrAllocFailed, len(data), r)
		}
	}()

	size := (uint64(len(data)) + 3) &^ 3 // Round up to 4-byte boundary
	if size == 0 {
		return d.Alloc(0)
	}

	b := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	if b == nil {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocFailed, size)
	}

	// Copy data to the mapped range; padding stays zeroed.
	mappedPtr := b.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	b.Unmap()

	d.trackBufferAllocation(size)
	return &Buffer{dev: d, buf: b, size: size}, nil
}

// Read copies the buffer contents back to host memory.
// Uses a staging buffer since storage buffers can't be mapped directly.
func (b *Buffer) Read() ([]byte, error) {
	if b.buf == nil {
		return nil, fmt.Errorf("device: read from released buffer")
	}
	if b.size == 0 {
		return nil, nil
	}
	d := b.dev

	stagingBuffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  b.size,
	})
	defer stagingBuffer.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(b.buf, 0, stagingBuffer, 0, b.size)
	cmdBuffer := encoder.Finish(nil)
	d.queue.Submit(cmdBuffer)

	if err := stagingBuffer.MapAsync(d.device, wgpu.MapModeRead, 0, b.size); err != nil {
		return nil, fmt.Errorf("device: failed to map staging buffer: %w", err)
	}

	mappedPtr := stagingBuffer.GetMappedRange(0, b.size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), b.size)
	result := make([]byte, b.size)
	copy(result, mappedSlice)

	stagingBuffer.Unmap()

	return result, nil
}

// write uploads data into an existing buffer through a staging copy.
func (b *Buffer) write(data []byte) error {
	if b.buf == nil {
		return fmt.Errorf("device: write to released buffer")
	}
	if uint64(len(data)) > b.size {
		return fmt.Errorf("device: write of %d bytes exceeds buffer size %d", len(data), b.size)
	}
	if len(data) == 0 {
		return nil
	}
	d := b.dev

	staging, err := d.AllocInit(data)
	if err != nil {
		return err
	}
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging.buf, 0, b.buf, 0, staging.size)
	cmdBuffer := encoder.Finish(nil)
	d.queue.Submit(cmdBuffer)

	return nil
}
