package wgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/surge-ml/surge/internal/device"
)

// memory wraps a storage buffer behind the device.Memory handle.
type memory struct {
	buf     *wgpu.Buffer
	size    int    // logical size in bytes
	aligned uint64 // allocation size, 4-byte aligned, >= 4
}

func (m *memory) Size() int { return m.size }

func (m *memory) Release() {
	if m.buf != nil {
		m.buf.Release()
		m.buf = nil
	}
}

// alignUp4 rounds size up to the 4-byte copy alignment WebGPU requires,
// with a 4-byte floor for zero- and sub-word allocations.
func alignUp4(size int) uint64 {
	if size < 4 {
		return 4
	}
	return uint64(size+3) &^ 3
}

// Alloc reserves a zero-initialized storage buffer.
func (c *Context) Alloc(size int) (device.Memory, error) {
	if size < 0 {
		return nil, fmt.Errorf("wgpu: negative allocation size %d", size)
	}
	aligned := alignUp4(size)
	buf := c.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  aligned,
	})
	if buf == nil {
		return nil, fmt.Errorf("wgpu: allocation of %d bytes failed", size)
	}
	return &memory{buf: buf, size: size, aligned: aligned}, nil
}

// Upload synchronously copies host bytes into device memory.
func (c *Context) Upload(dst device.Memory, src []byte) error {
	m, err := c.own(dst)
	if err != nil {
		return err
	}
	if len(src) > m.size {
		return fmt.Errorf("wgpu: upload of %d bytes exceeds allocation of %d", len(src), m.size)
	}
	if len(src) == 0 {
		return nil
	}
	if err := c.writeBytes(m, src); err != nil {
		return err
	}
	return c.Synchronize()
}

// Download synchronously copies device memory into the host slice.
func (c *Context) Download(dst []byte, src device.Memory) error {
	m, err := c.own(src)
	if err != nil {
		return err
	}
	if len(dst) > m.size {
		return fmt.Errorf("wgpu: download of %d bytes exceeds allocation of %d", len(dst), m.size)
	}
	if len(dst) == 0 {
		return nil
	}
	data, err := c.readBuffer(m.buf, alignUp4(len(dst)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// Memset32 sets words consecutive 32-bit words of dst to pattern via a
// staged copy. This backs the fill fast path for 4-byte element types.
func (c *Context) Memset32(dst device.Memory, pattern uint32, words int) error {
	m, err := c.own(dst)
	if err != nil {
		return err
	}
	if words*4 > m.size {
		return fmt.Errorf("wgpu: memset of %d words exceeds allocation of %d bytes", words, m.size)
	}
	if words == 0 {
		return nil
	}
	data := make([]byte, words*4)
	for i := 0; i < words; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], pattern)
	}
	if err := c.writeBytes(m, data); err != nil {
		return err
	}
	return c.Synchronize()
}

// writeBytes copies data into the front of m through a mapped-at-creation
// staging buffer. len(data) must not exceed m.size.
func (c *Context) writeBytes(m *memory, data []byte) error {
	size := alignUp4(len(data))

	staging := c.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	if staging == nil {
		return fmt.Errorf("wgpu: staging allocation of %d bytes failed", size)
	}
	defer staging.Release()

	mapped := staging.GetMappedRange(0, size)
	copy(unsafe.Slice((*byte)(mapped), size), data)
	staging.Unmap()

	encoder := c.dev.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, m.buf, 0, size)
	cmd := encoder.Finish(nil)
	c.queue.Submit(cmd)
	return nil
}

// readBuffer copies size bytes of src into host memory through a pooled
// staging buffer. The MapAsync wait makes this a full queue drain.
func (c *Context) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := c.staging.Acquire(size)

	encoder := c.dev.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmd := encoder.Finish(nil)
	c.queue.Submit(cmd)

	if err := staging.MapAsync(c.dev, wgpu.MapModeRead, 0, size); err != nil {
		staging.Release()
		return nil, fmt.Errorf("wgpu: failed to map staging buffer: %w", err)
	}

	mapped := staging.GetMappedRange(0, size)
	result := make([]byte, size)
	copy(result, unsafe.Slice((*byte)(mapped), size))
	staging.Unmap()

	c.staging.Put(staging, size)
	return result, nil
}

func (c *Context) own(m device.Memory) (*memory, error) {
	wm, ok := m.(*memory)
	if !ok {
		return nil, fmt.Errorf("wgpu: foreign memory handle %T", m)
	}
	return wm, nil
}
