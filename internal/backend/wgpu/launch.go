package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/surge-ml/surge/internal/device"
)

// Launch marshals the argument slots into the kernel's calling convention
// and issues one compute pass. Completion is observed by Synchronize.
//
// Marshalling rules: array slots bind as storage buffers in slot order,
// except that an aliased handle (the same memory appearing in a const and
// a mut slot of one call) binds once with read_write access — WebGPU
// forbids aliased writable bindings. Scalar and count slots pack
// little-endian into one uniform buffer, in slot order.
func (c *Context) Launch(k device.Kernel, geom device.Geometry, args []device.Arg) error {
	wk, ok := k.(*kernel)
	if !ok || wk.ctx != c {
		return fmt.Errorf("wgpu: kernel %s does not belong to this context", k.Name())
	}

	var (
		bufs      []*memory
		readWrite []bool
		slotBind  []int
		params    []byte
	)
	bindingOf := make(map[*wgpu.Buffer]int, 4)

	for i, a := range args {
		switch a.Kind {
		case device.ArgConst, device.ArgMut:
			m, err := c.own(a.Mem)
			if err != nil {
				return fmt.Errorf("wgpu: %s slot %d: %w", wk.name, i, err)
			}
			b, seen := bindingOf[m.buf]
			if !seen {
				b = len(bufs)
				bindingOf[m.buf] = b
				bufs = append(bufs, m)
				readWrite = append(readWrite, false)
			}
			if a.Kind == device.ArgMut {
				readWrite[b] = true
			}
			slotBind = append(slotBind, b)
		case device.ArgValue:
			params = appendScalar(params, wk.dtype, a.Value)
		case device.ArgCount:
			// WGSL has no 64-bit integers; the count narrows to u32.
			if a.Count < 0 || a.Count > math.MaxUint32 {
				return fmt.Errorf("wgpu: %s: count %d out of u32 range", wk.name, a.Count)
			}
			var cb [4]byte
			binary.LittleEndian.PutUint32(cb[:], uint32(a.Count))
			params = append(params, cb[:]...)
		}
	}

	variant := wk.name + "_" + variantKey(slotBind, readWrite)
	pipeline := c.pipeline(variant, buildShader(wk, slotBind, readWrite))

	uniform, uniformSize := c.createUniform(params)
	defer uniform.Release()

	entries := make([]wgpu.BindGroupEntry, 0, len(bufs)+1)
	for i, m := range bufs {
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), m.buf, 0, m.aligned))
	}
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(bufs)), uniform, 0, uniformSize))

	bindGroup := c.dev.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := c.dev.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)

	// The logical geometry maps onto the compiled workgroup width: total
	// requested lanes, re-tiled at the shader's workgroup size.
	if wk.serial {
		pass.DispatchWorkgroups(uint32(geom.Groups), 1, 1)
	} else {
		lanes := geom.Lanes()
		pass.DispatchWorkgroups(uint32((lanes+workgroupSize-1)/workgroupSize), 1, 1)
	}
	pass.End()

	cmd := encoder.Finish(nil)
	c.queue.Submit(cmd)
	return nil
}

// createUniform builds a 16-byte-aligned uniform buffer holding data.
func (c *Context) createUniform(data []byte) (*wgpu.Buffer, uint64) {
	size := (uint64(len(data)) + 15) &^ 15
	if size == 0 {
		size = 16
	}
	buf := c.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := buf.GetMappedRange(0, size)
	copy(unsafe.Slice((*byte)(mapped), size), data)
	buf.Unmap()
	return buf, size
}

// appendScalar encodes a scalar value as the kernel's element type.
func appendScalar(params []byte, dt device.DataType, v float64) []byte {
	var word [4]byte
	switch dt {
	case device.Int32:
		binary.LittleEndian.PutUint32(word[:], uint32(int32(v)))
	default:
		binary.LittleEndian.PutUint32(word[:], math.Float32bits(float32(v)))
	}
	return append(params, word[:]...)
}

// variantKey names a binding layout: one digit per array slot plus the
// access mode of each binding.
func variantKey(slotBind []int, readWrite []bool) string {
	var sb strings.Builder
	for _, b := range slotBind {
		sb.WriteByte('0' + byte(b))
	}
	sb.WriteByte('_')
	for _, rw := range readWrite {
		if rw {
			sb.WriteByte('w')
		} else {
			sb.WriteByte('r')
		}
	}
	return sb.String()
}
