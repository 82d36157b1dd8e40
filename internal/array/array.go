package array

import (
	"fmt"
	"unsafe"

	"github.com/surge-ml/surge/internal/device"
)

// Array is a handle to a contiguous, fixed-length, element-typed buffer
// resident on one accelerator device. The length never changes after
// creation. Operations read or mutate the device memory through the handle;
// they never allocate or free it themselves.
type Array struct {
	entry  *deviceEntry
	dev    device.ID
	dtype  device.DataType
	length int
	mem    device.Memory
}

// New creates a zero-initialized array of length elements on the given
// device. A negative length is a caller defect and panics; allocation
// failure is returned as an error.
func New(r *Registry, dev device.ID, dtype device.DataType, length int) (*Array, error) {
	if length < 0 {
		panic(fmt.Sprintf("array: negative length %d", length))
	}
	e := r.entry(dev)

	var mem device.Memory
	if length > 0 {
		var err error
		mem, err = e.backend.Alloc(length * dtype.Size())
		if err != nil {
			return nil, fmt.Errorf("array: alloc %d %s elements: %w", length, dtype, err)
		}
	}
	return &Array{entry: e, dev: dev, dtype: dtype, length: length, mem: mem}, nil
}

// FromSlice creates an array on the given device holding a copy of data.
func FromSlice[T device.Element](r *Registry, dev device.ID, data []T) (*Array, error) {
	a, err := New(r, dev, device.TypeOf[T](), len(data))
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := a.entry.backend.Upload(a.mem, sliceBytes(data)); err != nil {
			a.Release()
			return nil, fmt.Errorf("array: upload: %w", err)
		}
	}
	return a, nil
}

// ToSlice copies the array contents back to host memory. The element type
// must match the array's data type; a mismatch is a caller defect. A
// device transfer fault is fatal.
func ToSlice[T device.Element](a *Array) []T {
	if want := device.TypeOf[T](); want != a.dtype {
		panic(fmt.Sprintf("array: ToSlice element type %s does not match array type %s", want, a.dtype))
	}
	out := make([]T, a.length)
	if a.length > 0 {
		if err := a.entry.backend.Download(sliceBytes(out), a.mem); err != nil {
			panic(fmt.Sprintf("array: download: %v", err))
		}
	}
	return out
}

// Len returns the logical element count.
func (a *Array) Len() int { return a.length }

// DType returns the element type tag.
func (a *Array) DType() device.DataType { return a.dtype }

// Device returns the owning device identifier.
func (a *Array) Device() device.ID { return a.dev }

// Release frees the device memory backing the array. The array must not be
// used afterwards.
func (a *Array) Release() {
	if a.mem != nil {
		a.mem.Release()
		a.mem = nil
	}
}

// sliceBytes views a numeric slice as raw bytes without copying.
func sliceBytes[T device.Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

// require panics unless other is a compatible operand: same device, same
// element type, same length. Length mismatch indicates caller-side misuse
// and is never recoverable.
func (a *Array) require(other *Array, opName string) {
	if other.dev != a.dev {
		panic(fmt.Sprintf("array: %s: device mismatch: %d vs %d", opName, a.dev, other.dev))
	}
	if other.dtype != a.dtype {
		panic(fmt.Sprintf("array: %s: element type mismatch: %s vs %s", opName, a.dtype, other.dtype))
	}
	if other.length != a.length {
		panic(fmt.Sprintf("array: %s: length mismatch: %d vs %d", opName, a.length, other.length))
	}
}
