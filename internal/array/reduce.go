package array

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
)

// Sum returns the sum of all elements. The reduction runs as a single
// serial group on the device; the result lands in a transient device
// scalar that is copied back to the host and discarded.
func (a *Array) Sum() float64 { return a.reduce(kernels.ReduceSum) }

// SumAbs returns the sum of absolute values of all elements.
func (a *Array) SumAbs() float64 { return a.reduce(kernels.ReduceSumAbs) }

func (a *Array) reduce(op kernels.Op) float64 {
	if a.length == 0 {
		return 0
	}
	k := a.lookup(op, kernels.SubNone)

	scalar, err := a.entry.backend.Alloc(a.dtype.Size())
	if err != nil {
		panic(fmt.Sprintf("array: %s: alloc result scalar: %v", op, err))
	}
	defer scalar.Release()

	args := []device.Arg{
		device.Const(a.mem),
		device.Count(a.length),
		device.Mut(scalar),
	}
	if err := a.entry.coord.InvokeSerial(k, args); err != nil {
		panic(fmt.Sprintf("array: %v", err))
	}

	buf := make([]byte, a.dtype.Size())
	if err := a.entry.backend.Download(buf, scalar); err != nil {
		panic(fmt.Sprintf("array: %s: read result scalar: %v", op, err))
	}
	return decodeScalar(a.dtype, buf)
}

// decodeScalar interprets a little-endian device scalar as float64.
func decodeScalar(dt device.DataType, b []byte) float64 {
	switch dt {
	case device.Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case device.Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case device.Int32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case device.Int64:
		return float64(int64(binary.LittleEndian.Uint64(b)))
	case device.Uint8:
		return float64(b[0])
	default:
		panic(fmt.Sprintf("array: unknown data type %d", dt))
	}
}
