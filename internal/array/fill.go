package array

import (
	"fmt"
	"math"

	"github.com/surge-ml/surge/internal/device"
	"github.com/surge-ml/surge/internal/kernels"
	"github.com/surge-ml/surge/internal/launch"
)

// Fill sets every element to v (converted to the array's element type).
//
// When the element storage width is exactly 4 bytes the fill bypasses the
// kernel path and uses the driver's raw 32-bit memory-set primitive. This
// is a deliberate special case keyed on byte width, not on element type.
func (a *Array) Fill(v float64) {
	if a.length == 0 {
		return
	}
	if a.dtype.Size() == 4 {
		pattern := fillPattern32(a.dtype, v)
		if err := a.entry.backend.Memset32(a.mem, pattern, a.length); err != nil {
			panic(fmt.Sprintf("array: fill: %v", err))
		}
		return
	}
	k := a.lookup(kernels.Fill, kernels.SubNone)
	args := []device.Arg{
		device.Mut(a.mem),
		device.Value(v),
		device.Count(a.length),
	}
	a.invoke(k, a.length, args, launch.DefaultCeiling)
}

// fillPattern32 encodes v as the 32-bit word pattern for a 4-byte element.
func fillPattern32(dt device.DataType, v float64) uint32 {
	switch dt {
	case device.Float32:
		return math.Float32bits(float32(v))
	case device.Int32:
		return uint32(int32(v))
	default:
		panic(fmt.Sprintf("array: fill: %s is not a 4-byte element type", dt))
	}
}
