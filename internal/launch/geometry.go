// Package launch computes launch geometry and performs synchronous,
// blocking kernel invocations against a device execution context.
package launch

import "github.com/surge-ml/surge/internal/device"

// Group-size ceilings for the fixed tiling policy. Most operations tile at
// 512 lanes per group; the axpy accumulate kernel uses 128.
const (
	DefaultCeiling = 512
	AxpyCeiling    = 128
)

// Serial is the geometry used by reduction kernels: a single group of one
// lane that walks the whole array.
var Serial = device.Geometry{Groups: 1, GroupSize: 1}

// Tile computes the launch geometry for count elements under the given
// group-size ceiling: groupSize = min(ceiling, count) and
// groups = ceil(count/groupSize), so every element gets at least one lane.
// count must be positive.
func Tile(count, ceiling int) device.Geometry {
	size := ceiling
	if count < size {
		size = count
	}
	return device.Geometry{
		Groups:    (count + size - 1) / size,
		GroupSize: size,
	}
}
